package emotion

// HighConfidence is the acoustic confidence at or above which audio wins a
// disagreement.
const HighConfidence = 0.55

// Rule identifies which fusion rule produced a result.
type Rule string

const (
	RuleAgreement     Rule = "agreement"
	RuleAudioHighConf Rule = "audio_high_confidence"
	RuleAudioAngry    Rule = "audio_angry"
	RuleDefaultText   Rule = "default_text"
)

// Fused is the reconciled judgement for one chunk.
type Fused struct {
	Label      Label
	Confidence float64
	Rule       Rule
}

type fusionRule struct {
	rule  Rule
	when  func(audio, text Prediction) bool
	apply func(audio, text Prediction) Prediction
}

func trustAudio(audio, _ Prediction) Prediction { return audio }

// rules are evaluated in order; the first match wins. The last rule always
// matches, so Fuse is total.
var rules = []fusionRule{
	{
		rule: RuleAgreement,
		when: func(a, t Prediction) bool { return a.Label == t.Label },
		apply: func(a, t Prediction) Prediction {
			return Prediction{Label: a.Label, Confidence: Round3((a.Confidence + t.Confidence) / 2)}
		},
	},
	{
		rule:  RuleAudioHighConf,
		when:  func(a, _ Prediction) bool { return a.Confidence >= HighConfidence },
		apply: trustAudio,
	},
	{
		// text sentiment can never say angry, so it cannot overrule it
		rule:  RuleAudioAngry,
		when:  func(a, _ Prediction) bool { return a.Label == Angry },
		apply: trustAudio,
	},
	{
		rule:  RuleDefaultText,
		when:  func(_, _ Prediction) bool { return true },
		apply: func(_, t Prediction) Prediction { return t },
	},
}

// Fuse reconciles an acoustic and a textual prediction.
func Fuse(audio, text Prediction) Fused {
	for _, r := range rules {
		if r.when(audio, text) {
			p := r.apply(audio, text)
			return Fused{Label: p.Label, Confidence: p.Confidence, Rule: r.rule}
		}
	}
	panic("emotion: no fusion rule matched")
}
