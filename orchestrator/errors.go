package orchestrator

import (
	"errors"
	"fmt"

	"github.com/maastricht-university/emotion-timeline/emotion"
)

// ErrInput matches any InputError via errors.Is.
var ErrInput = errors.New("invalid input audio")

// InputError reports audio that is missing, empty or unreadable.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("input audio: %v", e.Err)
	}
	return fmt.Sprintf("input audio %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error        { return e.Err }
func (e *InputError) Is(target error) bool { return target == ErrInput }

// Stage names the external capability an AdapterError came from.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageAudio      Stage = "audio"
	StageText       Stage = "text"
)

// AdapterError reports a failed external capability call.
type AdapterError struct {
	Stage Stage
	Index int // chunk index, -1 for transcription
	Err   error
}

func (e *AdapterError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s chunk %d: %v", e.Stage, e.Index, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// adapterError wraps err unless it is a contract violation, which callers see
// unchanged.
func adapterError(stage Stage, index int, err error) error {
	if errors.Is(err, emotion.ErrContractViolation) {
		return err
	}
	return &AdapterError{Stage: stage, Index: index, Err: err}
}
