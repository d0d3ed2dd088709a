package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/maastricht-university/emotion-timeline/emotion"
	"github.com/maastricht-university/emotion-timeline/orchestrator"
)

// renderTimeline draws one row per sentence; explain adds the per-modality
// predictions and the fusion rule that decided the row.
func renderTimeline(timeline []orchestrator.TimelineEntry, explain bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	header := table.Row{"#", "Start", "End", "Emotion", "Conf", "Text"}
	if explain {
		header = append(header, "Audio", "Text model", "Rule")
	}
	tw.AppendHeader(header)

	for i, e := range timeline {
		row := table.Row{
			i + 1,
			fmt.Sprintf("%.2f", e.StartTime),
			fmt.Sprintf("%.2f", e.EndTime),
			e.Emotion,
			fmt.Sprintf("%.3f", e.Confidence),
			e.Text,
		}
		if explain {
			row = append(row, formatPrediction(e.AudioPred), formatPrediction(e.TextPred), e.Rule)
		}
		tw.AppendRow(row)
	}

	right := []string{"#", "Start", "End", "Conf"}
	configs := make([]table.ColumnConfig, 0, len(right)+1)
	for _, name := range right {
		configs = append(configs, table.ColumnConfig{Name: name, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	configs = append(configs, table.ColumnConfig{Name: "Text", WidthMax: 60})
	tw.SetColumnConfigs(configs)
	if len(timeline) == 0 {
		tw.AppendFooter(table.Row{"", "", "", "", "", "no speech found"})
	}

	return tw.Render()
}

func formatPrediction(p emotion.Prediction) string {
	return fmt.Sprintf("%s %.3f", p.Label, p.Confidence)
}

func renderSummary(s orchestrator.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dominant emotion: %s\n", s.Dominant)
	fmt.Fprintf(&b, "Average confidence: %.3f\n", s.AverageConfidence)
	fmt.Fprintf(&b, "Speech: %.2fs", s.SpeechSeconds)

	labels := make([]string, 0, len(s.Share))
	for l := range s.Share {
		labels = append(labels, string(l))
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(&b, "\n  %-8s %5.1f%%", l, s.Share[emotion.Label(l)]*100)
	}
	return b.String()
}
