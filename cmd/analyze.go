package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/emotion-timeline/clients"
	cfg "github.com/maastricht-university/emotion-timeline/config"
	"github.com/maastricht-university/emotion-timeline/emotion"
	"github.com/maastricht-university/emotion-timeline/orchestrator"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio.wav|audio.mp3>",
	Short: "Analyze a recording and print its emotion timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var (
	outputPath string
	save       bool
	publish    bool
	format     string
	explain    bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the result JSON to this path")
	analyzeCmd.Flags().BoolVar(&save, "save", false, "write the result JSON under paths.outputs")
	analyzeCmd.Flags().BoolVar(&publish, "publish", false, "post the result to services.dashboard.url")
	analyzeCmd.Flags().StringVarP(&format, "format", "f", "", "table or json (default: table on a terminal)")
	analyzeCmd.Flags().BoolVar(&explain, "explain", false, "show per-modality predictions and the fusion rule")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := orchestrator.NewPipeline(conf, log)
	res, err := p.Analyze(ctx, args[0])
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"run": res.RunID, "segments": len(res.Timeline)}).Info("analysis done")

	if outputPath != "" {
		if err := orchestrator.WriteResult(outputPath, res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		log.WithField("path", outputPath).Info("result written")
	}
	if save {
		path, err := orchestrator.SaveResult(conf.Paths.Outputs, res)
		if err != nil {
			return fmt.Errorf("save result: %w", err)
		}
		log.WithField("path", path).Info("result saved")
	}
	if publish {
		if err := publishResult(ctx, conf, res); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if resolveFormat(format, out) == "json" {
		return printJSON(out, res, explain)
	}
	fmt.Fprintln(out, renderTimeline(res.Timeline, explain))
	fmt.Fprintln(out, renderSummary(res.Summary))
	return nil
}

func publishResult(ctx context.Context, c *cfg.Root, res *orchestrator.Result) error {
	if c.Services.Dashboard.URL == "" {
		return fmt.Errorf("publish: services.dashboard.url is not set")
	}
	h := clients.NewHTTP(clients.WithTimeout(cfg.DurSeconds(c.Services.Timeout)), clients.WithLogger(log))
	resp, err := h.PublishTimeline(ctx, c.Services.Dashboard.URL, res)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	log.WithFields(logrus.Fields{"status": resp.Status, "path": resp.Path}).Info("result published")
	return nil
}

func resolveFormat(f string, out io.Writer) string {
	if f != "" {
		return f
	}
	if file, ok := out.(*os.File); ok {
		fd := file.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return "table"
		}
	}
	return "json"
}

type explainedEntry struct {
	orchestrator.TimelineEntry
	AudioPrediction emotion.Prediction `json:"audio_prediction"`
	TextPrediction  emotion.Prediction `json:"text_prediction"`
	FusionRule      emotion.Rule       `json:"rule"`
}

func printJSON(w io.Writer, res *orchestrator.Result, explain bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if !explain {
		return enc.Encode(res)
	}
	entries := make([]explainedEntry, len(res.Timeline))
	for i, e := range res.Timeline {
		entries[i] = explainedEntry{TimelineEntry: e, AudioPrediction: e.AudioPred, TextPrediction: e.TextPred, FusionRule: e.Rule}
	}
	return enc.Encode(struct {
		*orchestrator.Result
		Timeline []explainedEntry `json:"timeline"`
	}{res, entries})
}
