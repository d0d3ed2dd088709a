package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/emotion-timeline/config"
)

var (
	cfgPath string
	envFile string
	verbose bool
	quiet   bool
	logJSON bool

	conf *cfg.Root
	log  = logrus.New()
	v    = cfg.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "emotion-timeline",
	Short: "Build an emotion timeline from recorded speech",
	Long: `emotion-timeline transcribes a WAV or MP3 recording into sentences, classifies
each sentence by tone of voice and by wording, and fuses the two into one
emotion per sentence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		c, err := cfg.Load(cfgPath)
		if err != nil {
			return err
		}
		c.Apply(v)
		if err := c.Validate(); err != nil {
			return err
		}
		conf = c
		return setupLogging(c.Pipeline.LogLvl)
	},
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	if quiet {
		lvl = logrus.ErrorLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	if logJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

// bind maps a flag onto a dotted config key; only flags set on the command
// line override the file.
func bind(cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "config file (default: config/$CONFIG_ENV/config.yaml)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")

	pf.String("asr-url", "", "speech recognition service URL")
	pf.String("audio-emotion-url", "", "acoustic emotion service URL")
	pf.String("sentiment-url", "", "sentiment service URL")
	pf.Int("workers", 1, "chunks classified concurrently")
	for key, flag := range map[string]string{
		"services.asr.url":           "asr-url",
		"services.audio_emotion.url": "audio-emotion-url",
		"services.sentiment.url":     "sentiment-url",
		"pipeline.workers":           "workers",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
