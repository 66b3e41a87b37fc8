// bmpsteg hides a bitmap inside the low bits of another bitmap and gets it back out.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/anas-shakeel/bmp-steg/internal/config"
	"github.com/anas-shakeel/bmp-steg/internal/progress"
	"github.com/anas-shakeel/bmp-steg/internal/stego"
)

// Returned by commands that already logged their failure in strict mode
var errFailed = errors.New("operation failed")

var (
	configFile string
	conf       *config.Config
	logger     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bmpsteg <payload.bmp> <carrier.bmp> | bmpsteg <merged.bmp>",
	Short: "Hide a bitmap in the low bits of another bitmap, or extract it again",
	Long: `With two arguments the first bitmap is hidden in a copy of the second one,
written as merged_image.bmp. With one argument the hidden bitmap is extracted
from the given image and written as obr1_separated.bmp.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 || len(args) > 2 {
			return errors.New("invalid number of arguments")
		}
		return nil
	},
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 2 {
			return runHide(args[0], args[1])
		}
		return runExtract(args[0])
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML configuration file")
	flags.BoolP("verbose", "v", false, "log bitmap headers and other details")
	flags.BoolP("quiet", "q", false, "only log warnings and errors, no progress bar")
	flags.Bool("diff", false, "write a diff image between the carrier and the merged image")
	flags.Bool("keep-restored", false, "keep the merged image with the payload bits cleared after extracting")
	flags.Bool("strict", false, "exit with status 1 when hiding or extracting fails")
	flags.StringP("out-dir", "o", "", "directory for the output files")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// Loads the configuration, applies flags on top and sets up logging
func setup(cmd *cobra.Command, args []string) error {
	var err error
	conf, err = config.Load(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
	override("verbose", &conf.Verbose)
	override("quiet", &conf.Quiet)
	override("diff", &conf.GenerateDiff)
	override("keep-restored", &conf.KeepRestored)
	override("strict", &conf.Strict)
	if flags.Changed("out-dir") {
		conf.OutputDir, _ = flags.GetString("out-dir")
	}

	level := zerolog.InfoLevel
	switch {
	case conf.Verbose:
		level = zerolog.DebugLevel
	case conf.Quiet:
		level = zerolog.WarnLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return nil
}

func options() stego.Options {
	var rep progress.Reporter = progress.Nop
	if !conf.Quiet && term.IsTerminal(int(os.Stdout.Fd())) {
		rep = progress.NewBar(os.Stdout, conf.ProgressStep)
	}

	return stego.Options{
		OutputDir:     conf.OutputDir,
		MergedName:    conf.MergedName,
		DiffName:      conf.DiffName,
		RecoveredName: conf.RecoveredName,
		RestoredName:  conf.RestoredName,
		GenerateDiff:  conf.GenerateDiff,
		KeepRestored:  conf.KeepRestored,
		Logger:        &logger,
		Progress:      rep,
	}
}

func runHide(payloadPath, carrierPath string) error {
	_, err := stego.HideFile(payloadPath, carrierPath, options())
	return softFail(err, "Failed to hide the payload")
}

func runExtract(mergedPath string) error {
	_, err := stego.ExtractFile(mergedPath, options())
	return softFail(err, "Failed to extract the payload")
}

// Failures are reported once and, unless strict, do not change the exit status
func softFail(err error, msg string) error {
	if err == nil {
		return nil
	}
	logger.Error().Err(err).Msg(msg)
	if conf.Strict {
		return errFailed
	}
	return nil
}
