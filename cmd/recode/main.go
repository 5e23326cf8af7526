// Command recode converts video files between codecs by driving FFmpeg.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"recode"
	"recode/internal/ffprobe"
	"recode/internal/logging"
	"recode/internal/reporter"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cliOptions struct {
	configFile string
	codec      string
	quality    int
	noHDR      bool
	noHardware bool
	overwrite  bool
	outputDir  string
	logDir     string
	noLog      bool
	verbose    bool
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "recode",
		Short:         "Convert video files between codecs using FFmpeg",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default $HOME/.recode.yaml)")
	flags.StringVarP(&opts.codec, "codec", "c", "hevc", "target codec (hevc, h264, av1)")
	flags.IntVarP(&opts.quality, "quality", "q", 0, "quality override, 1-51 (0 uses the encoder default)")
	flags.BoolVar(&opts.noHDR, "no-hdr", false, "disable HDR metadata preservation")
	flags.BoolVar(&opts.noHardware, "no-hardware", false, "force software encoding")
	flags.BoolVarP(&opts.overwrite, "overwrite", "f", false, "replace existing output files")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "output directory (default next to input)")
	flags.StringVar(&opts.logDir, "log-dir", defaultLogDir(), "directory for log files")
	flags.BoolVar(&opts.noLog, "no-log", false, "disable file logging")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&opts.jsonOutput, "json", false, "emit NDJSON events instead of terminal output")

	root.AddCommand(newConvertCmd(opts))
	root.AddCommand(newBatchCmd(opts))
	root.AddCommand(newPlanCmd(opts))

	return root
}

// loadConfig merges an optional config file into flag defaults. Flags
// set on the command line always win.
func loadConfig(cmd *cobra.Command, opts *cliOptions) error {
	v := viper.New()
	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".recode")
	}
	v.SetEnvPrefix("RECODE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if opts.configFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
		// A missing default config file is fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	flags := cmd.Root().PersistentFlags()
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := flags.Set(f.Name, v.GetString(f.Name)); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	return bindErr
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recode-logs"
	}
	return home + "/.local/share/recode/logs"
}

// buildConverter assembles the library converter from CLI options.
func buildConverter(opts *cliOptions) (*recode.Converter, *logging.Logger, error) {
	codec, err := recode.ParseCodec(opts.codec)
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.Setup(opts.logDir, opts.verbose, opts.noLog)
	if err != nil {
		return nil, nil, err
	}

	var rep reporter.Reporter
	if opts.jsonOutput {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter(opts.verbose)
	}

	convOpts := []recode.Option{
		recode.WithTargetCodec(codec),
		recode.WithPreserveHDR(!opts.noHDR),
		recode.WithPreferHardware(!opts.noHardware),
		recode.WithOverwrite(opts.overwrite),
		recode.WithReporter(rep),
		recode.WithLogger(log),
	}
	if opts.quality != 0 {
		convOpts = append(convOpts, recode.WithQuality(opts.quality))
	}

	conv, err := recode.New(convOpts...)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	return conv, log, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// checkTools verifies the FFmpeg toolchain is reachable before work starts.
func checkTools(ctx context.Context) error {
	if !ffprobe.ValidateTool(ctx, "ffprobe") {
		return fmt.Errorf("ffprobe not found in PATH; install FFmpeg")
	}
	if !ffprobe.ValidateTool(ctx, "ffmpeg") {
		return fmt.Errorf("ffmpeg not found in PATH; install FFmpeg")
	}
	return nil
}

func newConvertCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input-file>",
		Short: "Convert a single video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if err := checkTools(ctx); err != nil {
				return err
			}

			conv, log, err := buildConverter(opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Close() }()

			result, err := conv.Convert(ctx, args[0], opts.outputDir)
			if err != nil {
				return err
			}
			if result.Status == "skipped" {
				fmt.Printf("Skipped: %s (%s)\n", args[0], result.SkipReason)
			}
			return nil
		},
	}
}

func newBatchCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <input-dir>",
		Short: "Convert every video file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if err := checkTools(ctx); err != nil {
				return err
			}

			conv, log, err := buildConverter(opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Close() }()

			result, err := conv.ConvertBatch(ctx, args[0], opts.outputDir)
			if err != nil {
				return err
			}
			if result.Cancelled {
				return fmt.Errorf("batch cancelled")
			}
			if result.FailedCount > 0 {
				return fmt.Errorf("%d of %d file(s) failed", result.FailedCount, result.TotalFiles)
			}
			return nil
		},
	}
}

func newPlanCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <input-file>",
		Short: "Show the conversion command without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if err := checkTools(ctx); err != nil {
				return err
			}

			conv, log, err := buildConverter(opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Close() }()

			plan, err := conv.DryRun(ctx, args[0], opts.outputDir)
			if err != nil {
				return err
			}

			fmt.Printf("Encoder:  %s (%s)\n", plan.Encoder, plan.Backend)
			fmt.Printf("Output:   %s\n", plan.OutputFile)
			fmt.Printf("Command:  ffmpeg %s\n", strings.Join(plan.Arguments, " "))
			for _, warning := range plan.Warnings {
				fmt.Printf("Warning:  %s\n", warning)
			}
			return nil
		},
	}
}
