package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-image-reader/internal/config"
	"go-image-reader/internal/container"
	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/logger"
	"go-image-reader/internal/resolver"

	"github.com/spf13/cobra"
)

// errReported marks a failure whose message has already been printed
var errReported = errors.New("reported")

type options struct {
	configPath string
	format     string
	expected   string
	provider   string
	model      string
	seed       int64
	logLevel   string
}

// execute runs the CLI and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			fmt.Fprintln(stderr, resolver.Usage)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "imagereader [image_path]",
		Short: "Inspect an image with metadata, color, OCR and AI description backends",
		Long: `imagereader prints a four-section report for one image: basic metadata,
dominant colors, extracted text and an AI-written design description.

The image may be a local path or an http(s)://, az:// or s3:// location.
Without an argument the default design screenshot next to the executable
is used. Backends whose dependencies are missing are reported as
unavailable and never stop the run.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from config)")
	flags.StringVar(&opts.provider, "provider", "", "AI provider: openai or gemini")
	flags.StringVar(&opts.model, "model", "", "Vision model name (provider default if empty)")
	flags.Int64Var(&opts.seed, "seed", 0, "Seed for k-means initial centers (0 picks a random seed)")

	root.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: text or json")
	root.Flags().StringVar(&opts.expected, "expect", "", "Expected text to score the OCR output against")

	root.AddCommand(newServeCmd(opts))
	return root
}

// loadConfig layers command-line flags over the file and environment config
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = strings.ToLower(opts.format)
	}
	if flags.Changed("provider") {
		cfg.AI.Provider = strings.ToLower(opts.provider)
	}
	if flags.Changed("model") {
		cfg.AI.Model = opts.model
	}
	if flags.Changed("seed") {
		cfg.Color.Seed = opts.seed
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runInspect(cmd *cobra.Command, opts *options, args []string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger.Configure(cfg.LogLevel, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	report, err := c.Service().Analyze(ctx, args, opts.expected)
	if err != nil {
		msg := err.Error()
		if appErr, ok := apperrors.As(err); ok {
			msg = appErr.Message
		}
		fmt.Fprintf(stderr, "Error: %s\n", msg)
		fmt.Fprintln(stderr, resolver.Usage)
		return errReported
	}

	return c.Formatter().Format(stdout, report)
}
