package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/app"
	"github.com/bravuralion/td2-chat-translator/internal/config"
	"github.com/bravuralion/td2-chat-translator/internal/logging"
	"github.com/bravuralion/td2-chat-translator/internal/simulator"
)

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "td2chat",
		Short: "Translate Train Driver 2 chat logs as they are written",
		Long: `td2chat tails the Train Driver 2 chat log, classifies dispatcher, player
and station radio messages and shows them translated by ChatGPT, Google
Translate or DeepL in a terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Version = version
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", fmt.Sprintf("config file (default %s)", config.DefaultPath()))
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/td2chat/prefs.toml)")
	flags.StringVarP(&opts.Language, "language", "l", "", "target language, e.g. German")
	flags.StringVarP(&opts.Backend, "backend", "b", "", "translation backend: chatgpt, google or deepl")

	root.Flags().StringVar(&opts.LogDir, "log-dir", "", "directory with the game's chat logs")
	root.Flags().DurationVar(&opts.PollEvery, "poll", 0, "log poll interval (default from config, 5s)")
	root.Flags().StringArrayVar(&opts.Open, "open", nil, "log file to open at start (repeatable)")

	root.AddCommand(
		newTranslateCmd(&opts),
		newSimulateCmd(),
		newVersionCmd(),
	)
	return root
}

func newTranslateCmd(opts *app.Options) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "translate <text...>",
		Short: "Translate text once and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if verbose {
				l, closeLog, err := logging.New(config.LoggingConfig{Level: "debug"}, logging.Options{Stderr: true})
				if err != nil {
					return err
				}
				defer func() { _ = closeLog() }()
				logger = l
			}
			out, err := app.TranslateText(cmd.Context(), *opts, strings.Join(args, " "), logger)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log backend activity to stderr")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var (
		source   string
		outDir   string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay the chat messages of a recorded log into a demo log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := logging.New(config.LoggingConfig{Level: "info"}, logging.Options{Stderr: true})
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			out := cmd.OutOrStdout()
			_, err = simulator.Run(cmd.Context(), simulator.Options{
				Source:   source,
				OutDir:   outDir,
				Interval: interval,
				Logger:   logger,
				Progress: func(i, total int, message string) {
					fmt.Fprintf(out, "(%d/%d) %s\n", i, total, message)
				},
			})
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "recorded game log to replay")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory for the demo log")
	cmd.Flags().DurationVar(&interval, "interval", simulator.DefaultInterval, "pause between messages")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "td2chat %s\n", version)
		},
	}
}
