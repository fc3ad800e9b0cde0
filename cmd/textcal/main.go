package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"textcal/internal/cli"
	"textcal/internal/config"
	"textcal/internal/controller"
	"textcal/internal/event"
	"textcal/internal/extract"
	"textcal/internal/llm"
	"textcal/internal/publish"
	"textcal/internal/tui"
)

var version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:     "textcal",
		Short:   "Turn free text into calendar events via a local LLM and CalDAV",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(os.Stderr)
			ctl, err := buildController()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			app := cli.New(ctl, os.Stdin, os.Stdout, os.Stderr)
			if err := app.Run(cmd.Context()); err != nil {
				os.Exit(1)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	uiCmd := &cobra.Command{
		Use:   "ui",
		Short: "Interactive terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			// The terminal belongs to the UI; debug logging goes to a file.
			logFile, err := os.OpenFile("textcal.debug.jsonl", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err == nil {
				defer logFile.Close()
				setupLogging(logFile)
			} else {
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}

			ctl, cfgErr := buildController()
			return tui.Run(ctl, cfgErr)
		},
	}
	root.AddCommand(uiCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(w *os.File) {
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(os.Getenv("TEXTCAL_LOG_LEVEL")); err == nil && os.Getenv("TEXTCAL_LOG_LEVEL") != "" {
		level = l
	}
	zerolog.SetGlobalLevel(level)
	if w == os.Stderr {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
}

// buildController assembles the pipeline from config.json. The controller is
// always non-nil so the TUI can render the configuration problem with its
// controls locked.
func buildController() (*controller.Controller, error) {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return controller.New(nil, event.NewBuilder(), nil), err
	}

	adapter, err := llm.NewAdapter(cfg.Ollama)
	if err != nil {
		return controller.New(nil, event.NewBuilder(), nil), err
	}

	dir, err := publish.NewDAVDirectory(cfg.CalDAV)
	if err != nil {
		return controller.New(nil, event.NewBuilder(), nil), err
	}

	extractor := extract.New(adapter)
	publisher := publish.NewPublisher(dir, cfg.CalDAV.CalendarName)
	return controller.New(extractor, event.NewBuilder(), publisher), nil
}
