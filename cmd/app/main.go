// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sivd/piivault/cmd/app/commands"
	"github.com/sivd/piivault/internal/app"
	anonymizerUseCase "github.com/sivd/piivault/internal/anonymizer/usecase"
	"github.com/sivd/piivault/internal/config"
)

var version = "1.0.0"

// useCaseAction wires a container-backed anonymizer use case into a CLI
// action, releasing container resources when the action returns.
type useCaseAction func(
	ctx context.Context,
	cmd *cli.Command,
	useCase anonymizerUseCase.AnonymizerUseCase,
	logger *slog.Logger,
) error

func withUseCase(action useCaseAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}

		container := app.NewContainer(cfg)
		logger := container.Logger()
		defer func() {
			if err := container.Shutdown(context.Background()); err != nil {
				logger.Error("failed to shutdown container", slog.Any("error", err))
			}
		}()

		useCase, err := container.AnonymizerUseCase()
		if err != nil {
			return err
		}

		return action(ctx, cmd, useCase, logger)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "piivault",
		Usage:   "PII anonymization vault",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP API server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "anonymize",
				Usage: "Replace detected PII in a text message with vault tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "text",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Text message to anonymize",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: withUseCase(func(
					ctx context.Context,
					cmd *cli.Command,
					useCase anonymizerUseCase.AnonymizerUseCase,
					logger *slog.Logger,
				) error {
					return commands.RunAnonymize(
						ctx, useCase, logger,
						cmd.String("text"), cmd.String("format"),
						commands.DefaultIO(),
					)
				}),
			},
			{
				Name:  "deanonymize",
				Usage: "Restore vault tokens in a text message to their original values",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "text",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Text message containing vault tokens",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: withUseCase(func(
					ctx context.Context,
					cmd *cli.Command,
					useCase anonymizerUseCase.AnonymizerUseCase,
					logger *slog.Logger,
				) error {
					return commands.RunDeanonymize(
						ctx, useCase, logger,
						cmd.String("text"), cmd.String("format"),
						commands.DefaultIO(),
					)
				}),
			},
			{
				Name:  "anonymize-object",
				Usage: "Tokenize PII string leaves of a JSON object or array",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "JSON document to anonymize",
					},
					&cli.StringSliceFlag{
						Name:    "field",
						Aliases: []string{"F"},
						Usage:   "PII field name (repeatable, replaces the default field list)",
					},
				},
				Action: withUseCase(func(
					ctx context.Context,
					cmd *cli.Command,
					useCase anonymizerUseCase.AnonymizerUseCase,
					logger *slog.Logger,
				) error {
					return commands.RunAnonymizeObject(
						ctx, useCase, logger,
						cmd.String("data"), cmd.StringSlice("field"),
						commands.DefaultIO(),
					)
				}),
			},
			{
				Name:  "deanonymize-object",
				Usage: "Restore vault tokens in a JSON object or array",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "JSON document containing vault tokens",
					},
				},
				Action: withUseCase(func(
					ctx context.Context,
					cmd *cli.Command,
					useCase anonymizerUseCase.AnonymizerUseCase,
					logger *slog.Logger,
				) error {
					return commands.RunDeanonymizeObject(
						ctx, useCase, logger,
						cmd.String("data"),
						commands.DefaultIO(),
					)
				}),
			},
			{
				Name:  "list-entries",
				Usage: "List the newest vault entries",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   100,
						Usage:   "Maximum number of entries to list",
					},
					&cli.BoolFlag{
						Name:  "decrypt",
						Usage: "Include the decrypted original value for each entry",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: withUseCase(func(
					ctx context.Context,
					cmd *cli.Command,
					useCase anonymizerUseCase.AnonymizerUseCase,
					logger *slog.Logger,
				) error {
					return commands.RunListEntries(
						ctx, useCase, logger,
						int(cmd.Int("limit")), cmd.Bool("decrypt"), cmd.String("format"),
						commands.DefaultIO(),
					)
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
