package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sivd/piivault/internal/anonymizer/domain"
	anonymizerUseCase "github.com/sivd/piivault/internal/anonymizer/usecase"
)

// RunAnonymize replaces detected PII in a text message with vault tokens and
// writes the result to the provided writer. With format "json" the output
// includes the replacement list.
func RunAnonymize(
	ctx context.Context,
	useCase anonymizerUseCase.AnonymizerUseCase,
	logger *slog.Logger,
	text string,
	format string,
	io IOTuple,
) error {
	result, err := useCase.AnonymizeText(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to anonymize text: %w", err)
	}

	logger.Info("text anonymized", slog.Int("replacements", len(result.Replacements)))

	switch format {
	case "json":
		return writeJSON(io, anonymizeOutput{
			AnonymizedMessage: result.Text,
			Replacements:      result.Replacements,
		})
	case "text":
		_, err := fmt.Fprintln(io.Writer, result.Text)
		return err
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}

// RunDeanonymize restores vault tokens found in a text message and writes the
// restored text to the provided writer.
func RunDeanonymize(
	ctx context.Context,
	useCase anonymizerUseCase.AnonymizerUseCase,
	logger *slog.Logger,
	text string,
	format string,
	io IOTuple,
) error {
	restored, err := useCase.DeanonymizeText(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to deanonymize text: %w", err)
	}

	switch format {
	case "json":
		return writeJSON(io, deanonymizeOutput{Message: restored})
	case "text":
		_, err := fmt.Fprintln(io.Writer, restored)
		return err
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}

type anonymizeOutput struct {
	AnonymizedMessage string               `json:"anonymized_message"`
	Replacements      []domain.Replacement `json:"replacements"`
}

type deanonymizeOutput struct {
	Message string `json:"message"`
}

// writeJSON writes the value as indented JSON followed by a newline.
func writeJSON(io IOTuple, value any) error {
	encoder := json.NewEncoder(io.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
