package commands

import (
	"context"
	"fmt"
	"log/slog"

	anonymizerUseCase "github.com/sivd/piivault/internal/anonymizer/usecase"
)

// RunListEntries prints the newest vault entries, most recent first. With
// decrypt set each entry also carries its original plaintext.
func RunListEntries(
	ctx context.Context,
	useCase anonymizerUseCase.AnonymizerUseCase,
	logger *slog.Logger,
	limit int,
	decrypt bool,
	format string,
	io IOTuple,
) error {
	if limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", limit)
	}

	listings, err := useCase.ListVaultEntries(ctx, limit, decrypt)
	if err != nil {
		return fmt.Errorf("failed to list vault entries: %w", err)
	}

	logger.Info("vault entries listed", slog.Int("count", len(listings)))

	switch format {
	case "json":
		return writeJSON(io, listings)
	case "text":
		for _, listing := range listings {
			line := fmt.Sprintf(
				"%s  %-8s %s",
				listing.CreatedAt.Format("2006-01-02 15:04:05"),
				listing.Category,
				listing.Token,
			)
			if listing.Original != nil {
				line += "  " + *listing.Original
			}
			if _, err := fmt.Fprintln(io.Writer, line); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}
