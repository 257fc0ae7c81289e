package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	anonymizerUseCase "github.com/sivd/piivault/internal/anonymizer/usecase"
)

// RunAnonymizeObject parses a JSON object or array, tokenizes its PII string
// leaves, and writes the anonymized document as indented JSON.
//
// With a non-empty piiFields list, only those field names are selected by
// name; value-shape detection still applies to every string leaf.
func RunAnonymizeObject(
	ctx context.Context,
	useCase anonymizerUseCase.AnonymizerUseCase,
	logger *slog.Logger,
	dataJSON string,
	piiFields []string,
	io IOTuple,
) error {
	var data any
	if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
		return fmt.Errorf("failed to parse JSON data: %w", err)
	}

	result, err := useCase.AnonymizeObject(ctx, data, piiFields)
	if err != nil {
		return fmt.Errorf("failed to anonymize object: %w", err)
	}

	logger.Info("object anonymized")

	return writeJSON(io, result)
}

// RunDeanonymizeObject parses a JSON object or array, restores vault tokens
// found in its string leaves, and writes the restored document as indented JSON.
func RunDeanonymizeObject(
	ctx context.Context,
	useCase anonymizerUseCase.AnonymizerUseCase,
	logger *slog.Logger,
	dataJSON string,
	io IOTuple,
) error {
	var data any
	if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
		return fmt.Errorf("failed to parse JSON data: %w", err)
	}

	result, err := useCase.DeanonymizeObject(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to deanonymize object: %w", err)
	}

	return writeJSON(io, result)
}
