package usecase

import (
	"context"
	"time"

	"github.com/sivd/piivault/internal/anonymizer/domain"
	"github.com/sivd/piivault/internal/metrics"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

const metricsDomain = "anonymizer"

// anonymizerUseCaseWithMetrics decorates AnonymizerUseCase with metrics
// instrumentation.
type anonymizerUseCaseWithMetrics struct {
	next    AnonymizerUseCase
	metrics metrics.BusinessMetrics
}

// NewAnonymizerUseCaseWithMetrics wraps an AnonymizerUseCase with metrics
// recording.
func NewAnonymizerUseCaseWithMetrics(
	useCase AnonymizerUseCase,
	m metrics.BusinessMetrics,
) AnonymizerUseCase {
	return &anonymizerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *anonymizerUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	a.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// AnonymizeText records metrics for text anonymization.
func (a *anonymizerUseCaseWithMetrics) AnonymizeText(
	ctx context.Context,
	text string,
) (*domain.TextResult, error) {
	start := time.Now()
	result, err := a.next.AnonymizeText(ctx, text)
	a.record(ctx, "anonymize_text", start, err)
	return result, err
}

// DeanonymizeText records metrics for text restoration.
func (a *anonymizerUseCaseWithMetrics) DeanonymizeText(
	ctx context.Context,
	text string,
) (string, error) {
	start := time.Now()
	result, err := a.next.DeanonymizeText(ctx, text)
	a.record(ctx, "deanonymize_text", start, err)
	return result, err
}

// AnonymizeObject records metrics for object anonymization.
func (a *anonymizerUseCaseWithMetrics) AnonymizeObject(
	ctx context.Context,
	data any,
	piiFields []string,
) (any, error) {
	start := time.Now()
	result, err := a.next.AnonymizeObject(ctx, data, piiFields)
	a.record(ctx, "anonymize_object", start, err)
	return result, err
}

// DeanonymizeObject records metrics for object restoration.
func (a *anonymizerUseCaseWithMetrics) DeanonymizeObject(
	ctx context.Context,
	data any,
) (any, error) {
	start := time.Now()
	result, err := a.next.DeanonymizeObject(ctx, data)
	a.record(ctx, "deanonymize_object", start, err)
	return result, err
}

// ListVaultEntries records metrics for vault listings.
func (a *anonymizerUseCaseWithMetrics) ListVaultEntries(
	ctx context.Context,
	limit int,
	decrypt bool,
) ([]*vaultDomain.EntryListing, error) {
	start := time.Now()
	result, err := a.next.ListVaultEntries(ctx, limit, decrypt)
	a.record(ctx, "vault_list", start, err)
	return result, err
}
