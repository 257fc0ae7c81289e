package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks that the Prometheus output contains a metric line
// matching the given name, partial label pattern, and value. Uses a regex to
// tolerate the extra OTel scope labels the exporter injects.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrapeMetrics(t *testing.T, provider *Provider) string {
	t.Helper()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	return recorder.Body.String()
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("piivault")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "piivault")
	require.NoError(t, err)
	assert.NotNil(t, bm)
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("piivault")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "piivault")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "anonymizer", "anonymize_text", "success")
	bm.RecordOperation(ctx, "anonymizer", "anonymize_text", "success")
	bm.RecordOperation(ctx, "vault", "vault_list", "error")

	output := scrapeMetrics(t, provider)
	assertMetricLine(t, output, "piivault_operations_total",
		`operation="anonymize_text"`, "2")
	assertMetricLine(t, output, "piivault_operations_total",
		`operation="vault_list"`, "1")
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("piivault")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "piivault")
	require.NoError(t, err)

	bm.RecordDuration(context.Background(), "anonymizer", "deanonymize_text", 25*time.Millisecond, "success")

	output := scrapeMetrics(t, provider)
	assert.Contains(t, output, "piivault_operation_duration_seconds")
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	// Must be safe to call without a provider.
	bm.RecordOperation(context.Background(), "anonymizer", "anonymize_text", "success")
	bm.RecordDuration(context.Background(), "anonymizer", "anonymize_text", time.Second, "success")
}
