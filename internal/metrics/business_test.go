package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/carevault/internal/errors"
)

// assertBizMetricLine matches a metric line by name, partial labels and value. The
// exporter adds OTel scope labels, hence the regex.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, StatusSuccess},
		{"forbidden", apperrors.Wrap(apperrors.ErrForbidden, "not on care team"), StatusDenied},
		{"unauthorized", fmt.Errorf("login: %w", apperrors.ErrUnauthorized), StatusDenied},
		{"unavailable", apperrors.ErrUnavailable, StatusError},
		{"plain", errors.New("boom"), StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestBusinessMetrics_Observe(t *testing.T) {
	provider, err := NewProvider("carevault_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "carevault_test")
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Now().Add(-20 * time.Millisecond)

	Observe(ctx, bm, "pii", "record_reveal", start, nil)
	Observe(ctx, bm, "pii", "record_reveal", start, nil)
	Observe(ctx, bm, "pii", "record_reveal", start, apperrors.ErrForbidden)
	Observe(ctx, bm, "auth", "login", start, errors.New("db down"))

	output := scrape(t, provider)

	assertBizMetricLine(t, output, `carevault_test_operations_total`,
		`domain="pii".*operation="record_reveal".*status="success"`, `2`)
	assertBizMetricLine(t, output, `carevault_test_operations_total`,
		`domain="pii".*operation="record_reveal".*status="denied"`, `1`)
	assertBizMetricLine(t, output, `carevault_test_operations_total`,
		`domain="auth".*operation="login".*status="error"`, `1`)
	assertBizMetricLine(t, output, `carevault_test_operation_duration_seconds_count`,
		`domain="pii".*operation="record_reveal".*status="success"`, `2`)
	assert.Contains(t, output, `le="0.025"`)
}

func TestBusinessMetrics_RecordDirect(t *testing.T) {
	provider, err := NewProvider("carevault_test")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "carevault_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "transport", "payload_encrypt", StatusSuccess)
	bm.RecordDuration(ctx, "transport", "payload_decrypt", 3*time.Millisecond, StatusError)

	output := scrape(t, provider)
	assertBizMetricLine(t, output, `carevault_test_operations_total`,
		`domain="transport".*operation="payload_encrypt".*status="success"`, `1`)
	assertBizMetricLine(t, output, `carevault_test_operation_duration_seconds_count`,
		`domain="transport".*operation="payload_decrypt".*status="error"`, `1`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	noOp := NewNoOpBusinessMetrics()
	assert.NotPanics(t, func() {
		Observe(context.Background(), noOp, "pii", "record_view", time.Now(), nil)
	})
}
