package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("Success_WithNamespace", func(t *testing.T) {
		provider, err := NewProvider("carevault_test")
		require.NoError(t, err)
		assert.NotNil(t, provider.MeterProvider())
		assert.NotNil(t, provider.exporter)
	})

	t.Run("Success_RuntimeCollectors", func(t *testing.T) {
		provider, err := NewProvider("carevault_test")
		require.NoError(t, err)

		output := scrape(t, provider)
		assert.Contains(t, output, "go_goroutines")
	})

	t.Run("Success_ServiceResource", func(t *testing.T) {
		provider, err := NewProvider("carevault_test")
		require.NoError(t, err)

		counter, err := provider.MeterProvider().Meter("test").Int64Counter("sample_total")
		require.NoError(t, err)
		counter.Add(context.Background(), 1)

		output := scrape(t, provider)
		assert.Contains(t, output, "target_info")
		assert.Contains(t, output, `service_name="carevault_test"`)
	})
}

func TestProvider_Shutdown(t *testing.T) {
	t.Run("Success_ShutdownProvider", func(t *testing.T) {
		provider, err := NewProvider("carevault_test")
		require.NoError(t, err)
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	t.Run("Success_ShutdownNilProvider", func(t *testing.T) {
		provider := &Provider{meterProvider: nil}
		assert.NoError(t, provider.Shutdown(context.Background()))
	})
}
