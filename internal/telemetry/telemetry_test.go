package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOtel_None(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), Options{Exporter: ExporterNone})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitOtel_Stdout(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), Options{Exporter: ExporterStdout, ServiceVersion: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitOtel_Unknown(t *testing.T) {
	_, err := InitOtel(context.Background(), Options{Exporter: "zipkin"})
	assert.Error(t, err)
}
