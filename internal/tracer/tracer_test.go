package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tournaija/tournaija/internal/config"
	"github.com/tournaija/tournaija/internal/tracer"
)

func TestSetupDisabledInstallsNoop(t *testing.T) {
	shutdown, err := tracer.Setup(context.Background(), config.TracingConfig{})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, ok := otel.GetTracerProvider().(noop.TracerProvider)
	assert.True(t, ok, "expected noop provider, got %T", otel.GetTracerProvider())
}

func TestSetupStdout(t *testing.T) {
	shutdown, err := tracer.Setup(context.Background(), config.TracingConfig{Enabled: true, Exporter: "stdout"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupUnsupportedExporter(t *testing.T) {
	_, err := tracer.Setup(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
}

func TestSpanHelpers(t *testing.T) {
	_, span := tracer.StartSpan(context.Background(), "test.span")
	defer span.End()
	span.SetAttributes(tracer.StringAttr("k", "v"), tracer.IntAttr("n", 1))
	tracer.RecordError(span, errors.New("boom"))
	tracer.SetOK(span)
}
