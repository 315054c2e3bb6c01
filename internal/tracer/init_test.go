package tracer

import (
	"context"
	"testing"

	"ai-shopassist-be/internal/config"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
)

func TestInitTracer_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown := InitTracer(context.Background(), config.TracingConfig{Enabled: false})

	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider(), "disabled tracing leaves the global provider alone")
}
