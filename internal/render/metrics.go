package render

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// Metrics holds the OTel instruments recorded per build.
type Metrics struct {
	renders  metric.Int64Counter
	warnings metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the render instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	renders, err := meter.Int64Counter("skyplot.renders",
		metric.WithDescription("Render requests built, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create renders counter: %w", err)
	}
	warnings, err := meter.Int64Counter("skyplot.source_warnings",
		metric.WithDescription("Optional sources skipped while building render requests"))
	if err != nil {
		return nil, fmt.Errorf("failed to create warnings counter: %w", err)
	}
	duration, err := meter.Float64Histogram("skyplot.build_duration",
		metric.WithDescription("Time to build a render request"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	return &Metrics{renders: renders, warnings: warnings, duration: duration}, nil
}

func (m *Metrics) record(ctx context.Context, req *core.RenderRequest, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if c, ok := skyerr.ClassOf(err); ok {
			outcome = c.String()
		}
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.renders.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(d.Microseconds())/1000, attrs)
	if req != nil && len(req.Warnings) > 0 {
		m.warnings.Add(ctx, int64(len(req.Warnings)))
	}
}
