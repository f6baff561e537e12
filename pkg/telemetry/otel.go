package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tommytrillva/midnight-sub001/pkg/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
