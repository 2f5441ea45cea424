package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthzRecorder counts authorization decisions per route, labeled by outcome.
// It satisfies the enforcement middleware's decision recorder so allow and
// deny rates show up next to the HTTP metrics.
type AuthzRecorder struct {
	decisionCounter metric.Int64Counter
}

// NewAuthzRecorder creates an authorization decision recorder.
func NewAuthzRecorder(meterProvider metric.MeterProvider, namespace string) (*AuthzRecorder, error) {
	meter := meterProvider.Meter(namespace)

	decisionCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_authz_decisions_total", namespace),
		metric.WithDescription("Total number of authorization decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authz decision counter: %w", err)
	}

	return &AuthzRecorder{decisionCounter: decisionCounter}, nil
}

// RecordAuthzDecision increments the decision counter for the route.
func (r *AuthzRecorder) RecordAuthzDecision(route string, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}

	r.decisionCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("route", route),
			attribute.String("outcome", outcome),
		),
	)
}
