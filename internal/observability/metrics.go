package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce sync.Once

	authEvents     metric.Int64Counter
	proofEvents    metric.Int64Counter
	donationEvents metric.Int64Counter
	repoOperations metric.Int64Counter
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("worldfund-api")
		authEvents, _ = meter.Int64Counter("worldfund_auth_events_total",
			metric.WithDescription("Wallet authentication events by stage and outcome"))
		proofEvents, _ = meter.Int64Counter("worldfund_proof_events_total",
			metric.WithDescription("World ID proof verification events"))
		donationEvents, _ = meter.Int64Counter("worldfund_donation_events_total",
			metric.WithDescription("Donation verification events by outcome"))
		repoOperations, _ = meter.Int64Counter("worldfund_repository_operations_total",
			metric.WithDescription("Repository operations by entity, operation and outcome"))
	})
}

func RecordAuthEvent(ctx context.Context, stage, outcome string) {
	initMetrics()
	if authEvents == nil {
		return
	}
	authEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
}

func RecordProofEvent(ctx context.Context, outcome string) {
	initMetrics()
	if proofEvents == nil {
		return
	}
	proofEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordDonationEvent(ctx context.Context, outcome string) {
	initMetrics()
	if donationEvents == nil {
		return
	}
	donationEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	initMetrics()
	if repoOperations == nil {
		return
	}
	repoOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
