// Package pipeline runs the per-delivery sequence: verify, normalize,
// extract, assemble, write. Each invocation is independent and strictly
// sequential; the only shared state is the cached verification secret held
// by the normalizer.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/extract"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/measure"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/metrics"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/normalize"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/record"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/sink"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/stream"
)

// Pipeline processes webhook deliveries end to end.
type Pipeline struct {
	normalizer *normalize.Normalizer
	sink       sink.Sink
	hub        *stream.Hub // nil when the live tail is disabled
	logger     *slog.Logger
	now        func() time.Time
}

// Result describes one successfully ingested delivery.
type Result struct {
	EventType  string
	DeliveryID string
	Record     record.OutputRecord
}

// New wires a pipeline. hub may be nil.
func New(normalizer *normalize.Normalizer, s sink.Sink, hub *stream.Hub, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		sink:       s,
		hub:        hub,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle processes one inbound request. Normalization failures come back as
// *normalize.Error, sink failures as *sink.Error; there is no partial-write
// state in between — either a full record reaches the sink or nothing does.
func (p *Pipeline) Handle(ctx context.Context, req normalize.InboundRequest) (Result, error) {
	start := p.now()

	ev, tree, err := p.normalizer.Normalize(req)
	if err != nil {
		return Result{}, err
	}

	m := extract.Extract(ev.EventType, tree)
	if m.Name == measure.FallbackName {
		metrics.UnknownEvents.Inc()
	}

	rec := record.Assemble(ev, tree, m, p.now())

	if err := p.sink.Write(ctx, &rec); err != nil {
		metrics.SinkWrites.WithLabelValues(classify(err)).Inc()
		p.logger.Error("sink write failed",
			"event", ev.EventType,
			"delivery", ev.DeliveryID,
			"transient", sink.IsTransient(err),
			"err", err)
		return Result{}, err
	}
	metrics.SinkWrites.WithLabelValues("ok").Inc()
	metrics.DeliveriesReceived.WithLabelValues(ev.EventType).Inc()
	metrics.ProcessingDuration.Observe(float64(time.Since(start).Milliseconds()))

	if p.hub != nil {
		p.hub.Publish(ev.EventType, &rec)
	}

	p.logger.Info("delivery ingested",
		"event", ev.EventType,
		"delivery", ev.DeliveryID,
		"measure", rec.Measure.Name,
		"fields", len(rec.Measure.Values),
		"bytes", len(ev.RawBody))

	return Result{EventType: ev.EventType, DeliveryID: ev.DeliveryID, Record: rec}, nil
}

func classify(err error) string {
	if sink.IsTransient(err) {
		return "transient"
	}
	return "permanent"
}
