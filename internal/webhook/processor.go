package webhook

import (
	"context"

	"github.com/ignite/sparkpost-relay/internal/pkg/logger"
)

// HandlerFunc consumes one event. Returning an error only logs it; a
// failing handler never blocks the rest of the batch.
type HandlerFunc func(ctx context.Context, event Event) error

// Registry holds event subscriptions. Handlers register for a specific
// category or for all events; registration is not safe to interleave
// with processing, wire everything up at startup.
type Registry struct {
	byCategory map[Category][]HandlerFunc
	all        []HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{byCategory: map[Category][]HandlerFunc{}}
}

// Subscribe registers fn for one event category.
func (r *Registry) Subscribe(category Category, fn HandlerFunc) {
	r.byCategory[category] = append(r.byCategory[category], fn)
}

// SubscribeAll registers fn for every event category.
func (r *Registry) SubscribeAll(fn HandlerFunc) {
	r.all = append(r.all, fn)
}

func (r *Registry) handlersFor(category Category) []HandlerFunc {
	handlers := make([]HandlerFunc, 0, len(r.all)+len(r.byCategory[category]))
	handlers = append(handlers, r.byCategory[category]...)
	handlers = append(handlers, r.all...)
	return handlers
}

// BatchStats summarizes one processed batch.
type BatchStats struct {
	Processed int
	Skipped   int
	Errors    int
}

// Processor dispatches parsed events to registered handlers. When a
// subaccount is configured, events for other subaccounts are skipped.
type Processor struct {
	registry   *Registry
	subaccount int
}

func NewProcessor(registry *Registry, subaccount int) *Processor {
	return &Processor{registry: registry, subaccount: subaccount}
}

// ProcessBatch runs every event through its subscribed handlers. Handler
// errors are logged and counted but never abort the batch.
func (p *Processor) ProcessBatch(ctx context.Context, events []Event) BatchStats {
	var stats BatchStats
	for _, event := range events {
		if p.subaccount != 0 && event.SubaccountID() != p.subaccount {
			stats.Skipped++
			continue
		}

		handlers := p.registry.handlersFor(event.Category)
		if len(handlers) == 0 {
			stats.Skipped++
			continue
		}

		for _, fn := range handlers {
			if err := fn(ctx, event); err != nil {
				stats.Errors++
				logger.Error("webhook handler failed",
					"category", string(event.Category),
					"type", event.Type(),
					"error", err.Error())
			}
		}
		stats.Processed++
	}
	return stats
}
