package services

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/dmitrijs2005/gophpos/internal/client/services"

type instruments struct {
	syncRuns      metric.Int64Counter
	syncedRecords metric.Int64Counter
	sales         metric.Int64Counter
	reconciled    metric.Int64Counter
}

func counter(m metric.Meter, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

var meters = sync.OnceValue(func() *instruments {
	m := otel.Meter(meterName)
	return &instruments{
		syncRuns:      counter(m, "pos.sync.runs", "Catalog sync runs by entity and outcome"),
		syncedRecords: counter(m, "pos.sync.records", "Records pulled from the server of record"),
		sales:         counter(m, "pos.sales", "Completed sales by channel"),
		reconciled:    counter(m, "pos.reconcile.orders", "Queued orders delivered by outcome"),
	}
})

func add(ctx context.Context, c metric.Int64Counter, n int64, kv ...attribute.KeyValue) {
	c.Add(ctx, n, metric.WithAttributes(kv...))
}
