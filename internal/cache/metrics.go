package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

var (
	lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamerfeeds",
		Subsystem: "thread_cache",
		Name:      "lookups_total",
		Help:      "Thread cache lookups by result (hit, miss, error).",
	}, []string{"driver", "result"})

	syncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamerfeeds",
		Subsystem: "thread_cache",
		Name:      "syncs_total",
		Help:      "Point updates applied to cached threads by result (ok, error).",
	}, []string{"driver", "result"})
)

// Instrumented считает попадания/промахи и результаты синхронизации.
type Instrumented struct {
	ThreadCache
	driver string
}

// WithMetrics оборачивает кэш метриками с меткой driver.
func WithMetrics(c ThreadCache, driver string) *Instrumented {
	return &Instrumented{ThreadCache: c, driver: driver}
}

func (i *Instrumented) Get(ctx context.Context, target models.Target) (models.Forest, bool, error) {
	f, ok, err := i.ThreadCache.Get(ctx, target)

	switch {
	case err != nil:
		lookups.WithLabelValues(i.driver, "error").Inc()
	case ok:
		lookups.WithLabelValues(i.driver, "hit").Inc()
	default:
		lookups.WithLabelValues(i.driver, "miss").Inc()
	}

	return f, ok, err
}

func (i *Instrumented) Apply(ctx context.Context, target models.Target, fn ApplyFunc) error {
	err := i.ThreadCache.Apply(ctx, target, fn)

	if err != nil {
		syncs.WithLabelValues(i.driver, "error").Inc()
	} else {
		syncs.WithLabelValues(i.driver, "ok").Inc()
	}

	return err
}
