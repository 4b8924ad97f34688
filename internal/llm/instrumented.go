package llm

import (
	"context"
	"time"
)

// LatencyObserver records completion latency per model and status.
type LatencyObserver interface {
	ObserveLLMLatency(model, status string, seconds float64)
}

// InstrumentedClient wraps a Client and reports call latency to an observer.
type InstrumentedClient struct {
	inner    Client
	observer LatencyObserver
}

func WithMetrics(inner Client, observer LatencyObserver) *InstrumentedClient {
	return &InstrumentedClient{inner: inner, observer: observer}
}

func (c *InstrumentedClient) Complete(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := c.inner.Complete(ctx, req)
	if c.observer != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		model := req.Model
		if model == "" {
			model = "default"
		}
		c.observer.ObserveLLMLatency(model, status, time.Since(start).Seconds())
	}
	return resp, err
}
