// Package telemetry wraps Sentry tracing and error capture. Everything
// degrades to a no-op when no DSN is configured, so local runs and tests
// never need a Sentry account.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const serviceName = "virtualta"

// Config controls Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// Init configures the global Sentry client and returns a flush function to
// call on shutdown. An empty DSN yields a no-op flush.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	env := cfg.Environment
	if env == "" {
		env = "development"
	}
	rate := cfg.TracesSampleRate
	if rate == 0 {
		rate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      env,
		EnableTracing:    true,
		TracesSampleRate: rate,
		Debug:            cfg.Debug,
		ServerName:       serviceName,
		TracesSampler: func(sc sentry.SamplingContext) float64 {
			// Health probes fire constantly and carry no signal.
			if sc.Span.Name == "GET /health" {
				return 0
			}
			var root sentry.SpanID
			if sc.Span.ParentSpanID != root {
				// Child spans inherit the parent's decision.
				if sc.Span.Sampled.Bool() {
					return 1
				}
				return 0
			}
			return rate
		},
	})
	if err != nil {
		log.Printf("sentry: init failed, continuing without tracing: %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: tracing enabled (environment=%s sample_rate=%.2f)", env, rate)
	return func() { sentry.Flush(5 * time.Second) }, nil
}

// SpanAttributes are the tags attached to pipeline spans.
type SpanAttributes struct {
	DocumentID string
	Operation  string
}

// Span is a finished-once handle over a sentry span.
type Span struct {
	inner *sentry.Span
}

func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// StartSpan opens a child span under the transaction in ctx, or a fresh
// transaction when there is none (background jobs, one-shot CLI runs).
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	if attrs.DocumentID != "" {
		span.SetTag("document_id", attrs.DocumentID)
	}
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}

	return span.Context(), &Span{inner: span}
}

// CaptureError reports err through the hub bound to ctx when present.
func CaptureError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// CaptureMessage reports a message through the hub bound to ctx when present.
func CaptureMessage(ctx context.Context, message string) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureMessage(message)
		return
	}
	sentry.CaptureMessage(message)
}
