// Package classifier asks a text-generation model for a grievance's priority,
// type and category. It never fails: any upstream or parsing problem resolves
// to the fallback classification.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"civicdesk/internal/grievance/metrics"
	"civicdesk/internal/grievance/models"
	"civicdesk/pkg/platform/circuit"
)

var tracer = otel.Tracer("civicdesk.classifier")

// Generator returns the text of the model's first candidate for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Classification struct {
	Priority      models.Priority
	GrievanceType string
	Category      string
}

// Fallback is used whenever the model's answer cannot be used.
func Fallback() Classification {
	return Classification{
		Priority:      models.PriorityMedium,
		GrievanceType: models.DefaultGrievanceType,
		Category:      models.DefaultCategory,
	}
}

type Outcome string

const (
	OutcomeClassified Outcome = "classified"
	OutcomeFallback   Outcome = "fallback"
)

// Fallback reasons.
const (
	ReasonNone          = ""
	ReasonUpstreamError = "upstream_error"
	ReasonTimeout       = "timeout"
	ReasonCircuitOpen   = "circuit_open"
	ReasonEmptyResponse = "empty_response"
	ReasonInvalidJSON   = "invalid_json"
	ReasonInvalidFields = "invalid_fields"
	// ReasonPartial marks a classified result where some fields kept their defaults.
	ReasonPartial = "partial"
)

// Result is either a real classification or the fallback, with the reason.
type Result struct {
	Classification
	Outcome Outcome
	Reason  string
}

// Client wraps a Generator with a timeout, a circuit breaker and parsing.
type Client struct {
	generator Generator
	timeout   time.Duration
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a Client. A nil generator always yields the fallback.
func New(generator Generator, opts ...Option) *Client {
	c := &Client{
		generator: generator,
		timeout:   10 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify issues one generate call and parses the answer.
func (c *Client) Classify(ctx context.Context, title, description string) Result {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "classifier.Classify", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	res := c.classify(ctx, title, description)

	span.SetAttributes(
		attribute.String("classifier.outcome", string(res.Outcome)),
		attribute.String("classifier.reason", res.Reason),
		attribute.String("grievance.priority", string(res.Priority)),
	)
	if res.Outcome == OutcomeFallback {
		span.SetStatus(codes.Error, res.Reason)
		c.logger.WarnContext(ctx, "classifier fell back to defaults", "reason", res.Reason)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if c.metrics != nil {
		c.metrics.ObserveClassification(string(res.Outcome), res.Reason, start)
	}
	return res
}

func (c *Client) classify(ctx context.Context, title, description string) Result {
	if c.generator == nil {
		return fallback(ReasonUpstreamError)
	}
	if c.breaker != nil && !c.breaker.Allow() {
		return fallback(ReasonCircuitOpen)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.generator.Generate(callCtx, BuildPrompt(title, description))
	if errors.Is(err, ErrNoCandidate) {
		c.recordSuccess()
		return fallback(ReasonEmptyResponse)
	}
	if err != nil {
		c.recordFailure()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return fallback(ReasonTimeout)
		}
		c.logger.DebugContext(ctx, "classifier upstream error", "error", err)
		return fallback(ReasonUpstreamError)
	}
	c.recordSuccess()

	return Parse(text)
}

func (c *Client) recordFailure() {
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("classifier circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess() {
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("classifier circuit closed", "breaker", c.breaker.Name())
	}
}

// Parse applies the acceptance rules to a raw model answer: strip an optional
// code fence, require a JSON object, then accept each field only if valid.
func Parse(raw string) Result {
	text := strings.TrimSpace(raw)
	if text == "" {
		return fallback(ReasonEmptyResponse)
	}
	text = stripFence(text)

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return fallback(ReasonInvalidJSON)
	}

	out := Fallback()
	accepted := 0
	if s, ok := fields["priority"].(string); ok {
		if p, err := models.ParsePriority(s); err == nil {
			out.Priority = p
			accepted++
		}
	}
	if s, ok := fields["grievanceType"].(string); ok && s != "" {
		out.GrievanceType = s
		accepted++
	}
	if s, ok := fields["category"].(string); ok && s != "" {
		out.Category = s
		accepted++
	}

	switch accepted {
	case 0:
		return fallback(ReasonInvalidFields)
	case 3:
		return Result{Classification: out, Outcome: OutcomeClassified, Reason: ReasonNone}
	default:
		return Result{Classification: out, Outcome: OutcomeClassified, Reason: ReasonPartial}
	}
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return text
	}
	if lang := strings.TrimSpace(body[:nl]); lang != "" && !strings.EqualFold(lang, "json") {
		return text
	}
	body = strings.TrimSpace(body[nl+1:])
	body, ok := strings.CutSuffix(body, "```")
	if !ok {
		return text
	}
	return strings.TrimSpace(body)
}

func fallback(reason string) Result {
	return Result{Classification: Fallback(), Outcome: OutcomeFallback, Reason: reason}
}
