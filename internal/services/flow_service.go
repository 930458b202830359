package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"content-studio/backend/internal/logging"
	"content-studio/backend/pkg/models"
)

const instrumentationName = "content-studio/backend/internal/services"

// Run outcomes recorded on metrics and spans.
const (
	outcomeSuccess   = "success"
	outcomeUpstream  = "upstream_error"
	outcomeTransport = "transport_error"
	outcomeInvalid   = "invalid_request"
)

// FlowService validates run requests and forwards them to a FlowRunner.
// It holds no per-request state and is safe for concurrent use.
type FlowService struct {
	runner   FlowRunner
	logger   *logging.Logger
	tracer   trace.Tracer
	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// NewFlowService creates a new FlowService using the global OpenTelemetry
// providers.
func NewFlowService(runner FlowRunner, logger *logging.Logger) (*FlowService, error) {
	meter := otel.Meter(instrumentationName)

	runs, err := meter.Int64Counter("flow.runs",
		metric.WithDescription("Flow runs forwarded to Langflow, by outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("flow.run.duration",
		metric.WithDescription("Time spent waiting on Langflow"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &FlowService{
		runner:   runner,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		runs:     runs,
		duration: duration,
	}, nil
}

// Run validates req and forwards it. Every call results in exactly one
// outbound request unless validation fails, in which case none is made and
// models.ErrInvalidRequestBody is returned.
func (s *FlowService) Run(ctx context.Context, req models.RunFlowRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcomeInvalid)))
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "flow.run", trace.WithAttributes(
		attribute.String("langflow.flow_id", req.FlowID),
		attribute.String("langflow.namespace_id", req.LangflowID),
		attribute.Bool("langflow.stream", req.Stream),
	))
	defer span.End()

	start := time.Now()
	payload, err := s.runner.RunFlow(ctx, req)
	elapsed := time.Since(start)

	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeTransport
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			outcome = outcomeUpstream
			span.SetAttributes(attribute.Int("langflow.status_code", upstream.StatusCode))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	s.runs.Add(ctx, 1, attrs)
	s.duration.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		s.logger.Error("Error running flow",
			"flow_id", req.FlowID,
			"outcome", outcome,
			"elapsed", elapsed,
			"error", err.Error(),
		)
		return nil, err
	}

	s.logger.Debug("Flow run completed",
		"flow_id", req.FlowID,
		"elapsed", elapsed,
		"bytes", len(payload),
	)
	return payload, nil
}
