package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"content-studio/backend/internal/logging"
	"content-studio/backend/pkg/models"
)

// DefaultMaxBodyBytes bounds the inbound run request when Server.MaxBodyBytes is unset.
const DefaultMaxBodyBytes = 1 << 20

// FlowRunService runs a validated request against the remote workflow service.
type FlowRunService interface {
	Run(ctx context.Context, req models.RunFlowRequest) (json.RawMessage, error)
}

// Server holds the dependencies for the run API.
type Server struct {
	Flows  FlowRunService
	Logger *logging.Logger
	// MaxBodyBytes caps the request body; larger bodies get 413.
	MaxBodyBytes int64
}

// NewServer creates a new Server.
func NewServer(flows FlowRunService, logger *logging.Logger) *Server {
	return &Server{Flows: flows, Logger: logger, MaxBodyBytes: DefaultMaxBodyBytes}
}

// RunFlow validates the body, forwards it and relays the remote result
// (POST /api/runFlow)
func (s *Server) RunFlow(c echo.Context) error {
	logger := s.Logger.With("request_id", requestID(c))

	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Debug("Rejected oversized run request", "limit", limit)
			return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResult{Error: models.ErrorRequestTooLarge})
		}
		return c.JSON(http.StatusBadRequest, models.ErrorResult{Error: models.ErrorInvalidRequestBody})
	}

	req, err := models.ParseRunFlowRequest(body)
	if err != nil {
		logger.Debug("Rejected run request")
		return c.JSON(http.StatusBadRequest, models.ErrorResult{Error: models.ErrorInvalidRequestBody})
	}

	payload, err := s.Flows.Run(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRequestBody) {
			return c.JSON(http.StatusBadRequest, models.ErrorResult{Error: models.ErrorInvalidRequestBody})
		}
		// The service has already logged the failure.
		logger.Debug("Run request failed")
		return c.JSON(http.StatusInternalServerError, models.ErrorResult{
			Error:   models.ErrorInitiatingSession,
			Details: err.Error(),
		})
	}

	return c.JSONBlob(http.StatusOK, payload)
}

// RegisterHandlers mounts the run API on the given router.
func RegisterHandlers(router *echo.Group, s *Server) {
	router.POST("/runFlow", s.RunFlow)
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
