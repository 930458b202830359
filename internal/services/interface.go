package services

import (
	"context"
	"encoding/json"

	"content-studio/backend/pkg/models"
)

// FlowRunner runs a flow on the remote workflow service.
type FlowRunner interface {
	// RunFlow forwards req and returns the service's JSON body unchanged.
	RunFlow(ctx context.Context, req models.RunFlowRequest) (json.RawMessage, error)
}
