package http

import (
	"context"
	"io"

	"liftline/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the interface for timeline analysis operations
type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, src io.Reader, opts domain.AnalysisOptions) (*domain.AnalysisResult, error)
}
