// Package services implements the business logic layer of the liftline
// application. It provides a clean separation between HTTP handlers and the
// analysis pipeline, ensuring that business rules are centralized and
// testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Domain-focused methods that encapsulate business rules
//	4. Structured logging and metrics on every operation
//
// # Common Service Pattern
//
// Services typically follow this structure:
//
//	type ServiceName struct {
//	    logger *slog.Logger
//	}
//
//	func NewServiceNameWithLogger(cfg *config.Config, logger *slog.Logger) (*ServiceName, error) {
//	    if logger == nil {
//	        logger = slog.Default()
//	    }
//	    return &ServiceName{logger: logger}, nil
//	}
//
//	func (s *ServiceName) BusinessOperation(ctx context.Context, input Input) (*Output, error) {
//	    result, err := s.doWork(ctx, input)
//	    if err != nil {
//	        s.logger.ErrorContext(ctx, "operation failed", "error", err)
//	        return nil, fmt.Errorf("operation failed: %w", err)
//	    }
//	    return result, nil
//	}
//
// # Available Services
//
// The package provides these core services:
//
//	- AnalysisService: Runs the workbook analysis pipeline
//	- HealthService: Provides system health checks
//
// # Error Handling
//
// Services return domain-specific sentinel errors that handlers transform
// into API error responses: ErrWorkbookUnreadable for parse failures,
// ErrInvalidInput for rejected requests, ErrAnalysisTimeout for runs cut
// short by their deadline.
package services
