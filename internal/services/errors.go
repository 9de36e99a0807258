package services

import "errors"

// Analysis service errors
var (
	ErrWorkbookUnreadable = errors.New("workbook could not be parsed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAnalysisTimeout    = errors.New("analysis timed out")
)
