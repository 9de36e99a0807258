package config

import "time"

// Application constants for the liftline analysis service.
const (
	// Application info
	AppName    = "liftline"
	AppVersion = "1.2.0"

	// Upload handling
	DefaultMaxUploadBytes = 20 << 20
	UploadFileExtension   = ".xlsx"
	UploadFormField       = "file"

	// Rate limiting
	DefaultRateLimit = 100
	DefaultBurstSize = 50

	// Operation timeouts
	DefaultAnalysisTimeout = 5 * time.Minute

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
