package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidProvider = fmt.Errorf("%w: unsupported provider", ErrInvalidInput)
	ErrInvalidURL      = fmt.Errorf("%w: invalid media URL", ErrInvalidInput)

	// Acquisition errors
	ErrAPIRequest           = fmt.Errorf("API request failed")
	ErrStrategyFailed       = fmt.Errorf("strategy failed")
	ErrChainExhausted       = fmt.Errorf("all strategies failed")
	ErrTransfer             = fmt.Errorf("transfer failed")
	ErrExtractorUnavailable = fmt.Errorf("extractor unavailable")
	ErrTimeout              = fmt.Errorf("operation timed out")

	// Persistence errors
	ErrMetadataNotFound = fmt.Errorf("metadata not found")

	// Asset errors
	ErrAssetNotFound = fmt.Errorf("download not found")
	ErrAssetExpired  = fmt.Errorf("download expired")
)
