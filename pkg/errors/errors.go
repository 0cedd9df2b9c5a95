package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents page loads, clicks and element lookups that failed
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeExtraction represents spec table extraction errors
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeDrift represents a listing view that no longer matches the cursor
	ErrorTypeDrift ErrorType = "drift"
	// ErrorTypePagination represents a listing page that could not be reached
	ErrorTypePagination ErrorType = "pagination"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeOutput represents CSV or publisher errors
	ErrorTypeOutput ErrorType = "output"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlerError represents a crawler-specific error
type CrawlerError struct {
	Type    ErrorType
	Stage   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlerError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether retrying the same run later could succeed.
// Configuration and output errors need an operator.
func (e *CrawlerError) IsTransient() bool {
	switch e.Type {
	case ErrorTypeConfiguration, ErrorTypeOutput:
		return false
	default:
		return true
	}
}

// IsTransient reports whether err wraps a transient CrawlerError. Other errors are not transient.
func IsTransient(err error) bool {
	var ce *CrawlerError
	if stderrors.As(err, &ce) {
		return ce.IsTransient()
	}
	return false
}

// IsType reports whether err (or anything it wraps) is a CrawlerError of the given type
func IsType(err error, errType ErrorType) bool {
	var ce *CrawlerError
	if stderrors.As(err, &ce) {
		return ce.Type == errType
	}
	return false
}

// New creates a new CrawlerError
func New(errType ErrorType, stage, message string, err error) *CrawlerError {
	return &CrawlerError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigation creates a new navigation error
func NewNavigation(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeNavigation, stage, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeExtraction, stage, message, err)
}

// NewDrift creates a new drift error
func NewDrift(stage, message string) *CrawlerError {
	return New(ErrorTypeDrift, stage, message, nil)
}

// NewPagination creates a new pagination error
func NewPagination(stage string, page int) *CrawlerError {
	return New(ErrorTypePagination, stage, fmt.Sprintf("movePage(%d) failed", page), nil)
}

// NewNetwork creates a new network error
func NewNetwork(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeNetwork, stage, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(stage string, duration time.Duration) *CrawlerError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, stage, message, nil)
}

// NewOutput creates a new output error
func NewOutput(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeOutput, stage, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlerError {
	return New(ErrorTypeConfiguration, "", message, err)
}
