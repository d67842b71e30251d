package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network/navigation failures toward an external site
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeExtraction represents a candidate item that could not be parsed
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeRun represents a session-level failure aborting an entire site run
	ErrorTypeRun ErrorType = "run"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ErrUnsupportedSite is returned when a run is requested for a site name
// that no extractor is registered for.
var ErrUnsupportedSite = stderrors.New("unsupported site")

// ScrapeError represents a scraping-pipeline error
type ScrapeError struct {
	Type    ErrorType
	Site    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Site, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Site, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, site, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Site:    site,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(site, message string, err error) *ScrapeError {
	return New(ErrorTypeFetch, site, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(site, message string, err error) *ScrapeError {
	return New(ErrorTypeExtraction, site, message, err)
}

// NewRun creates a new run failure
func NewRun(site, message string, err error) *ScrapeError {
	return New(ErrorTypeRun, site, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err is a ScrapeError of the given type.
func IsType(err error, t ErrorType) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type == t
	}
	return false
}
