package webhook

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fetch-level failure taxonomy. Match with errors.Is.
var (
	ErrConfig    = errors.New("webhook url not configured")
	ErrTransport = errors.New("webhook transport failure")
	ErrShape     = errors.New("webhook returned non-array data")
)

// Error kinds as reported to the API and the ingest history.
const (
	KindConfig    = "config"
	KindTransport = "transport"
	KindShape     = "shape"
	KindUnknown   = "unknown"
)

// FetchError is returned by every failed fetch or refresh call.
type FetchError struct {
	Kind string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *FetchError) sentinel() error {
	switch e.Kind {
	case KindConfig:
		return ErrConfig
	case KindShape:
		return ErrShape
	default:
		return ErrTransport
	}
}

// KindOf classifies err into one of the error kinds.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrShape):
		return KindShape
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}

func configError(what string) error {
	return &FetchError{Kind: KindConfig, Err: errors.New(what)}
}

func transportError(err error) error {
	return &FetchError{Kind: KindTransport, Err: err}
}

func shapeError(err error) error {
	return &FetchError{Kind: KindShape, Err: err}
}
