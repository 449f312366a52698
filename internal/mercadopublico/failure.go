package mercadopublico

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sapo-cl/mercadopublico-monitor/internal/httpclient"
)

// FailureKind classifies a failed remote call
type FailureKind string

const (
	// FailureTransport means the request never produced an HTTP response
	FailureTransport FailureKind = "transport"

	// FailureHTTP means the API answered with a non-200 status
	FailureHTTP FailureKind = "http"

	// FailureDecode means the body could not be decoded
	FailureDecode FailureKind = "decode"

	// FailureNotFound means a detail request returned an empty list
	FailureNotFound FailureKind = "not-found"
)

// Failure is the only error type returned by Client. It never carries the API ticket.
type Failure struct {
	Kind       FailureKind
	Op         string
	Code       string
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	target := f.Op
	if f.Code != "" {
		target = fmt.Sprintf("%s %s", f.Op, f.Code)
	}
	switch f.Kind {
	case FailureHTTP:
		return fmt.Sprintf("%s: remote API returned status %d", target, f.StatusCode)
	case FailureNotFound:
		return fmt.Sprintf("%s: not found", target)
	default:
		if f.Err != nil {
			return fmt.Sprintf("%s: %s failure: %v", target, f.Kind, f.Err)
		}
		return fmt.Sprintf("%s: %s failure", target, f.Kind)
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// IsNotFound reports whether err is a not-found Failure
func IsNotFound(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == FailureNotFound
}

// classify turns an httpclient error into a Failure, masking secret if the
// underlying error text still contains it
func classify(op, code, secret string, err error) *Failure {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return &Failure{
			Kind:       FailureHTTP,
			Op:         op,
			Code:       code,
			StatusCode: httpErr.StatusCode,
			// the HTTPError text includes the (redacted) URL, drop it anyway
			Err: errors.New(http.StatusText(httpErr.StatusCode)),
		}
	}
	if secret != "" && strings.Contains(err.Error(), secret) {
		err = errors.New(strings.ReplaceAll(err.Error(), secret, "REDACTED"))
	}
	return &Failure{Kind: FailureTransport, Op: op, Code: code, Err: err}
}
