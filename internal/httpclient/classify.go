package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"syscall"
	"time"

	"github.com/torosent/variantbench/internal/metrics"
)

// BuildError wraps a failure to construct a request before dispatch.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string { return "build request: " + e.Err.Error() }

func (e *BuildError) Unwrap() error { return e.Err }

// Classify maps a transport error to its ErrorKind. Timeouts take priority
// over connection failures, which take priority over other request errors.
func Classify(err error) metrics.ErrorKind {
	if err == nil {
		return ""
	}
	if isTimeout(err) {
		return metrics.ErrorKindTimeout
	}
	if isConnectionError(err) {
		return metrics.ErrorKindConnection
	}
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return metrics.ErrorKindRequest
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return metrics.ErrorKindRequest
	}
	return metrics.ErrorKindUnexpected
}

// Describe formats the error message stored on a failed outcome.
func Describe(kind metrics.ErrorKind, err error, timeout time.Duration) string {
	switch kind {
	case metrics.ErrorKindTimeout:
		return fmt.Sprintf("Timeout after %s: %v", timeout, err)
	case metrics.ErrorKindConnection:
		return fmt.Sprintf("Connection error: %v", err)
	case metrics.ErrorKindRequest:
		return fmt.Sprintf("Request error: %v", err)
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var recordErr tls.RecordHeaderError
	return errors.As(err, &recordErr)
}
