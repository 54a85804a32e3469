package remote

import (
	"context"
	"errors"
	"net"
	"net/url"
)

// classify turns a transport-level error (no HTTP response received) into a
// TransportError. Only connection-level failures count as offline; a timeout
// means the server may have processed the request, so replaying it blindly
// could duplicate a side effect.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Err: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &TransportError{Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TransportError{Err: err}
	}

	var op *net.OpError
	var dns *net.DNSError
	if errors.As(err, &op) || errors.As(err, &dns) {
		return &TransportError{Offline: true, Err: err}
	}
	// No response and no recognizable timeout: assume connectivity loss.
	if errors.As(err, &ue) {
		return &TransportError{Offline: true, Err: err}
	}
	return &TransportError{Err: err}
}
