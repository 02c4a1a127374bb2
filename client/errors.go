package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrSavedOffline reports that a mutation could not reach the server and
// was appended to the offline queue instead. It is not a failure: the
// action will replay when connectivity returns.
var ErrSavedOffline = errors.New("saved offline, will sync when connection returns")

// APIError is a definitive server-side rejection. It is never queued for
// replay; the user sees the message.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Definitive reports whether retrying the identical request is pointless.
// Server-side 5xx responses are treated like connectivity loss: the
// request may succeed later.
func (e *APIError) Definitive() bool {
	return e.Status >= 400 && e.Status < 500
}

// ConnectivityError wraps a transport-level failure: dial errors, resets,
// timeouts with no observed response.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "connectivity failure: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// isConnectivity classifies a transport error. Context cancellation is
// the caller giving up, not the network failing.
func isConnectivity(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// http.Client wraps dial failures in *url.Error which satisfies
	// net.Error for timeouts only; treat the rest as connectivity too,
	// since no response was observed.
	return true
}
