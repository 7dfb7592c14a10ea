package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Backend failures are collapsed into two kinds so that no
// backend-specific error type crosses the adapter boundary.
var (
	// ErrBackendUnavailable marks a backend that could not serve the call.
	ErrBackendUnavailable = errors.New("model backend unavailable")

	// ErrBackendTimeout marks a call that exceeded its deadline.
	ErrBackendTimeout = errors.New("model backend timeout")
)

// classify maps a transport or API error onto the adapter error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
