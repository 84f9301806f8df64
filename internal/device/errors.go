package device

import (
	"errors"
	"fmt"
)

// ConnectivityError means the heater could not be reached or refused the
// request: timeouts, refused connections and token mismatches all land here.
// The next scheduled poll retries implicitly, so callers only need to know
// "device unreachable", not why.
type ConnectivityError struct {
	Op  string // the operation that failed, e.g. "status"
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("heater unreachable during %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err is (or wraps) a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
