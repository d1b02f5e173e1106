package poller

import (
	"errors"
	"io"
	"net"
	"regexp"
	"syscall"
)

// NetworkError marks a transport failure worth restarting the cycle for
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// telebot reports Telegram API failures as "telegram: <description> (<code>)"
var gatewayStatus = regexp.MustCompile(`\((50[0234])\)\s*$`)

// IsNetworkError reports whether err is a transient transport failure:
// connection level errors, timeouts and Telegram gateway errors.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var marked *NetworkError
	if errors.As(err, &marked) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE):
		return true
	}

	return gatewayStatus.MatchString(err.Error())
}
