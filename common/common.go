package common

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// DefaultHTTPTimeout is the default timeout applied to outbound HTTP clients
const DefaultHTTPTimeout = time.Second * 15

var (
	// ErrFunctionNotSupported defines a standardised error for an unsupported
	// wrapper function by an exchange
	ErrFunctionNotSupported = errors.New("unsupported wrapper function")
	// ErrNilPointer defines an error for a nil pointer
	ErrNilPointer = errors.New("nil pointer")
)

// NewHTTPClientWithTimeout initialises a new HTTP client and its underlying
// transport with the specified timeout duration
func NewHTTPClientWithTimeout(t time.Duration) *http.Client {
	return &http.Client{Timeout: t}
}

// EncodeURLValues concatenates url values onto a supplied url
func EncodeURLValues(urlPath string, values url.Values) string {
	u := urlPath
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	return u
}
