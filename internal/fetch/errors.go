package fetch

import "errors"

var (
	// ErrNetwork is returned when a request could not be completed:
	// connection refused, TLS failure, timeout, or a broken or oversized body.
	ErrNetwork = errors.New("network error")

	// ErrUnexpectedStatus is returned when a page answers with a status the
	// caller cannot use.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
