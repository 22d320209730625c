package upload

import "errors"

var (
	// ErrMissingCredentials is returned when the endpoint URL or API key is empty.
	ErrMissingCredentials = errors.New("upload url and api key are required")

	// ErrRejected is returned when the endpoint answers 400.
	ErrRejected = errors.New("batch insert rejected")

	// ErrUnexpectedStatus is returned for any other non-2xx answer.
	ErrUnexpectedStatus = errors.New("unexpected batch insert status")
)
