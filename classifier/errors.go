package classifier

import "errors"

var (
	// ErrLookupFailed is returned when the provider answered without a country.
	ErrLookupFailed = errors.New("geolocation lookup failed")

	// ErrUnexpectedStatus is returned on a non-200 provider response.
	ErrUnexpectedStatus = errors.New("unexpected geolocation status")
)
