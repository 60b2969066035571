package pikax

import "errors"

var (
	// ErrTokenNotFound is returned when the one-time login token cannot be
	// extracted from the login page response.
	ErrTokenNotFound = errors.New("login token not found")
	// ErrRequestFailed is returned when the login request itself could not
	// be delivered to the server.
	ErrRequestFailed = errors.New("login request failed")
	// ErrLoginRejected is returned when the server did not accept the
	// credentials, verified with a status round trip.
	ErrLoginRejected = errors.New("login rejected by server")
	// ErrSessionStale is returned when a stored session deserialized fine
	// but is no longer accepted by the server.
	ErrSessionStale = errors.New("stored session is outdated")
	// ErrSessionUnavailable is returned when there is no usable stored
	// session (missing or corrupted file).
	ErrSessionUnavailable = errors.New("stored session unavailable")
	// ErrInvalidCookies is returned when a user supplied cookie string
	// cannot be parsed.
	ErrInvalidCookies = errors.New("invalid cookies")
	// ErrAllStrategiesFailed is returned by the authenticator when every
	// configured login strategy has failed.
	ErrAllStrategiesFailed = errors.New("all login strategies failed")
	// ErrProcessType is returned for an unknown artwork process type.
	ErrProcessType = errors.New("invalid process type")
)
