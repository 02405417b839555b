package flashcode

import "errors"

var (
	// ErrInvalidCode reports a code string with a bad length or shape.
	ErrInvalidCode = errors.New("invalid code")
	// ErrChecksumMismatch is returned together with ErrInvalidCode by
	// DecodeStrict when the embedded check digit is wrong.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrOptionNotFound reports an option name missing from the catalog.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidRange reports bit coordinates outside the payload or outside
	// a single byte.
	ErrInvalidRange = errors.New("invalid bit range")
	// ErrCatalogUnavailable reports a catalog source that cannot be read.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrCatalogMalformed reports a catalog source that cannot be decoded.
	ErrCatalogMalformed = errors.New("catalog malformed")
)
