package apperr

import "errors"

var (
	// ErrSourceUnavailable means the Apple Books databases could not be
	// read at all. Fatal: no books can be determined.
	ErrSourceUnavailable = errors.New("library source unavailable")
	// ErrRegistryCorrupt means the persisted registry exists but cannot be
	// parsed. Fatal: overwriting it would discard the user's sync choices.
	ErrRegistryCorrupt = errors.New("registry file corrupt")
)
