package core

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the root of all caller errors. A call failing with it
// leaves prior state untouched.
var ErrConfiguration = errors.New("configuration error")

var (
	ErrInvalidResolution  = fmt.Errorf("%w: resolution must be positive", ErrConfiguration)
	ErrInvalidChannels    = fmt.Errorf("%w: channel count out of range", ErrConfiguration)
	ErrResolutionMismatch = fmt.Errorf("%w: mismatched field resolutions", ErrConfiguration)
	ErrAliasedBuffers     = fmt.Errorf("%w: source and destination share a buffer", ErrConfiguration)
	ErrInvalidBurstCount  = fmt.Errorf("%w: burst count must be positive", ErrConfiguration)
	ErrInvalidParameter   = fmt.Errorf("%w: invalid parameter", ErrConfiguration)
	ErrUnknownField       = fmt.Errorf("%w: unknown field", ErrConfiguration)
)
