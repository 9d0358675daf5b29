package pict

import "errors"

// ErrInvalidPicture is returned when an encoded picture fails structural
// validation: bad magic, an unsupported version, truncation, a chunk out
// of order, or a reference that does not resolve. The error is
// deliberately coarse; parse diagnostics go to the package logger at
// debug level instead of into error strings a caller might match on.
var ErrInvalidPicture = errors.New("pict: invalid picture data")
