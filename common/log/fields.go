package log

import "go.uber.org/zap"

// Field constructors re-exported so callers do not import zap directly.
var (
	Any      = zap.Any
	Bool     = zap.Bool
	Float64  = zap.Float64
	Int      = zap.Int
	Int32    = zap.Int32
	Int64    = zap.Int64
	Uint64   = zap.Uint64
	String   = zap.String
	Strings  = zap.Strings
	Err      = zap.Error
	Duration = zap.Duration
)
