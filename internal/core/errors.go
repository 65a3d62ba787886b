// Package core defines sentinel errors shared across the engine.
package core

import "errors"

// Sentinel errors. Call sites wrap these with fmt.Errorf("...: %w", err)
// so callers can match with errors.Is.
var (
	// Field access errors
	ErrValueOutOfRange = errors.New("craft: value out of range for field width")
	ErrFieldNotFound   = errors.New("craft: field not found")
	ErrBadFieldSpec    = errors.New("craft: invalid field specification")

	// Registry errors
	ErrDuplicateProtocol = errors.New("craft: protocol already registered")
	ErrProtocolNotFound  = errors.New("craft: protocol not found")

	// Stack errors
	ErrTruncatedBuffer = errors.New("craft: buffer truncated mid-header")
	ErrBufferTooSmall  = errors.New("craft: buffer too small for stack")

	// Configuration errors
	ErrConfigInvalid = errors.New("craft: invalid configuration")
)
