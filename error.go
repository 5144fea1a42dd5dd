package bridge

import "errors"

var (
	// ErrInvalidState is returned if a lifecycle method cannot be executed at this moment.
	ErrInvalidState = errors.New("invalid state")
	// ErrDisposed is returned by lifecycle methods after the bridge was disposed.
	ErrDisposed = errors.New("bridge disposed")
	// ErrInvalidSetup is returned for non-positive sample rate or block size.
	ErrInvalidSetup = errors.New("invalid setup")
	// ErrInvalidBuffer is returned if output buffers are missing or too short.
	ErrInvalidBuffer = errors.New("invalid buffer")
	// ErrBlockTooLarge is returned if a block exceeds the maximum block size.
	ErrBlockTooLarge = errors.New("block exceeds maximum block size")
	// ErrInvalidStream is returned if state is saved to or loaded from a nil stream.
	ErrInvalidStream = errors.New("invalid stream")
)
