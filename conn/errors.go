package conn

import "errors"

var (
	// ErrNotConnected indicates no live connection exists for the alias.
	ErrNotConnected = errors.New("not connected")

	// ErrProfileNotFound indicates the requested profile is not in the
	// recent-connections store.
	ErrProfileNotFound = errors.New("connection profile not found")

	// ErrManagerClosed indicates the manager has been shut down.
	ErrManagerClosed = errors.New("connection manager is closed")
)
