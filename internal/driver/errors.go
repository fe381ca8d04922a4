package driver

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a running driver.
	ErrAlreadyRunning = errors.New("tick driver already running")
	// ErrNotRunning is returned by queries that need an active run.
	ErrNotRunning = errors.New("tick driver not running")
)
