package providers

import "time"

const (
	// shutdownTimeout is the maximum time allowed for graceful shutdown.
	shutdownTimeout = 30 * time.Second
)
