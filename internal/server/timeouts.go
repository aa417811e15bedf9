package server

import "time"

// ReadHeader limits how long the server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long in-flight requests may run during graceful
// shutdown.
const Shutdown = 5 * time.Second
