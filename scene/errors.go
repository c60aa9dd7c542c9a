package scene

import "errors"

// ErrAlreadyRunning is returned by Start when a session is live.
var ErrAlreadyRunning = errors.New("scene: already running")
