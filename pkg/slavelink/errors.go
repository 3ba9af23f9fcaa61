package slavelink

import (
	"errors"
)

var (
	ErrPortUnavailable = errors.New("slavelink: serial port unavailable")
	ErrAlreadyRunning  = errors.New("slavelink: another job is already running")
	ErrEmptyInput      = errors.New("slavelink: binary input is empty")
	ErrEmptyPayload    = errors.New("slavelink: file has no payload past the header")
	ErrCancelled       = errors.New("slavelink: operation cancelled")
	ErrLinkIO          = errors.New("slavelink: link I/O error")
	ErrNoData          = errors.New("slavelink: no data received")
	ErrSessionInactive = errors.New("slavelink: keyboard session is not active")
)
