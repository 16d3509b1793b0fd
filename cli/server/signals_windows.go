//go:build windows

package server

import "syscall"

const (
	// SIGHUP is never delivered on Windows, config reload is not available there.
	sighup  = syscall.SIGHUP
	sigterm = syscall.SIGTERM
)
