//go:build windows

package server

import "syscall"

// SIGHUP is never sent on Windows, but it's defined there.
const sighup = syscall.SIGHUP
