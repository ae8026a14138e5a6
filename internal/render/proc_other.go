//go:build !unix

package render

import "os/exec"

// killGroup leaves the default cancellation in place; WaitDelay still
// bounds the wait for any descendants.
func killGroup(cmd *exec.Cmd) {}
