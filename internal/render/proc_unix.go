//go:build unix

package render

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killGroup runs cmd in its own process group and makes cancellation kill
// the whole group, so wrapper scripts take their children down with them.
func killGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
