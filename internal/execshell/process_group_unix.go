//go:build unix

package execshell

import (
	"os/exec"
	"syscall"
)

// isolateProcessGroup starts the child in its own process group and kills the whole group on cancellation,
// so helpers such as git-remote-https do not outlive an aborted clone.
func isolateProcessGroup(process *exec.Cmd) {
	process.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	process.Cancel = func() error {
		return syscall.Kill(-process.Process.Pid, syscall.SIGKILL)
	}
}
