//go:build !unix

package execshell

import "os/exec"

// isolateProcessGroup keeps the default cancellation; WaitDelay still bounds the wait for descendants.
func isolateProcessGroup(_ *exec.Cmd) {}
