// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec via ShellExecutor, which times every invocation, converts
// non-zero exit codes into CommandFailedError, and notifies registered
// CommandEventObserver implementations. OSCommandRunner performs the actual
// process execution, either capturing output or streaming it to the terminal.
package execshell
