//go:build !linux

package supervisor

import "os/exec"

// setProcAttr is a no-op where parent-death signals are unavailable.
func setProcAttr(cmd *exec.Cmd) {}
