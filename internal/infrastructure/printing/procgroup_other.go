//go:build !unix

package printing

import "os/exec"

// configureProcessGroup keeps exec's default kill-on-cancel behaviour
func configureProcessGroup(cmd *exec.Cmd) {}
