// Package toolchain trims old rustc toolchains installed by previous bisections.
//
// cargo-bisect-rustc is always invoked with --preserve so toolchains can be reused between
// runs, which means the installation grows with every bisected range. This package keeps
// the newest toolchains and removes the rest through rustup.
package toolchain

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultMaxToolchains is how many bisector toolchains are kept installed by default.
const DefaultMaxToolchains = 15

// toolchainPrefix marks toolchains installed by cargo-bisect-rustc. Toolchains without
// this prefix are never touched.
const toolchainPrefix = "bisector-"

// List returns the names of all installed toolchains, as reported by rustup.
func List() ([]string, error) {
	out, err := exec.Command("rustup", "toolchain", "list").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("rustup toolchain list failed: %s", exitErr.Stderr)
		}
		return nil, errors.Join(fmt.Errorf("failed to run rustup toolchain list"), err)
	}

	return strings.Split(strings.TrimRight(string(out), "\n"), "\n"), nil
}

// FilterForRemoval returns the bisector toolchains to remove so that at most max of them
// stay installed. rustup lists toolchains in installation order, so the oldest ones are
// removed first. The returned slice is empty if nothing needs to be removed.
func FilterForRemoval(toolchains []string, max int) []string {
	var bisector []string
	for _, toolchain := range toolchains {
		if strings.HasPrefix(toolchain, toolchainPrefix) {
			bisector = append(bisector, toolchain)
		}
	}

	if len(bisector) <= max {
		return nil
	}
	return bisector[:len(bisector)-max]
}

// Remove uninstalls the given toolchains through rustup.
func Remove(toolchains []string) error {
	args := append([]string{"toolchain", "remove"}, toolchains...)

	if out, err := exec.Command("rustup", args...).CombinedOutput(); err != nil {
		return errors.Join(fmt.Errorf("rustup toolchain remove failed: %s", out), err)
	}
	return nil
}
