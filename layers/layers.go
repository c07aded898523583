// Package layers checks that the Vulkan layers a program wants to enable are
// reported by the runtime.
package layers

import (
	"errors"
	"fmt"
	"strings"
)

// Validation is the Khronos validation layer enabled by the -debug flag.
const Validation = "VK_LAYER_KHRONOS_validation"

// ErrMissing is returned by Verify when at least one requested layer is not
// available.
var ErrMissing = errors.New("requested layers are not available")

// HasRequired returns true if every name in requested has an exact match in
// available. An empty requested list is always satisfied.
func HasRequired(requested, available []string) bool {
	for _, name := range requested {
		if !contains(available, name) {
			return false
		}
	}

	return true
}

// Missing returns the names from requested which are not in available, in
// the order they were requested.
func Missing(requested, available []string) []string {
	var missing []string
	for _, name := range requested {
		if !contains(available, name) {
			missing = append(missing, name)
		}
	}

	return missing
}

// Verify returns an error wrapping ErrMissing which names every requested
// layer absent from available.
func Verify(requested, available []string) error {
	missing := Missing(requested, available)
	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
}

// Terminated returns a copy of names with every element NUL-terminated, which
// is the form vulkan-go expects for layer and extension name lists.
func Terminated(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name+"\x00")
	}

	return out
}

// Trimmed removes a trailing NUL terminator and anything after it.
func Trimmed(name string) string {
	if i := strings.IndexByte(name, 0); i >= 0 {
		return name[:i]
	}

	return name
}

func contains(available []string, name string) bool {
	for _, candidate := range available {
		if candidate == name {
			return true
		}
	}

	return false
}
