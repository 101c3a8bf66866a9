package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterForRemoval(t *testing.T) {
	values := []struct {
		toolchains []string
		max        int

		expected []string
	}{
		// Below the maximum, nothing gets removed
		{[]string{"bisector-nightly-2023-01-01", "bisector-nightly-2023-01-02"}, 15, nil},
		// At the maximum, nothing gets removed
		{[]string{"bisector-a", "bisector-b"}, 2, nil},
		// Above the maximum, the oldest overflow gets removed
		{[]string{"bisector-a", "bisector-b", "bisector-c"}, 2, []string{"bisector-a"}},
		{[]string{"bisector-a", "bisector-b", "bisector-c", "bisector-d"}, 1, []string{"bisector-a", "bisector-b", "bisector-c"}},
		// Toolchains not installed by the bisector are never removed and don't count
		{[]string{"stable-x86_64-unknown-linux-gnu (default)", "bisector-a", "nightly", "bisector-b"}, 1, []string{"bisector-a"}},
		{[]string{"stable", "nightly"}, 0, nil},
	}

	for i, v := range values {
		assert.Equalf(t, v.expected, FilterForRemoval(v.toolchains, v.max), "Wrong toolchains filtered for removal in test %d", i)
	}
}
