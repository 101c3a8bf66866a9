package bisect

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOutput(t *testing.T) {
	t.Run("Successful run extracts summary from marker", func(t *testing.T) {
		stderr := "fetching commits\n" +
			"checking nightly-2023-01-10\n" +
			"searched nightlies: from nightly-2023-01-01 to nightly-2023-02-01\n" +
			"regressed nightly: nightly-2023-01-15\n"

		status, err := classifyOutput(true, []byte(stderr), 30)

		assert.Nil(t, err, "Classification of a successful run returned an error")
		assert.Equal(t, StatusSuccess, status.Kind, "Wrong status kind")
		assert.Equal(t, "searched nightlies: from nightly-2023-01-01 to nightly-2023-02-01\nregressed nightly: nightly-2023-01-15\n", status.Output, "Wrong summary")
	})

	t.Run("Last marker occurrence wins", func(t *testing.T) {
		stderr := "searched nightlies: first\nretrying\nsearched nightlies: second\n"

		status, err := classifyOutput(true, []byte(stderr), 30)

		assert.Nil(t, err, "Classification of a successful run returned an error")
		assert.Equal(t, "searched nightlies: second\n", status.Output, "Summary not cut at the last marker")
	})

	t.Run("Missing marker on success is an error", func(t *testing.T) {
		_, err := classifyOutput(true, []byte("all good, no summary though\n"), 30)

		assert.NotNil(t, err, "Missing marker did not result in an error")
	})

	t.Run("Failed run keeps the last lines in original order", func(t *testing.T) {
		var lines []string
		for i := 1; i <= 50; i++ {
			lines = append(lines, fmt.Sprintf("line %d", i))
		}
		stderr := strings.Join(lines, "\n") + "\n"

		status, err := classifyOutput(false, []byte(stderr), 30)

		assert.Nil(t, err, "Classification of a failed run returned an error")
		assert.Equal(t, StatusError, status.Kind, "Wrong status kind")
		assert.Equal(t, strings.Join(lines[20:], "\n"), status.Output, "Wrong excerpt")
	})

	t.Run("Failed run with short output keeps everything", func(t *testing.T) {
		status, err := classifyOutput(false, []byte("error: expected one of `!` or `::`\n"), 30)

		assert.Nil(t, err, "Classification of a failed run returned an error")
		assert.Equal(t, "error: expected one of `!` or `::`", status.Output, "Wrong excerpt")
	})

	t.Run("Invalid utf-8 stderr is an error", func(t *testing.T) {
		_, err := classifyOutput(false, []byte{0xff, 0xfe, 0xfd}, 30)

		assert.NotNil(t, err, "Invalid utf-8 did not result in an error")
	})
}

func TestLastLines(t *testing.T) {
	values := []struct {
		input    string
		n        int
		expected string
	}{
		{"a\nb\nc\n", 2, "b\nc"},
		{"a\nb\nc", 2, "b\nc"},
		{"a\nb\nc\n", 5, "a\nb\nc"},
		{"", 3, ""},
		{"single\n", 1, "single"},
	}

	for i, v := range values {
		assert.Equalf(t, v.expected, lastLines(v.input, v.n), "Wrong result for test %d", i)
	}
}
