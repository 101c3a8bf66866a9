package bisect

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetRunnerFromConfig(t *testing.T) {
	yml := `
tool: "/usr/local/bin/cargo-bisect-rustc"
timeoutSeconds: 60
`

	runner, err := GetRunnerFromConfig(strings.NewReader(yml))
	assert.Nil(t, err, "GetRunnerFromConfig returned an error")

	assert.Equal(t, "/usr/local/bin/cargo-bisect-rustc", runner.Tool, "Mismatch in runner field")
	assert.Equal(t, 60, runner.TimeoutSeconds, "Mismatch in runner field")
	// Omitted fields fall back to their defaults
	assert.Equal(t, "github", runner.AccessMethod, "Mismatch in runner field")
	assert.Equal(t, 30, runner.ExcerptLines, "Mismatch in runner field")
}

func TestBuildArgs(t *testing.T) {
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	values := []struct {
		options  Options
		expected []string
	}{
		{
			Options{Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
			[]string{"--preserve", "--access", "github", "--timeout", "30", "--start", "2023-01-01", "--regress", "ice"},
		},
		{
			Options{Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), End: &end},
			[]string{"--preserve", "--access", "github", "--timeout", "30", "--start", "2023-01-01", "--end", "2023-02-01", "--regress", "ice"},
		},
		{
			Options{Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Kind: "error"},
			[]string{"--preserve", "--access", "github", "--timeout", "30", "--start", "2023-01-01", "--regress", "error"},
		},
	}

	for i, v := range values {
		runner, err := NewCargoRunner()
		assert.Nil(t, err, "NewCargoRunner returned an error")

		assert.Equalf(t, v.expected, runner.buildArgs(v.options), "Wrong arguments for test %d", i)
	}
}
