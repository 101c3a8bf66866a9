//go:build integration

package bisect_test

import (
	"os/exec"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/rustbisect/bisectd/pkg/bisect"
)

// Bisects a snippet that hits a known ICE against the real cargo-bisect-rustc.
// Requires cargo and cargo-bisect-rustc on the PATH and network access, and downloads
// nightly toolchains, so it only runs with the integration build tag.
func TestCargoRunnerBisectsKnownRegression(t *testing.T) {
	for _, tool := range []string{"cargo", "cargo-bisect-rustc"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not installed", tool)
		}
	}

	runner, err := bisect.NewCargoRunner()
	assert.Nil(t, err, "NewCargoRunner returned an error")
	runner.Log = logrus.StandardLogger()
	runner.Log.SetLevel(logrus.TraceLevel)

	// ICE fixed in early 2023, see rust-lang/rust#107257
	code := `
pub fn f<const N: usize>() -> [(); N - 1] {
    [(); N - 1]
}

pub fn g() {
    let _ = f::<0>();
}
`
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	status, err := runner.Run(code, bisect.Options{
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   &end,
	})

	assert.Nil(t, err, "Run returned an error")
	assert.NotEqual(t, bisect.StatusInProgress, status.Kind, "Run did not produce a terminal status")
	assert.NotEmpty(t, status.Output, "Terminal status carries no output")
}
