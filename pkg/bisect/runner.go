package bisect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/creasty/defaults"
	"github.com/otiai10/copy"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// dateFormat is the date layout cargo-bisect-rustc expects for --start and --end.
const dateFormat = "2006-01-02"

// A Runner executes one bisection and classifies its outcome.
//
// A returned error means the runner itself failed (workspace creation, spawning the tool,
// undecodable or contract-violating output) and no valid result exists. A returned Error
// status on the other hand is a valid result: the tool ran but reported a failed search.
type Runner interface {
	Run(code string, options Options) (BisectStatus, error)
}

type runnerYaml struct {
	Tool string `yaml:"tool" default:"cargo-bisect-rustc"`

	AccessMethod   string `yaml:"accessMethod" default:"github"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" default:"30"`

	ExcerptLines int `yaml:"excerptLines" default:"30"`
}

// CargoRunner runs cargo-bisect-rustc against a submitted code snippet in a throwaway
// cargo project. The cargo project template is scaffolded once and copied into a fresh
// workspace for every run, and the tool is invoked with --preserve, so installed
// toolchains are shared between runs.
type CargoRunner struct {
	Tool string // The cargo-bisect-rustc binary to invoke

	AccessMethod   string // How the tool should look up commits, passed via --access
	TimeoutSeconds int    // Per-run timeout enforced by the tool itself, passed via --timeout

	ExcerptLines int // How many trailing stderr lines to keep for a failed search

	Log *logrus.Logger // The log to which information gets printed to

	templateOnce sync.Once
	templateDir  string
	templateErr  error
}

// NewCargoRunner creates a runner with default settings.
func NewCargoRunner() (*CargoRunner, error) {
	var config runnerYaml
	if err := defaults.Set(&config); err != nil {
		return nil, err
	}
	return runnerFromYaml(config), nil
}

// GetRunnerFromConfig reads in a runner config in yaml format from a reader and initializes
// the corresponding runner. Omitted fields keep their defaults.
func GetRunnerFromConfig(r io.Reader) (*CargoRunner, error) {
	var config runnerYaml

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}
	if err := defaults.Set(&config); err != nil {
		return nil, err
	}

	return runnerFromYaml(config), nil
}

func runnerFromYaml(config runnerYaml) *CargoRunner {
	return &CargoRunner{
		Tool: config.Tool,

		AccessMethod:   config.AccessMethod,
		TimeoutSeconds: config.TimeoutSeconds,

		ExcerptLines: config.ExcerptLines,
	}
}

// Run bisects the given code snippet and classifies the tool's output.
func (r *CargoRunner) Run(code string, options Options) (BisectStatus, error) {
	if r.Log == nil {
		// Mute logger
		r.Log = logrus.New()
		r.Log.SetOutput(io.Discard)
	}

	workspace, err := os.MkdirTemp("", "bisect")
	if err != nil {
		return BisectStatus{}, errors.Join(fmt.Errorf("failed to create bisection workspace"), err)
	}
	defer os.RemoveAll(workspace)

	crateDir, err := r.scaffoldCrate(workspace, code)
	if err != nil {
		return BisectStatus{}, err
	}

	args := r.buildArgs(options)
	r.Log.Debugf("Running %s %v", r.Tool, args)

	cmd := exec.Command(r.Tool, args...)
	cmd.Dir = crateDir
	// The tool's own output is classified, don't let library logs bleed into it
	cmd.Env = append(os.Environ(), "RUST_LOG=error")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return BisectStatus{}, errors.Join(fmt.Errorf("failed to run %s", r.Tool), err)
		}
	}
	r.Log.Tracef("Tool exited with %d, %d bytes of stderr", cmd.ProcessState.ExitCode(), stderr.Len())

	return classifyOutput(err == nil, stderr.Bytes(), r.ExcerptLines)
}

// scaffoldCrate copies the crate template into the workspace and writes the submitted code
// as the crate's sole source file. It returns the path of the scaffolded crate.
func (r *CargoRunner) scaffoldCrate(workspace, code string) (string, error) {
	template, err := r.crateTemplate()
	if err != nil {
		return "", err
	}

	crateDir := filepath.Join(workspace, "bisect")
	if err := copy.Copy(template, crateDir); err != nil {
		return "", errors.Join(fmt.Errorf("failed to copy crate template to workspace"), err)
	}

	if err := os.WriteFile(filepath.Join(crateDir, "src", "lib.rs"), []byte(code), 0644); err != nil {
		return "", errors.Join(fmt.Errorf("failed to write code to lib.rs"), err)
	}

	return crateDir, nil
}

// crateTemplate scaffolds a cargo project template on first use and returns its path.
// The template is a library crate, which builds even if the snippet defines fn main.
func (r *CargoRunner) crateTemplate() (string, error) {
	r.templateOnce.Do(func() {
		dir, err := os.MkdirTemp("", "bisect-template")
		if err != nil {
			r.templateErr = errors.Join(fmt.Errorf("failed to create template directory"), err)
			return
		}

		cmd := exec.Command("cargo", "new", "bisect", "--lib")
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			r.templateErr = errors.Join(fmt.Errorf("cargo new failed: %s", out), err)
			os.RemoveAll(dir)
			return
		}

		r.templateDir = filepath.Join(dir, "bisect")
	})

	return r.templateDir, r.templateErr
}

// buildArgs derives the cargo-bisect-rustc arguments from the job's options.
func (r *CargoRunner) buildArgs(options Options) []string {
	args := []string{
		"--preserve", // preserve toolchains for future runs
		"--access", r.AccessMethod,
		"--timeout", strconv.Itoa(r.TimeoutSeconds),
		"--start", options.Start.Format(dateFormat),
	}

	if options.End != nil {
		args = append(args, "--end", options.End.Format(dateFormat))
	}

	return append(args, "--regress", options.RegressionKind())
}
