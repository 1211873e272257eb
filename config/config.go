// Package config loads harness settings with precedence: built-in
// defaults, then a gridbench.hujson file in the working directory, then
// an explicit settings file, then environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"

	"github.com/dkoval/gridbench/cache"
)

// FileName is the default settings file looked up in the working
// directory.
const FileName = "gridbench.hujson"

// Settings holds resolved harness configuration.
type Settings struct {
	// ResultDir roots the result cache. Empty means current directory.
	ResultDir string

	// ChildCommand overrides the child process command line; empty
	// re-invokes the current executable.
	ChildCommand []string

	// Timeout bounds one child execution; zero disables the limit.
	Timeout time.Duration

	// Iterations is the default per-case iteration count; zero uses
	// the built-in default.
	Iterations int
}

// fileSettings is the on-disk shape. The file is HuJSON: comments and
// trailing commas are allowed.
type fileSettings struct {
	ResultDir    string   `json:"result_dir"`
	ChildCommand []string `json:"child_command"`
	Timeout      string   `json:"timeout"`
	Iterations   int      `json:"iterations"`
}

// Load resolves settings for workDir. explicitPath, when non-empty,
// names a settings file that must exist; otherwise gridbench.hujson in
// workDir is used when present.
func Load(workDir, explicitPath string) (Settings, error) {
	var settings Settings

	path := filepath.Join(workDir, FileName)
	mustExist := false

	if explicitPath != "" {
		path = explicitPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		mustExist = true
	}

	fs, loaded, err := loadFile(path, mustExist)
	if err != nil {
		return Settings{}, err
	}

	if loaded {
		settings.ResultDir = fs.ResultDir
		settings.ChildCommand = fs.ChildCommand
		settings.Iterations = fs.Iterations

		if fs.Timeout != "" {
			d, err := time.ParseDuration(fs.Timeout)
			if err != nil {
				return Settings{}, fmt.Errorf(
					"settings %s: timeout: %w", path, err,
				)
			}

			settings.Timeout = d
		}
	}

	// Environment wins over the file.
	if dir := os.Getenv(cache.EnvResultDir); dir != "" {
		settings.ResultDir = dir
	}

	if settings.Iterations < 0 {
		return Settings{}, fmt.Errorf(
			"settings %s: iterations must not be negative", path,
		)
	}

	return settings, nil
}

func loadFile(path string, mustExist bool) (fileSettings, bool, error) {
	var fs fileSettings

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return fs, false, nil
		}

		return fs, false, fmt.Errorf("read settings %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fs, false, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if err := json.Unmarshal(standardized, &fs); err != nil {
		return fs, false, fmt.Errorf("decode settings %s: %w", path, err)
	}

	return fs, true, nil
}
