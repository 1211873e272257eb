package harness

import (
	"context"
	"fmt"
	"os"

	"github.com/dkoval/gridbench/bench"
)

// Provisioner materializes a requested library revision and returns the
// path to inject into the child's library search path. The Installed
// sentinel never reaches a Provisioner.
type Provisioner interface {
	EnsureLibrary(ctx context.Context, version string) (string, error)
}

// PathProvisioner treats the requested version as an already
// materialized directory and verifies it exists. It is the default:
// environment provisioning proper is an external concern.
type PathProvisioner struct{}

// EnsureLibrary implements Provisioner.
func (PathProvisioner) EnsureLibrary(_ context.Context, version string) (string, error) {
	info, err := os.Stat(version)
	if err != nil {
		return "", fmt.Errorf("library path %s: %w", version, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("library path %s: not a directory", version)
	}

	return version, nil
}

// resolveLibrary maps a row's lib_path value to the library search path
// for the child, empty for the installed sentinel.
func resolveLibrary(ctx context.Context, p Provisioner, row bench.Params) (string, error) {
	libPath, _ := row.GetString(bench.ParamLibPath)
	if libPath == "" || libPath == bench.Installed {
		return "", nil
	}

	if p == nil {
		p = PathProvisioner{}
	}

	return p.EnsureLibrary(ctx, libPath)
}
