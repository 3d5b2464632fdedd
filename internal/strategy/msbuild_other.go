//go:build !windows

package strategy

// msbuildBinary on non-windows hosts only matters for error paths; the
// msvs profiles are restricted to windows hosts and fail the host check
// before any tool lookup.
func msbuildBinary() (string, error) {
	return "msbuild", nil
}
