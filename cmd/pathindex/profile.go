package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/felixge/fgprof"
)

// startProfiles starts wall-clock and CPU profiling for any non-empty path.
// The returned function stops profiling and closes the files.
func startProfiles(fgPath, cpuPath string) (func() error, error) {
	var stops []func() error
	stopAll := func() error {
		var errs []error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i]())
		}
		return errors.Join(errs...)
	}

	if fgPath != "" {
		f, err := os.Create(fgPath) //nolint:gosec // User-provided path is intentional
		if err != nil {
			return nil, fmt.Errorf("create fgprof profile: %w", err)
		}
		stop := fgprof.Start(f, fgprof.FormatPprof)
		stops = append(stops, func() error {
			return errors.Join(stop(), f.Close())
		})
	}

	if cpuPath != "" {
		f, err := os.Create(cpuPath) //nolint:gosec // User-provided path is intentional
		if err != nil {
			stopAll()
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			stopAll()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
		stops = append(stops, func() error {
			pprof.StopCPUProfile()
			return f.Close()
		})
	}
	return stopAll, nil
}
