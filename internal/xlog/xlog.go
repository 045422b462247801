// Package xlog wires up the package-wide structured logger. Every
// pipeline stage logs through Logger rather than the standard log
// package, matching the corpus convention of a single shared
// logrus.Logger configured once at the program's entry point (spec
// section 1 excludes logging itself from the validated core, but the
// core still needs somewhere to put diagnostics it chooses to surface
// ahead of the final diag.Collector, e.g. schema-binder warnings).
package xlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared logger instance. Configure mutates it in
// place, so packages that captured Logger at init time still see
// later configuration.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.WarnLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Configure applies verbosity and format settings, typically called
// once by cmd/xmilelint after parsing flags/config.
func Configure(verbose bool, jsonFormat bool) {
	if verbose {
		Logger.SetLevel(logrus.DebugLevel)
	} else {
		Logger.SetLevel(logrus.WarnLevel)
	}
	if jsonFormat {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
