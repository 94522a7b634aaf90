// Package logging builds the zap loggers used by the binaries.
package logging

import "go.uber.org/zap"

// New returns a development logger (console, debug level) when debug is true,
// and a production JSON logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
