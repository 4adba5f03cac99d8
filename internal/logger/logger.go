// Package logger builds the service's zap logger.
package logger

import "go.uber.org/zap"

// New returns a development logger (console, debug level) when dev is
// true and a production JSON logger otherwise.
func New(dev bool) (*zap.Logger, error) {
    if dev {
        return zap.NewDevelopment()
    }
    return zap.NewProduction()
}
