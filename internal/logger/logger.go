package logger

import (
	"os"

	"go.uber.org/zap"
)

// New builds the application logger. Set LOG_MODE=dev for a
// human-readable console encoder.
func New() (*zap.Logger, error) {
	if os.Getenv("LOG_MODE") == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
