package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bookrag/internal/config"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", ""} {
		logger := New(config.LoggingConfig{Level: level})
		assert.NotNil(t, logger)
		logger.Debug().Str("level", level).Msg("logger ready")
	}
}
