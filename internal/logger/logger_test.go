package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medica-server/internal/config"
)

func TestNew(t *testing.T) {
	log, err := New(config.LogConfig{Level: "debug", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = New(config.LogConfig{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")
}
