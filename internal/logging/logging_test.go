package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaults(t *testing.T) {
	logger, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewConsoleFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "console"
	cfg.Level = zapcore.DebugLevel

	logger, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "empty format defaults to json", cfg: Config{}},
		{name: "json", cfg: Config{Format: "json"}},
		{name: "console", cfg: Config{Format: "console"}},
		{name: "bad format", cfg: Config{Format: "logfmt"}, wantErr: true},
		{name: "empty field key", cfg: Config{Format: "json", Fields: map[string]string{"": "x"}}, wantErr: true},
		{name: "empty field value", cfg: Config{Format: "json", Fields: map[string]string{"service": ""}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
