package logger_test

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logpkg "github.com/maxviazov/directory-service/internal/logger"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		name      string
		cfg       logpkg.LoggerConfig
		wantErr   bool
		wantLevel zerolog.Level
	}{
		{"prod info", logpkg.LoggerConfig{Env: "prod", Level: "info", Fields: map[string]interface{}{"k": "v"}}, false, zerolog.InfoLevel},
		{"staging warn with stack", logpkg.LoggerConfig{Env: "staging", Level: "warn", Stacktrace: true}, false, zerolog.WarnLevel},
		{"prod error with caller", logpkg.LoggerConfig{Env: "prod", Level: "error", WithCaller: true}, false, zerolog.ErrorLevel},
		{"test trace", logpkg.LoggerConfig{Env: "test", Level: "trace", TimeFormat: "unix_ms"}, false, zerolog.TraceLevel},
		{"unknown env", logpkg.LoggerConfig{Env: "wrong-env", Level: "debug"}, true, 0},
		{"unknown level", logpkg.LoggerConfig{Env: "prod", Level: "loud"}, true, 0},
		{"unknown format", logpkg.LoggerConfig{Env: "prod", Format: "xml"}, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			_, err := logpkg.New(&cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	cfg := &logpkg.LoggerConfig{}
	_, err := logpkg.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.OutputTarget)
	assert.Equal(t, "directory-service", cfg.ServiceName)

	dev := &logpkg.LoggerConfig{Env: "dev", Level: "info"}
	_, err = logpkg.New(dev)
	require.NoError(t, err)
	assert.Equal(t, "console", dev.Format)
	assert.True(t, dev.WithCaller)
}

func TestNew_DevDebugWritesLogFile(t *testing.T) {
	t.Cleanup(func() {
		if err := os.RemoveAll("logs"); err != nil {
			t.Logf("cleanup failed: %v", err)
		}
	})

	l, err := logpkg.New(&logpkg.LoggerConfig{Env: "dev", Level: "debug"})
	require.NoError(t, err)
	l.Debug().Msg("hello")

	data, err := os.ReadFile("logs/debug.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
