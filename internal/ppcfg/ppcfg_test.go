package ppcfg

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timestampPattern = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)

func TestRegisterPersistentBindsFlags(t *testing.T) {
	var cfg Common
	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterPersistent(cmd)

	require.NoError(t, cmd.PersistentFlags().Set("sym", "out.sym"))
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "debug"))
	assert.Equal(t, "out.sym", cfg.SymbolFile)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestRegisterPersistentDefaultLogLevel(t *testing.T) {
	var cfg Common
	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterPersistent(cmd)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewAssemblerLoggerOmitsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAssemblerLogger(&buf, false)
	logger.Error("4: undefined symbol FOO")
	assert.Contains(t, buf.String(), "undefined symbol FOO")
	assert.False(t, timestampPattern.MatchString(buf.String()))
}

func TestNewAssemblerLoggerVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAssemblerLogger(&buf, true)
	logger.Debug("expanding macro FOO")
	assert.Contains(t, buf.String(), "expanding macro FOO")
}

func TestNewEmulatorLoggerParsesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewEmulatorLogger(&buf, "warn")
	require.NoError(t, err)
	logger.Info("should be suppressed below warn")
	assert.Empty(t, buf.String())
	logger.Warn("breakpoint hit")
	assert.Contains(t, buf.String(), "breakpoint hit")
}

func TestNewEmulatorLoggerRejectsBadLevel(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewEmulatorLogger(&buf, "not-a-level")
	assert.Error(t, err)
}
