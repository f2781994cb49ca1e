package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewWithConfig(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(&buf, "lsp", log.InfoLevel, false, false, log.LogfmtFormatter)

	l.Debug("hidden")
	l.Info("opened", "uri", "file:///a.cpp")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "prefix=lsp")
	assert.Contains(t, out, "uri=file:///a.cpp")
}

func TestSetup(t *testing.T) {
	defer log.SetLevel(log.GetLevel())

	Setup(true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.Equal(t, log.DebugLevel, Default("x").GetLevel())

	Setup(false)
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	assert.Equal(t, log.WarnLevel, New("x").GetLevel())
}
