package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/solvee/internal/logging"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logging.Config
		wantErr bool
	}{
		{"default", logging.Default(), false},
		{"json debug", logging.Config{Level: "debug", Format: logging.FormatJSON}, false},
		{"bad level", logging.Config{Level: "loud", Format: logging.FormatText}, true},
		{"bad format", logging.Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(logging.Config{Level: "debug", Format: logging.FormatJSON}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("operation", "sqrt").Debug("operation applied")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sqrt", entry["operation"])
	assert.Equal(t, "operation applied", entry["msg"])
}

func TestNew_TextWithoutTerminalHasNoColors(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(logging.Default(), &buf)
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.False(t, logging.IsTerminal(&buf))
}

func TestNew_RejectsInvalid(t *testing.T) {
	_, err := logging.New(logging.Config{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
