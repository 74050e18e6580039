package util

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("json handler honours level", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := NewLogger(&buf, "JSON", "warn")
		require.NoError(t, err)

		l.Info("dropped")
		l.Warn("kept", "key", 7)

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "kept", rec["msg"])
		assert.EqualValues(t, 7, rec["key"])
	})
	t.Run("text handler", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := NewLogger(&buf, "text", "debug")
		require.NoError(t, err)
		l.Debug("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})
	t.Run("bad level", func(t *testing.T) {
		_, err := NewLogger(&bytes.Buffer{}, "text", "loud")
		assert.Error(t, err)
	})
	t.Run("bad handler", func(t *testing.T) {
		_, err := NewLogger(&bytes.Buffer{}, "xml", "info")
		assert.Error(t, err)
	})
}
