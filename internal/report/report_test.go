package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")

	payload := map[string]any{
		"tool":      "test",
		"DeltaT_uK": -22.5,
	}
	require.NoError(t, Emit(payload, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tool":"test","DeltaT_uK":-22.5}`, string(data))

	// indented output, not a single line
	assert.Contains(t, string(data), "\n")
}

func TestEmitStdoutOnly(t *testing.T) {
	// empty path means stdout only; must not error
	assert.NoError(t, Emit(map[string]string{"ok": "yes"}, ""))
}

func TestEmitUnmarshalablePayload(t *testing.T) {
	err := Emit(map[string]any{"bad": func() {}}, "")
	assert.Error(t, err)
}

func TestEmitBadPath(t *testing.T) {
	err := Emit(map[string]string{}, filepath.Join(t.TempDir(), "no", "such", "dir", "out.json"))
	assert.Error(t, err)
}
