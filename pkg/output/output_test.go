package output

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("output.format", format)

	color.NoColor = true
	buf := &bytes.Buffer{}
	prev := Out
	Out = buf
	t.Cleanup(func() { Out = prev })
	return buf
}

func TestGetOutputFormat(t *testing.T) {
	for _, f := range []string{"json", "table", "text"} {
		capture(t, f)
		assert.Equal(t, OutputFormat(f), GetOutputFormat())
	}
	capture(t, "yaml")
	assert.Equal(t, FormatText, GetOutputFormat())
}

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format  string
		isValid bool
	}{
		{"json", true},
		{"text", true},
		{"table", true},
		{"invalid", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.isValid, ValidateOutputFormat(tt.format), tt.format)
	}
}

func TestPrintRecord_Text(t *testing.T) {
	buf := capture(t, "text")
	require.NoError(t, PrintRecord("Session", map[string]interface{}{"user_id": "u1", "email": "a@b.c"}))

	assert.Equal(t, "Session:\nemail: a@b.c\nuser_id: u1\n", buf.String())
}

func TestPrintRecord_JSON(t *testing.T) {
	buf := capture(t, "json")
	require.NoError(t, PrintRecord("Session", map[string]interface{}{"user_id": "u1"}))

	assert.JSONEq(t, `{"user_id":"u1"}`, buf.String())
}

func TestPrintTable(t *testing.T) {
	buf := capture(t, "table")
	PrintTable([]string{"ID", "Likes"}, [][]string{{"p1", "3"}, {"post-22", "10"}})

	assert.Equal(t, "ID       Likes\np1       3\npost-22  10\n", buf.String())
}

func TestPrintJSON_UsesWireNames(t *testing.T) {
	buf := capture(t, "json")
	require.NoError(t, PrintJSON(api.Counters{Likes: api.Int(2)}))
	assert.JSONEq(t, `{"likes_count":2}`, buf.String())
}

func TestPrintNotice(t *testing.T) {
	buf := capture(t, "text")

	PrintNotice(&api.APIError{Code: "23505", StatusCode: 409})
	assert.Empty(t, buf.String(), "duplicates are silent")

	PrintNotice(errors.New("something odd"))
	assert.Contains(t, buf.String(), "Error: something odd")
}

func TestFormatAsJSON(t *testing.T) {
	s, err := FormatAsJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, s)
}
