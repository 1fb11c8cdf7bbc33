package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"empty (default)", "", false},
		{"table", "table", false},
		{"json", "json", false},
		{"plain", "plain", false},
		{"invalid", "invalid", true},
		{"xml", "xml", true},
		{"TABLE uppercase", "TABLE", true}, // case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid output format")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidFormats(t *testing.T) {
	formats := ValidFormats()
	assert.Contains(t, formats, "table")
	assert.Contains(t, formats, "json")
	assert.Contains(t, formats, "plain")
	assert.Len(t, formats, 3)
}

var summary = []Field{
	{Key: "Input", Value: "in.txt"},
	{Key: "Footnotes", Value: "3"},
}

func TestRenderer_RenderFields_Table(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatTable, true)
	r.SetWriter(&buf)

	require.NoError(t, r.RenderFields(summary))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Input:")
	assert.Contains(t, lines[0], "in.txt")
	assert.Contains(t, lines[1], "Footnotes:")
	assert.Contains(t, lines[1], "3")
}

func TestRenderer_RenderFields_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatJSON, true)
	r.SetWriter(&buf)

	require.NoError(t, r.RenderFields(summary))

	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "in.txt", result["Input"])
	assert.Equal(t, "3", result["Footnotes"])
}

func TestRenderer_RenderFields_Plain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatPlain, true)
	r.SetWriter(&buf)

	require.NoError(t, r.RenderFields(summary))

	assert.Equal(t, "Input\tin.txt\nFootnotes\t3\n", buf.String())
}

func TestRenderer_RenderJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatJSON, true)
	r.SetWriter(&buf)

	data := map[string]string{
		"status": "ok",
		"count":  "5",
	}

	err := r.RenderJSON(data)
	require.NoError(t, err)

	// Verify output is valid JSON
	var result map[string]string
	err = json.Unmarshal(buf.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, "ok", result["status"])
}

func TestRenderer_RenderJSON_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatJSON, true)
	r.SetWriter(&buf)

	err := r.RenderJSON(make(chan int))
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestRenderer_Messages(t *testing.T) {
	tests := []struct {
		name   string
		render func(*Renderer, string)
		marker string
	}{
		{"success", (*Renderer).Success, "✓"},
		{"warning", (*Renderer).Warning, "!"},
		{"error", (*Renderer).Error, "✗"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewRenderer(FormatTable, true)
			r.SetWriter(&buf)

			tt.render(r, "Something happened")

			output := buf.String()
			assert.Contains(t, output, tt.marker)
			assert.Contains(t, output, "Something happened")
		})
	}
}

func TestRenderer_RenderKeyValue_Table(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatTable, true)
	r.SetWriter(&buf)

	r.RenderKeyValue("Status", "Active")

	output := buf.String()
	assert.Contains(t, output, "Status")
	assert.Contains(t, output, "Active")
}

func TestRenderer_RenderKeyValue_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatJSON, true)
	r.SetWriter(&buf)

	r.RenderKeyValue("status", "active")

	output := strings.TrimSpace(buf.String())
	assert.Equal(t, `{"status": "active"}`, output)
}

func TestNewRenderer_DefaultFormat(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer("", true)
	r.SetWriter(&buf)

	require.NoError(t, r.RenderFields([]Field{{Key: "A", Value: "1"}}))
	assert.Contains(t, buf.String(), "A:")
}
