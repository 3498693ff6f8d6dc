package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"", FormatText, false},
		{"junit", "", true},
		{"JSON", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	data := struct {
		File  string `json:"file"`
		Valid bool   `json:"valid"`
	}{File: "catalog.yaml", Valid: true}

	if err := WriteJSON(buf, data); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("WriteJSON() produced invalid JSON: %v", err)
	}
	if result["file"] != "catalog.yaml" {
		t.Errorf("file = %v, want catalog.yaml", result["file"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("WriteJSON() output is not indented")
	}
}
