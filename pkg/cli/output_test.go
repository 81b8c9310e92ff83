package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q", string(output))
	}
}

func TestTextFormatterTable(t *testing.T) {
	buf := &bytes.Buffer{}
	table := Table{
		Headers: []string{"PROVIDER", "MODEL"},
		Rows: [][]string{
			{"openai", "gpt-4"},
			{"anthropic", "claude-3-opus-20240229"},
		},
	}

	if err := (&TextFormatter{}).FormatTo(buf, table); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	col := strings.Index(lines[0], "MODEL")
	if strings.Index(lines[1], "gpt-4") != col || strings.Index(lines[2], "claude") != col {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	formatter := NewFormatter(FormatJSON)

	data := map[string]interface{}{"default_provider": "openai"}
	output, err := formatter.Format(data)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(output, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["default_provider"] != "openai" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestJSONFormatterTable(t *testing.T) {
	buf := &bytes.Buffer{}
	table := &Table{
		Headers: []string{"tag", "type"},
		Rows:    [][]string{{"local", "generic"}},
	}

	if err := NewFormatter(FormatJSON).FormatTo(buf, table); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(records) != 1 || records[0]["tag"] != "local" || records[0]["type"] != "generic" {
		t.Errorf("records = %v", records)
	}
}
