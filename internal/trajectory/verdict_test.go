package trajectory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMatchVerdict(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Verdict
	}{
		{
			name:     "affirmative marker",
			content:  `The task is complete. {"result": True}`,
			expected: VerdictPassed,
		},
		{
			name:     "negative marker",
			content:  `Could not find the button. {"result": False}`,
			expected: VerdictFailed,
		},
		{
			name:     "marker with extra whitespace",
			content:  "done {  \"result\"  :  True  }",
			expected: VerdictPassed,
		},
		{
			name:     "no marker",
			content:  "I clicked the settings icon.",
			expected: VerdictUnknown,
		},
		{
			// The producer emits Python-style literals; valid JSON
			// booleans are not recognized markers.
			name:     "lowercase json boolean is not a marker",
			content:  `{"result": true}`,
			expected: VerdictUnknown,
		},
		{
			name:     "affirmative wins when both present",
			content:  `{"result": True} but earlier {"result": False}`,
			expected: VerdictPassed,
		},
		{
			name:     "empty content",
			content:  "",
			expected: VerdictUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchVerdict(tt.content); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// writeResponse writes an API response file whose last choice carries content.
func writeResponse(t *testing.T, turnDir, name, content string) {
	t.Helper()
	payload := map[string]any{
		"response": map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": "intermediate"}},
				map[string]any{"message": map[string]any{"content": content}},
			},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	if err := os.WriteFile(filepath.Join(turnDir, name), data, 0o644); err != nil {
		t.Fatalf("Failed to write response file: %v", err)
	}
}

func TestExtractVerdict(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		verdict, err := ExtractVerdict(filepath.Join(t.TempDir(), "missing"))
		if verdict != VerdictUnknown {
			t.Errorf("Expected VerdictUnknown, got %v", verdict)
		}
		if err == nil {
			t.Error("Expected diagnostic error")
		}
	})

	t.Run("empty trajectory dir", func(t *testing.T) {
		verdict, err := ExtractVerdict("")
		if verdict != VerdictUnknown || err == nil {
			t.Errorf("Expected VerdictUnknown with error, got %v, %v", verdict, err)
		}
	})

	t.Run("no turn folders", func(t *testing.T) {
		verdict, err := ExtractVerdict(t.TempDir())
		if verdict != VerdictUnknown || err == nil {
			t.Errorf("Expected VerdictUnknown with error, got %v, %v", verdict, err)
		}
	})

	t.Run("last turn has no response files", func(t *testing.T) {
		dir := makeTurnDirs(t, "turn_001")
		verdict, err := ExtractVerdict(dir)
		if verdict != VerdictUnknown || err == nil {
			t.Errorf("Expected VerdictUnknown with error, got %v, %v", verdict, err)
		}
	})

	t.Run("malformed response JSON", func(t *testing.T) {
		dir := makeTurnDirs(t, "turn_001")
		path := filepath.Join(dir, "turn_001", "api_call_001_response.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatalf("Failed to write response: %v", err)
		}

		verdict, err := ExtractVerdict(dir)
		if verdict != VerdictUnknown || err == nil {
			t.Errorf("Expected VerdictUnknown with error, got %v, %v", verdict, err)
		}
	})

	t.Run("affirmative result in last turn", func(t *testing.T) {
		dir := makeTurnDirs(t, "turn_001", "turn_002")
		writeResponse(t, filepath.Join(dir, "turn_001"), "api_call_001_response.json", `{"result": False}`)
		writeResponse(t, filepath.Join(dir, "turn_002"), "api_call_001_response.json", `All done. {"result": True}`)

		verdict, err := ExtractVerdict(dir)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if verdict != VerdictPassed {
			t.Errorf("Expected VerdictPassed, got %v", verdict)
		}
	})

	t.Run("negative result", func(t *testing.T) {
		dir := makeTurnDirs(t, "turn_001")
		writeResponse(t, filepath.Join(dir, "turn_001"), "api_call_001_response.json", `{"result": False}`)

		verdict, err := ExtractVerdict(dir)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if verdict != VerdictFailed {
			t.Errorf("Expected VerdictFailed, got %v", verdict)
		}
	})

	t.Run("only the last response file counts", func(t *testing.T) {
		dir := makeTurnDirs(t, "turn_001")
		turnDir := filepath.Join(dir, "turn_001")
		writeResponse(t, turnDir, "api_call_001_response.json", `{"result": True}`)
		writeResponse(t, turnDir, "api_call_002_response.json", "no marker here")

		verdict, _ := ExtractVerdict(dir)
		if verdict != VerdictUnknown {
			t.Errorf("Expected VerdictUnknown from last response, got %v", verdict)
		}
	})
}

func TestOutcome(t *testing.T) {
	dir := makeTurnDirs(t, "turn_001")
	writeResponse(t, filepath.Join(dir, "turn_001"), "api_call_001_response.json", `{"result": True}`)

	if !Outcome(dir) {
		t.Error("Expected true for affirmative trajectory")
	}
	if Outcome(filepath.Join(dir, "missing")) {
		t.Error("Expected false for missing trajectory")
	}
}
