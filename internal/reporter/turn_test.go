package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/janhq/autoqa-reporter/internal/reportportal"
	"github.com/janhq/autoqa-reporter/internal/trajectory"
)

func makeTurn(t *testing.T, files map[string][]byte) trajectory.Turn {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "turn_001")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create turn dir: %v", err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return trajectory.Turn{Name: "turn_001", Dir: dir, Index: 1}
}

func TestUploadTurn_JSONRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	original := map[string]any{"b": float64(2), "a": map[string]any{"nested": "value"}}
	compact, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}
	turn := makeTurn(t, map[string][]byte{"api_call_001_response.json": compact})

	results := New(backend, nil, false).uploadTurn(context.Background(), "launch-1", "item-0", turn, false)

	if len(results) != 1 || !results[0].OK() {
		t.Fatalf("Expected one clean artifact, got %v", results)
	}
	if len(backend.logs) != 1 {
		t.Fatalf("Expected one log entry, got %d", len(backend.logs))
	}

	msg := backend.logs[0].Message
	header := "[api_call_001_response.json]\n"
	if !strings.HasPrefix(msg, header) {
		t.Fatalf("Expected header prefix, got %q", msg)
	}

	// Pretty-printing must not lose or alter any data
	var roundTripped map[string]any
	if err := json.Unmarshal([]byte(strings.TrimPrefix(msg, header)), &roundTripped); err != nil {
		t.Fatalf("Logged payload is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(roundTripped, original) {
		t.Errorf("Round trip changed the payload: got %v, want %v", roundTripped, original)
	}
}

func TestUploadTurn_Screenshot(t *testing.T) {
	backend := newFakeBackend()
	pngData := []byte("png-bytes")
	turn := makeTurn(t, map[string][]byte{"screenshot_001.png": pngData})

	results := New(backend, nil, false).uploadTurn(context.Background(), "launch-1", "item-0", turn, false)

	if len(results) != 1 || !results[0].OK() {
		t.Fatalf("Expected one clean artifact, got %v", results)
	}
	if len(backend.attachments) != 1 {
		t.Fatalf("Expected one attachment, got %d", len(backend.attachments))
	}

	call := backend.attachments[0]
	if call.att.Name != "screenshot_001.png" {
		t.Errorf("Unexpected attachment name: %s", call.att.Name)
	}
	if call.att.Mime != "image/png" {
		t.Errorf("Unexpected mime: %s", call.att.Mime)
	}
	if string(call.att.Data) != string(pngData) {
		t.Errorf("Attachment data altered: %q", call.att.Data)
	}
	if call.entry.Message != "Screenshot: screenshot_001.png" {
		t.Errorf("Unexpected message: %s", call.entry.Message)
	}
}

func TestUploadTurn_EmptyTurn(t *testing.T) {
	backend := newFakeBackend()
	turn := makeTurn(t, nil)

	results := New(backend, nil, false).uploadTurn(context.Background(), "launch-1", "item-0", turn, false)

	if len(results) != 0 {
		t.Fatalf("Expected no artifacts, got %v", results)
	}
	warns := backend.logsWithLevel(reportportal.LevelWarn)
	if len(warns) != 1 || warns[0].Message != "No data found in this turn." {
		t.Fatalf("Expected exactly one empty-turn warning, got %v", warns)
	}
	if backend.finishes["item-1"].Status != reportportal.StatusPassed {
		t.Errorf("Expected empty step PASSED, got %s", backend.finishes["item-1"].Status)
	}
}

func TestUploadTurn_UnrecognizedFilesIgnored(t *testing.T) {
	backend := newFakeBackend()
	turn := makeTurn(t, map[string][]byte{
		"notes.txt":    []byte("ignored"),
		"capture.jpeg": []byte("ignored"),
	})

	results := New(backend, nil, false).uploadTurn(context.Background(), "launch-1", "item-0", turn, false)

	if len(results) != 0 {
		t.Errorf("Expected unrecognized files to be skipped, got %v", results)
	}
	warns := backend.logsWithLevel(reportportal.LevelWarn)
	if len(warns) != 1 {
		t.Errorf("Expected the empty-turn warning, got %v", warns)
	}
}

func TestUploadTurn_InvalidJSONFailsStep(t *testing.T) {
	backend := newFakeBackend()
	turn := makeTurn(t, map[string][]byte{"broken.json": []byte("{not json")})

	results := New(backend, nil, false).uploadTurn(context.Background(), "launch-1", "item-0", turn, false)

	if len(results) != 1 || results[0].Kind != ErrorParseFailure {
		t.Fatalf("Expected a parse failure, got %v", results)
	}
	errorLogs := backend.logsWithLevel(reportportal.LevelError)
	if len(errorLogs) != 1 || !strings.Contains(errorLogs[0].Message, "[ERROR parsing broken.json]") {
		t.Errorf("Expected a parse error entry, got %v", errorLogs)
	}
	if backend.finishes["item-1"].Status != reportportal.StatusFailed {
		t.Errorf("Expected step FAILED, got %s", backend.finishes["item-1"].Status)
	}
}

func TestUploadTurn_AttachmentFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.attachErr = fmt.Errorf("attachment rejected")
	turn := makeTurn(t, map[string][]byte{"screenshot_001.png": []byte("png-bytes")})

	results := New(backend, nil, false).uploadTurn(context.Background(), "launch-1", "item-0", turn, false)

	if len(results) != 1 || results[0].Kind != ErrorAttachmentFailure {
		t.Fatalf("Expected an attachment failure, got %v", results)
	}
	if backend.finishes["item-1"].Status != reportportal.StatusFailed {
		t.Errorf("Expected step FAILED, got %s", backend.finishes["item-1"].Status)
	}
}

func TestUploadTurn_ForceFail(t *testing.T) {
	backend := newFakeBackend()
	payload, _ := json.Marshal(map[string]any{"ok": true})
	turn := makeTurn(t, map[string][]byte{"api_call_001_response.json": payload})

	results := New(backend, nil, false).uploadTurn(context.Background(), "launch-1", "item-0", turn, true)

	if len(results) != 1 || !results[0].OK() {
		t.Fatalf("Expected clean artifacts, got %v", results)
	}
	if backend.finishes["item-1"].Status != reportportal.StatusFailed {
		t.Errorf("Expected force-failed step FAILED, got %s", backend.finishes["item-1"].Status)
	}
}

func TestUploadTurn_LexicalOrder(t *testing.T) {
	backend := newFakeBackend()
	payloadA, _ := json.Marshal(map[string]any{"n": float64(1)})
	payloadB, _ := json.Marshal(map[string]any{"n": float64(2)})
	turn := makeTurn(t, map[string][]byte{
		"b_second.json": payloadB,
		"a_first.json":  payloadA,
	})

	results := New(backend, nil, false).uploadTurn(context.Background(), "launch-1", "item-0", turn, false)

	if len(results) != 2 {
		t.Fatalf("Expected 2 artifacts, got %d", len(results))
	}
	if results[0].Name != "a_first.json" || results[1].Name != "b_second.json" {
		t.Errorf("Expected lexical order, got %s, %s", results[0].Name, results[1].Name)
	}
}
