package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/janhq/autoqa-reporter/internal/reportportal"
	"github.com/janhq/autoqa-reporter/internal/trajectory"
)

// uploadTurn creates a STEP item for one turn and uploads its artifacts in
// lexical order: .json payloads become pretty-printed text entries, .png
// screenshots become binary attachments. The step is always finalized; its
// status is FAILED when forceFail is set or any artifact failed.
func (r *Reporter) uploadTurn(ctx context.Context, launchID, testItemID string, turn trajectory.Turn, forceFail bool) []ArtifactResult {
	stepID, err := r.backend.StartTestItem(ctx, reportportal.StartItemRequest{
		Name:      turn.Name,
		StartTime: reportportal.Timestamp(),
		Type:      reportportal.ItemTypeStep,
		LaunchID:  launchID,
		Parent:    testItemID,
	})
	if err != nil {
		r.logf("[REPORT] Failed to start step for %s: %v", turn.Name, err)
		return nil
	}

	results := r.uploadTurnArtifacts(ctx, launchID, stepID, turn)

	if len(results) == 0 {
		r.log(ctx, launchID, stepID, reportportal.LevelWarn, "No data found in this turn.")
	}

	status := reportportal.StatusPassed
	if forceFail || hasErrors(results) {
		status = reportportal.StatusFailed
	}

	if err := r.backend.FinishTestItem(ctx, stepID, reportportal.FinishItemRequest{
		EndTime:  reportportal.Timestamp(),
		Status:   status,
		LaunchID: launchID,
	}); err != nil {
		r.logf("[REPORT] Failed to finish step for %s: %v", turn.Name, err)
	}

	return results
}

func (r *Reporter) uploadTurnArtifacts(ctx context.Context, launchID, stepID string, turn trajectory.Turn) []ArtifactResult {
	entries, err := os.ReadDir(turn.Dir)
	if err != nil {
		r.log(ctx, launchID, stepID, reportportal.LevelError,
			fmt.Sprintf("[ERROR reading %s] %v", turn.Name, err))
		return []ArtifactResult{{Name: turn.Name, Kind: ErrorMissingDirectory, Err: err}}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var results []ArtifactResult
	for _, name := range names {
		path := filepath.Join(turn.Dir, name)

		switch {
		case strings.HasSuffix(name, ".json"):
			results = append(results, r.uploadJSONArtifact(ctx, launchID, stepID, name, path))
		case strings.HasSuffix(name, ".png"):
			results = append(results, r.uploadImageArtifact(ctx, launchID, stepID, name, path))
		}
	}
	return results
}

// uploadJSONArtifact re-serializes the payload pretty-printed so it reads well
// in the backend UI and survives a round-trip back to the original object.
func (r *Reporter) uploadJSONArtifact(ctx context.Context, launchID, stepID, name, path string) ArtifactResult {
	data, err := os.ReadFile(path)
	if err == nil {
		var payload any
		if parseErr := json.Unmarshal(data, &payload); parseErr != nil {
			err = parseErr
		} else {
			pretty, marshalErr := json.MarshalIndent(payload, "", "  ")
			if marshalErr != nil {
				err = marshalErr
			} else {
				r.log(ctx, launchID, stepID, reportportal.LevelInfo,
					fmt.Sprintf("[%s]\n%s", name, pretty))
				return ArtifactResult{Name: name}
			}
		}
	}

	r.log(ctx, launchID, stepID, reportportal.LevelError,
		fmt.Sprintf("[ERROR parsing %s] %v", name, err))
	return ArtifactResult{Name: name, Kind: ErrorParseFailure, Err: err}
}

func (r *Reporter) uploadImageArtifact(ctx context.Context, launchID, stepID, name, path string) ArtifactResult {
	data, err := os.ReadFile(path)
	if err == nil {
		attachErr := r.backend.LogAttachment(ctx,
			reportportal.LogEntry{
				LaunchID: launchID,
				ItemID:   stepID,
				Time:     reportportal.Timestamp(),
				Level:    reportportal.LevelInfo,
				Message:  fmt.Sprintf("Screenshot: %s", name),
			},
			reportportal.Attachment{
				Name: name,
				Mime: guessMime(name),
				Data: data,
			})
		if attachErr == nil {
			return ArtifactResult{Name: name}
		}
		err = attachErr
	}

	r.log(ctx, launchID, stepID, reportportal.LevelError,
		fmt.Sprintf("[ERROR attaching %s] %v", name, err))
	return ArtifactResult{Name: name, Kind: ErrorAttachmentFailure, Err: err}
}

func guessMime(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "image/png"
}
