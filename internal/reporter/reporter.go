// Package reporter uploads a recorded test trajectory to ReportPortal: one
// TEST item per run, one STEP item per turn, with screenshots, API call
// payloads, application logs and the screen recording attached along the way.
package reporter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/janhq/autoqa-reporter/internal/applogs"
	"github.com/janhq/autoqa-reporter/internal/reportportal"
	"github.com/janhq/autoqa-reporter/internal/trajectory"
	"github.com/janhq/autoqa-reporter/internal/upload"
)

// Backend is the reporting capability surface the orchestrator consumes.
// *reportportal.Client satisfies it.
type Backend interface {
	StartTestItem(ctx context.Context, req reportportal.StartItemRequest) (string, error)
	FinishTestItem(ctx context.Context, itemID string, req reportportal.FinishItemRequest) error
	Log(ctx context.Context, entry reportportal.LogEntry) error
	LogAttachment(ctx context.Context, entry reportportal.LogEntry, att reportportal.Attachment) error
}

// Params describes one test run to report.
type Params struct {
	LaunchID      string
	TestPath      string // test case source path, used to derive the item name
	TrajectoryDir string
	VideoPath     string // optional screen recording
	ForceStopped  bool   // the agent hit the turn limit and was stopped
	Nightly       bool   // nightly application variant (log discovery)
	MaxTurns      int    // configured turn limit, used in the forced-stop reason
	MaxLogFiles   int    // app log upload cap, DefaultMaxFiles when zero

	Attributes []reportportal.Attribute
}

// Reporter orchestrates the upload of a single test run.
type Reporter struct {
	backend Backend
	mirror  upload.Provider // optional recording mirror
	verbose bool
}

// New creates a Reporter. mirror may be nil.
func New(backend Backend, mirror upload.Provider, verbose bool) *Reporter {
	return &Reporter{backend: backend, mirror: mirror, verbose: verbose}
}

const failedBanner = "[FAILED] TEST FAILED [FAILED]\nNo trajectory directory found"

// Run uploads the test run and returns the final status. It never returns an
// error: every failure is reflected in backend log entries and the item
// status, and the item is always finalized exactly once.
func (r *Reporter) Run(ctx context.Context, p Params) string {
	name := FormatTestName(p.TestPath)

	if !dirExists(p.TrajectoryDir) {
		r.logf("[REPORT] Trajectory directory not found: %s", p.TrajectoryDir)
		r.reportMissingTrajectory(ctx, p, name)
		return reportportal.StatusFailed
	}

	finalStatus, reason := r.resolveStatus(p)

	itemID, err := r.backend.StartTestItem(ctx, reportportal.StartItemRequest{
		Name:        name,
		StartTime:   reportportal.Timestamp(),
		Type:        reportportal.ItemTypeTest,
		LaunchID:    p.LaunchID,
		Description: fmt.Sprintf("Test case from: %s", p.TestPath),
		Attributes:  p.Attributes,
	})
	if err != nil {
		// Without an item there is nothing to annotate or finalize.
		r.logf("[REPORT] Failed to start test item: %v", err)
		return reportportal.StatusFailed
	}

	r.annotate(ctx, p, itemID, finalStatus, reason)

	if err := r.backend.FinishTestItem(ctx, itemID, reportportal.FinishItemRequest{
		EndTime:  reportportal.Timestamp(),
		Status:   finalStatus,
		LaunchID: p.LaunchID,
	}); err != nil {
		r.logf("[REPORT] Failed to finish test item: %v", err)
	}

	r.logf("[REPORT] Uploaded test results for %s: %s", name, finalStatus)
	return finalStatus
}

// resolveStatus determines the final status and its human-readable reason.
// A forced stop overrides whatever the trajectory says.
func (r *Reporter) resolveStatus(p Params) (status, reason string) {
	if p.ForceStopped {
		return reportportal.StatusFailed, fmt.Sprintf("exceeded maximum turn limit (%d turns)", p.MaxTurns)
	}

	verdict, err := trajectory.ExtractVerdict(p.TrajectoryDir)
	if err != nil {
		r.logf("[REPORT] Result extraction: %v", err)
	}
	if verdict == trajectory.VerdictPassed {
		return reportportal.StatusPassed, "completed successfully with positive result"
	}
	return reportportal.StatusFailed, "no valid success result found"
}

// annotate performs the summary, video, app-log and per-turn uploads. Each
// stage is best-effort so a failure in one never skips the next, and the
// caller finalizes the item regardless.
func (r *Reporter) annotate(ctx context.Context, p Params, itemID, finalStatus, reason string) {
	turns, err := trajectory.Scan(p.TrajectoryDir)
	if err != nil {
		r.logf("[REPORT] Failed to scan trajectory: %v", err)
	}

	marker := "[SUCCESS]"
	level := reportportal.LevelInfo
	if finalStatus != reportportal.StatusPassed {
		marker = "[FAILED]"
		level = reportportal.LevelError
	}
	r.log(ctx, p.LaunchID, itemID, level, fmt.Sprintf("%s TEST %s %s\nReason: %s\nTotal turns: %d",
		marker, finalStatus, marker, reason, len(turns)))

	r.uploadVideo(ctx, p, itemID)
	r.uploadAppLogs(ctx, p.LaunchID, itemID, p.Nightly, p.MaxLogFiles)

	// A failed test marks every turn as failed.
	forceFail := finalStatus == reportportal.StatusFailed
	for _, turn := range turns {
		r.uploadTurn(ctx, p.LaunchID, itemID, turn, forceFail)
	}
}

// reportMissingTrajectory still creates and finalizes an item so the run shows
// up as FAILED in the launch, with the recording attached when one exists.
func (r *Reporter) reportMissingTrajectory(ctx context.Context, p Params, name string) {
	itemID, err := r.backend.StartTestItem(ctx, reportportal.StartItemRequest{
		Name:        name,
		StartTime:   reportportal.Timestamp(),
		Type:        reportportal.ItemTypeTest,
		LaunchID:    p.LaunchID,
		Description: fmt.Sprintf("Test case from: %s", p.TestPath),
		Attributes:  p.Attributes,
	})
	if err != nil {
		r.logf("[REPORT] Failed to start test item: %v", err)
		return
	}

	r.log(ctx, p.LaunchID, itemID, reportportal.LevelError, failedBanner)
	if p.VideoPath != "" && fileExists(p.VideoPath) {
		r.uploadVideo(ctx, p, itemID)
	}

	if err := r.backend.FinishTestItem(ctx, itemID, reportportal.FinishItemRequest{
		EndTime:  reportportal.Timestamp(),
		Status:   reportportal.StatusFailed,
		LaunchID: p.LaunchID,
	}); err != nil {
		r.logf("[REPORT] Failed to finish test item: %v", err)
	}
}

// uploadVideo attaches the screen recording when present; its absence is a
// warning entry, never an error.
func (r *Reporter) uploadVideo(ctx context.Context, p Params, itemID string) {
	name := FormatTestName(p.TestPath)

	if p.VideoPath == "" || !fileExists(p.VideoPath) {
		r.log(ctx, p.LaunchID, itemID, reportportal.LevelWarn, "No screen recording available for this test")
		return
	}

	data, err := os.ReadFile(p.VideoPath)
	if err != nil {
		r.log(ctx, p.LaunchID, itemID, reportportal.LevelWarn,
			fmt.Sprintf("Failed to upload screen recording: %v", err))
		return
	}

	attachmentName := fmt.Sprintf("test_recording_%s.mp4", name)
	err = r.backend.LogAttachment(ctx,
		reportportal.LogEntry{
			LaunchID: p.LaunchID,
			ItemID:   itemID,
			Time:     reportportal.Timestamp(),
			Level:    reportportal.LevelInfo,
			Message:  "[INFO] Screen recording of test execution",
		},
		reportportal.Attachment{
			Name: attachmentName,
			Mime: "video/x-msvideo",
			Data: data,
		})
	if err != nil {
		r.log(ctx, p.LaunchID, itemID, reportportal.LevelWarn,
			fmt.Sprintf("Failed to upload screen recording: %v", err))
	} else {
		r.logf("[REPORT] Uploaded screen recording: %s (%d bytes)", p.VideoPath, len(data))
	}

	r.mirrorVideo(ctx, p, itemID, attachmentName, data)
}

// mirrorVideo copies the recording to the configured object-storage mirror.
func (r *Reporter) mirrorVideo(ctx context.Context, p Params, itemID, attachmentName string, data []byte) {
	if r.mirror == nil {
		return
	}

	remotePath := attachmentName
	if p.LaunchID != "" {
		remotePath = p.LaunchID + "/" + attachmentName
	}

	err := r.mirror.Upload(ctx, bytes.NewReader(data), int64(len(data)), remotePath, "video/mp4")
	if err != nil {
		r.log(ctx, p.LaunchID, itemID, reportportal.LevelWarn,
			fmt.Sprintf("Failed to mirror screen recording to %s: %v", r.mirror.Name(), err))
		return
	}
	r.log(ctx, p.LaunchID, itemID, reportportal.LevelInfo,
		fmt.Sprintf("[INFO] Screen recording mirrored to %s: %s", r.mirror.Name(), remotePath))
}

// log sends a backend log entry, downgrading delivery failures to verbose
// diagnostics: reporting must not fail because a log line did.
func (r *Reporter) log(ctx context.Context, launchID, itemID, level, message string) {
	entry := reportportal.LogEntry{
		LaunchID: launchID,
		ItemID:   itemID,
		Time:     reportportal.Timestamp(),
		Level:    level,
		Message:  message,
	}
	if err := r.backend.Log(ctx, entry); err != nil {
		r.logf("[REPORT] Failed to send log entry: %v", err)
	}
}

func (r *Reporter) logf(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// FormatTestName normalizes a test case path into a flat item name, e.g.
// "suite\\chat/send_message.txt" becomes "suite__chat__send_message".
func FormatTestName(testPath string) string {
	name := strings.ReplaceAll(testPath, "\\", "/")
	name = strings.TrimSuffix(name, ".txt")
	return strings.ReplaceAll(name, "/", "__")
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// maxAppLogFiles resolves the configured cap, falling back to the default.
func maxAppLogFiles(configured int) int {
	if configured > 0 {
		return configured
	}
	return applogs.DefaultMaxFiles
}
