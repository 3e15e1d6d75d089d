package reporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/janhq/autoqa-reporter/internal/applogs"
	"github.com/janhq/autoqa-reporter/internal/reportportal"
)

// uploadAppLogs discovers Jan application logs for the host platform and
// uploads the most recent ones as text attachments. Every failure becomes a
// backend log entry; nothing here fails the run.
func (r *Reporter) uploadAppLogs(ctx context.Context, launchID, itemID string, nightly bool, maxFiles int) {
	variant := "regular"
	if nightly {
		variant = "nightly"
	}

	patterns := applogs.HostPatterns(nightly)
	if len(patterns) == 0 {
		r.log(ctx, launchID, itemID, reportportal.LevelWarn,
			fmt.Sprintf("[INFO] No Jan %s application logs found (unsupported platform)", variant))
		return
	}

	files, total := applogs.Discover(patterns, maxAppLogFiles(maxFiles))
	if len(files) == 0 {
		r.log(ctx, launchID, itemID, reportportal.LevelWarn,
			fmt.Sprintf("[INFO] No Jan %s application logs found", variant))
		return
	}

	uploaded := 0
	for i, logPath := range files {
		fileName := filepath.Base(logPath)

		info, err := os.Stat(logPath)
		if err != nil {
			r.log(ctx, launchID, itemID, reportportal.LevelError,
				fmt.Sprintf("Failed to upload log file %s: %v", fileName, err))
			continue
		}

		if info.Size() > applogs.MaxFileSize {
			r.log(ctx, launchID, itemID, reportportal.LevelWarn,
				fmt.Sprintf("[INFO] Log file %s skipped (size: %d bytes > 50MB limit)", fileName, info.Size()))
			continue
		}

		data, err := os.ReadFile(logPath)
		if err != nil {
			r.log(ctx, launchID, itemID, reportportal.LevelError,
				fmt.Sprintf("Failed to upload log file %s: %v", fileName, err))
			continue
		}

		r.logf("[REPORT] Uploading log file %d/%d: %s (%d bytes)", i+1, len(files), fileName, len(data))

		err = r.backend.LogAttachment(ctx,
			reportportal.LogEntry{
				LaunchID: launchID,
				ItemID:   itemID,
				Time:     reportportal.Timestamp(),
				Level:    reportportal.LevelInfo,
				Message:  fmt.Sprintf("[INFO] Jan %s application log: %s", variant, fileName),
			},
			reportportal.Attachment{
				Name: fmt.Sprintf("jan_%s_log_%d_%s", variant, i+1, fileName),
				Mime: "text/plain",
				Data: data,
			})
		if err != nil {
			r.log(ctx, launchID, itemID, reportportal.LevelError,
				fmt.Sprintf("Failed to upload log file %s: %v", fileName, err))
			continue
		}
		uploaded++
	}

	r.log(ctx, launchID, itemID, reportportal.LevelInfo,
		fmt.Sprintf("[INFO] Uploaded %d Jan %s log files (total available: %d)", uploaded, variant, total))
}
