// Package applogs locates Jan application log files on the host platform.
package applogs

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

const (
	// DefaultMaxFiles caps how many log files are picked up per run.
	DefaultMaxFiles = 5

	// MaxFileSize is the upload ceiling for a single log file (50 MiB).
	MaxFileSize = 50 * 1024 * 1024
)

// AppName returns the installed application name for the given variant.
func AppName(nightly bool) string {
	if nightly {
		return "Jan-nightly"
	}
	return "Jan"
}

// Patterns returns the glob patterns for the application log directory on the
// given platform. An unrecognized platform yields no patterns, which callers
// treat as "no logs found" rather than an error.
func Patterns(goos string, nightly bool) []string {
	app := AppName(nightly)

	switch goos {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return nil
		}
		return []string{filepath.Join(appData, app, "data", "logs", "*.log")}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{filepath.Join(home, "Library", "Application Support", app, "data", "logs", "*.log")}
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{filepath.Join(home, ".local", "share", app, "data", "logs", "*.log")}
	default:
		return nil
	}
}

// HostPatterns is Patterns for the current platform.
func HostPatterns(nightly bool) []string {
	return Patterns(runtime.GOOS, nightly)
}

// Discover expands the given glob patterns and returns the matching files
// sorted by modification time, newest first, capped at maxFiles. Total
// availability is returned alongside so callers can report how many files
// existed beyond the cap. Unreadable patterns and files are skipped.
func Discover(patterns []string, maxFiles int) (files []string, total int) {
	type logFile struct {
		path    string
		modTime int64
	}

	var found []logFile
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			found = append(found, logFile{path: match, modTime: info.ModTime().UnixNano()})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].modTime != found[j].modTime {
			return found[i].modTime > found[j].modTime
		}
		return found[i].path < found[j].path
	})

	total = len(found)
	if maxFiles > 0 && len(found) > maxFiles {
		found = found[:maxFiles]
	}

	files = make([]string, 0, len(found))
	for _, f := range found {
		files = append(files, f.path)
	}
	return files, total
}
