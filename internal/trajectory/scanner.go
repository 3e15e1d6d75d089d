package trajectory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	// TurnPrefix is the directory name prefix the execution agent uses for turns.
	TurnPrefix = "turn_"

	responsePrefix = "api_call_"
	responseSuffix = "_response.json"
)

// Turn is one step of agent execution inside a trajectory.
type Turn struct {
	Name  string // directory base name, e.g. "turn_003"
	Dir   string // absolute or joined path to the turn directory
	Index int    // numeric suffix parsed from Name, -1 if not parseable
}

// Scan enumerates the turn directories of a trajectory in execution order.
// Ordering key: the numeric index parsed from the "turn_<n>" name. If any
// directory name has no parseable index, the whole set falls back to lexical
// order, which matches numeric order as long as indices are zero-padded.
func Scan(trajectoryDir string) ([]Turn, error) {
	entries, err := os.ReadDir(trajectoryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read trajectory directory %s: %w", trajectoryDir, err)
	}

	var turns []Turn
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), TurnPrefix) {
			continue
		}
		turns = append(turns, Turn{
			Name:  entry.Name(),
			Dir:   filepath.Join(trajectoryDir, entry.Name()),
			Index: parseIndex(entry.Name(), TurnPrefix, ""),
		})
	}

	sortTurns(turns)
	return turns, nil
}

// parseIndex extracts the numeric index between prefix and suffix, -1 if absent.
func parseIndex(name, prefix, suffix string) int {
	s := strings.TrimPrefix(name, prefix)
	s = strings.TrimSuffix(s, suffix)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func sortTurns(turns []Turn) {
	numeric := true
	for _, t := range turns {
		if t.Index < 0 {
			numeric = false
			break
		}
	}

	sort.Slice(turns, func(i, j int) bool {
		if numeric && turns[i].Index != turns[j].Index {
			return turns[i].Index < turns[j].Index
		}
		return turns[i].Name < turns[j].Name
	})
}

// ResponseFiles lists the API response files of a turn directory in call order,
// using the same ordering key as Scan (numeric call index, lexical fallback).
func ResponseFiles(turnDir string) ([]string, error) {
	entries, err := os.ReadDir(turnDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read turn directory %s: %w", turnDir, err)
	}

	type responseFile struct {
		name  string
		index int
	}

	var files []responseFile
	numeric := true
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, responsePrefix) || !strings.HasSuffix(name, responseSuffix) {
			continue
		}
		idx := parseIndex(name, responsePrefix, responseSuffix)
		if idx < 0 {
			numeric = false
		}
		files = append(files, responseFile{name: name, index: idx})
	}

	sort.Slice(files, func(i, j int) bool {
		if numeric && files[i].index != files[j].index {
			return files[i].index < files[j].index
		}
		return files[i].name < files[j].name
	})

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.name)
	}
	return names, nil
}

// LastResponsePath returns the path of the most recent API response file in a
// turn directory, or "" if the turn has none.
func LastResponsePath(turnDir string) (string, error) {
	files, err := ResponseFiles(turnDir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}
	return filepath.Join(turnDir, files[len(files)-1]), nil
}
