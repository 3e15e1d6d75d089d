package trajectory

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Verdict is the outcome extracted from a trajectory's last API response.
type Verdict int

const (
	// VerdictUnknown means no recognized result marker was found. Callers
	// treat it the same as VerdictFailed.
	VerdictUnknown Verdict = iota
	VerdictPassed
	VerdictFailed
)

func (v Verdict) String() string {
	switch v {
	case VerdictPassed:
		return "PASSED"
	case VerdictFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// The result marker is pseudo-JSON emitted by the model inside free-form text,
// with Python-style boolean literals. The upstream producer writes exactly
// these shapes, so the patterns must not be "fixed" to valid JSON booleans.
var (
	passedPattern = regexp.MustCompile(`\{\s*"result"\s*:\s*True\s*\}`)
	failedPattern = regexp.MustCompile(`\{\s*"result"\s*:\s*False\s*\}`)
)

// MatchVerdict searches free-form response text for a result marker.
func MatchVerdict(content string) Verdict {
	switch {
	case passedPattern.MatchString(content):
		return VerdictPassed
	case failedPattern.MatchString(content):
		return VerdictFailed
	default:
		return VerdictUnknown
	}
}

// apiResponse mirrors the slice of the recorded API call we care about:
// response.choices[last].message.content.
type apiResponse struct {
	Response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"response"`
}

// ExtractVerdict derives the test verdict from the last API response of the
// last turn. Every failure mode (missing directory, no turns, no response
// files, malformed JSON, missing fields) yields VerdictUnknown together with a
// diagnostic error; only an affirmative marker yields VerdictPassed.
func ExtractVerdict(trajectoryDir string) (Verdict, error) {
	if trajectoryDir == "" {
		return VerdictUnknown, fmt.Errorf("trajectory directory not set")
	}
	if _, err := os.Stat(trajectoryDir); err != nil {
		return VerdictUnknown, fmt.Errorf("trajectory directory not found: %s", trajectoryDir)
	}

	turns, err := Scan(trajectoryDir)
	if err != nil {
		return VerdictUnknown, err
	}
	if len(turns) == 0 {
		return VerdictUnknown, fmt.Errorf("no turn folders found in %s", trajectoryDir)
	}

	lastTurn := turns[len(turns)-1]
	responsePath, err := LastResponsePath(lastTurn.Dir)
	if err != nil {
		return VerdictUnknown, err
	}
	if responsePath == "" {
		return VerdictUnknown, fmt.Errorf("no API response files found in last turn %s", lastTurn.Name)
	}

	data, err := os.ReadFile(responsePath)
	if err != nil {
		return VerdictUnknown, fmt.Errorf("failed to read response file %s: %w", responsePath, err)
	}

	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return VerdictUnknown, fmt.Errorf("failed to parse response file %s: %w", responsePath, err)
	}
	if len(resp.Response.Choices) == 0 {
		return VerdictUnknown, fmt.Errorf("no choices in response file %s", responsePath)
	}

	content := resp.Response.Choices[len(resp.Response.Choices)-1].Message.Content
	verdict := MatchVerdict(content)
	if verdict == VerdictUnknown {
		return VerdictUnknown, fmt.Errorf("no valid result pattern found in %s", responsePath)
	}
	return verdict, nil
}

// Outcome reports whether the trajectory ended with an affirmative result.
// Anything other than an explicit affirmative marker counts as failure.
func Outcome(trajectoryDir string) bool {
	verdict, _ := ExtractVerdict(trajectoryDir)
	return verdict == VerdictPassed
}
