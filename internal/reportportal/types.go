package reportportal

import "time"

// Item statuses accepted by the backend when finishing a launch, test or step.
const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// Log levels for log entries.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Item types in the reporting hierarchy (launch -> test -> step).
const (
	ItemTypeTest = "TEST"
	ItemTypeStep = "STEP"
)

// Attribute is a key/value tag attached to a launch or test item.
type Attribute struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Timestamp returns the current time in the backend's epoch-millisecond format.
func Timestamp() int64 {
	return time.Now().UnixMilli()
}

// StartLaunchRequest starts a new launch.
type StartLaunchRequest struct {
	Name        string      `json:"name"`
	StartTime   int64       `json:"startTime"`
	Description string      `json:"description,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

// StartItemRequest starts a test item. Parent selects the parent item; when
// empty the item is created directly under the launch.
type StartItemRequest struct {
	Name        string      `json:"name"`
	StartTime   int64       `json:"startTime"`
	Type        string      `json:"type"`
	LaunchID    string      `json:"launchUuid"`
	Description string      `json:"description,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Parent      string      `json:"-"`
}

// FinishItemRequest finishes a test item with a terminal status.
type FinishItemRequest struct {
	EndTime  int64  `json:"endTime"`
	Status   string `json:"status"`
	LaunchID string `json:"launchUuid,omitempty"`
}

// LogEntry is a single log line attached to an item (or to the launch itself
// when ItemID is empty).
type LogEntry struct {
	LaunchID string `json:"launchUuid"`
	ItemID   string `json:"itemUuid,omitempty"`
	Time     int64  `json:"time"`
	Level    string `json:"level"`
	Message  string `json:"message"`
}

// Attachment is a binary or text file attached to a log entry.
type Attachment struct {
	Name string
	Mime string
	Data []byte
}

type startedResponse struct {
	ID string `json:"id"`
}
