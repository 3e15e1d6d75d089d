package cmd

// RPConfig holds ReportPortal connection flags
type RPConfig struct {
	Endpoint   string
	Project    string
	Token      string
	Timeout    string
	Retries    int
	RetryDelay string
}

// AttributeConfig holds attribute-related flags
type AttributeConfig struct {
	JSON string
	KV   []string
	File string
}

// MirrorConfig holds recording-mirror flags
type MirrorConfig struct {
	Provider   string
	Config     string
	ConfigKV   []string
	ConfigFile string
}
