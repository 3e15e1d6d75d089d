package reporter

// ErrorKind classifies per-artifact and per-run failures. Every kind is
// non-fatal: it becomes a backend log entry and feeds status aggregation
// instead of aborting the upload.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorMissingDirectory
	ErrorMissingArtifact
	ErrorParseFailure
	ErrorAttachmentFailure
	ErrorSizeLimitExceeded
	ErrorUnsupportedPlatform
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorMissingDirectory:
		return "missing_directory"
	case ErrorMissingArtifact:
		return "missing_artifact"
	case ErrorParseFailure:
		return "parse_failure"
	case ErrorAttachmentFailure:
		return "attachment_failure"
	case ErrorSizeLimitExceeded:
		return "size_limit_exceeded"
	case ErrorUnsupportedPlatform:
		return "unsupported_platform"
	default:
		return "none"
	}
}

// ArtifactResult records the outcome of uploading one artifact from a turn.
type ArtifactResult struct {
	Name string
	Kind ErrorKind
	Err  error
}

// OK reports whether the artifact was uploaded without error.
func (a ArtifactResult) OK() bool {
	return a.Err == nil
}

// hasErrors reports whether any artifact in the set failed.
func hasErrors(results []ArtifactResult) bool {
	for _, r := range results {
		if !r.OK() {
			return true
		}
	}
	return false
}
