package upload

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of one upload task. Transitions are
// pending -> uploading -> success|error; error goes back to uploading on a
// retry sweep or a manual restart, success is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Payload is the immutable content of a selected file.
type Payload struct {
	Data     []byte
	MimeType string
	Size     int64
}

// Task is one file's upload attempt. Tasks are keyed by file name: the vault
// does not deduplicate by content, and re-adding a same-named file replaces
// the old task.
type Task struct {
	Name     string
	Payload  Payload
	DocType  string
	Status   Status
	Progress int
}

// ValidationError reports tasks that are missing a declared document type.
// Validation is batch-level: one missing type blocks the whole start.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing document type for: %s", strings.Join(e.Missing, ", "))
}
