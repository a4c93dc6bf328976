// Package audit writes best-effort activity records to the vault's audit
// log object in Drive. Recording is fire-and-forget: no failure on this
// path may ever reach, or change the outcome of, the operation that
// triggered it.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilsync07/vaultify/internal/client/drive"
	"github.com/sahilsync07/vaultify/internal/client/session"
	"github.com/sahilsync07/vaultify/internal/logging"
)

// LogStore is the slice of the Drive gateway the recorder uses.
type LogStore interface {
	AppendLogEntry(ctx context.Context, token string, entry drive.LogEntry) error
	FetchLogs(ctx context.Context, token string) ([]drive.LogEntry, error)
}

type Recorder struct {
	store  LogStore
	holder *session.Holder
	log    logging.Logger
}

func NewRecorder(store LogStore, holder *session.Holder, log logging.Logger) *Recorder {
	return &Recorder{store: store, holder: holder, log: log}
}

// Record appends an entry stamped with the current time and the signed-in
// user's display name. Every failure, of any kind, is swallowed after a
// diagnostic; callers never observe one.
func (r *Recorder) Record(ctx context.Context, token string, action, details, fileID, fileName string) {
	entry := drive.LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		User:      r.userName(),
		Action:    action,
		Details:   details,
		FileID:    fileID,
		FileName:  fileName,
	}
	if err := r.store.AppendLogEntry(ctx, token, entry); err != nil {
		r.log.Warn(ctx, "audit record dropped", "action", action, "file", fileName, "error", err)
	}
}

// RecordUpload satisfies the upload coordinator's Recorder interface.
func (r *Recorder) RecordUpload(ctx context.Context, token string, fileName string, docType string) {
	r.Record(ctx, token, "UPLOAD", fmt.Sprintf("Uploaded %s (%s)", fileName, docType), "", fileName)
}

// List returns the audit entries, newest first.
func (r *Recorder) List(ctx context.Context, token string) ([]drive.LogEntry, error) {
	return r.store.FetchLogs(ctx, token)
}

func (r *Recorder) userName() string {
	if s := r.holder.Current(); s != nil && s.User.Name != "" {
		return s.User.Name
	}
	return "Unknown"
}
