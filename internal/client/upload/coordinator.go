// Package upload implements the client-side upload coordinator: a per-file
// status and progress table driven through the two-phase Drive upload
// protocol, with shared-token invalidation handling and a single batch
// completion signal.
package upload

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sahilsync07/vaultify/internal/client/drive"
	"github.com/sahilsync07/vaultify/internal/client/session"
	"github.com/sahilsync07/vaultify/internal/logging"
	"github.com/sahilsync07/vaultify/internal/taxonomy"
)

// maxConcurrentTransfers caps how many byte transfers run at once.
const maxConcurrentTransfers = 4

// Gateway is the slice of the Drive gateway the coordinator drives.
type Gateway interface {
	InitiateUpload(ctx context.Context, token string, up drive.Upload) (string, error)
	TransferContent(ctx context.Context, sessionURL string, mimeType string, payload []byte, onProgress func(percent int)) error
}

// TokenSource supplies the shared access token and its asynchronous
// re-acquisition. One token is shared by every task in a batch.
type TokenSource interface {
	Token() (string, bool)
	Invalidate()
	Request(ctx context.Context) <-chan session.TokenResult
}

// Recorder receives best-effort audit notifications. Implementations must
// never let a failure escape to the caller.
type Recorder interface {
	RecordUpload(ctx context.Context, token string, fileName string, docType string)
}

// Coordinator owns the task table for one upload batch. All exported
// methods are safe for concurrent use.
type Coordinator struct {
	gateway Gateway
	tokens  TokenSource
	audit   Recorder
	log     logging.Logger

	// onComplete fires exactly once when every task in the table is success.
	onComplete func()
	// onConfigError surfaces a misconfiguration message verbatim.
	onConfigError func(msg string)

	mu              sync.Mutex
	tasks           map[string]*Task
	batchID         string
	currentToken    string
	completionFired bool
	reacquiring     bool
	sweptOnce       bool

	sem chan struct{}
	wg  sync.WaitGroup
}

func NewCoordinator(gateway Gateway, tokens TokenSource, audit Recorder, log logging.Logger) *Coordinator {
	return &Coordinator{
		gateway: gateway,
		tokens:  tokens,
		audit:   audit,
		log:     log,
		tasks:   make(map[string]*Task),
		sem:     make(chan struct{}, maxConcurrentTransfers),
	}
}

// OnComplete registers the batch completion callback.
func (c *Coordinator) OnComplete(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onComplete = fn
}

// OnConfigError registers the callback that surfaces configuration problems
// to the operator.
func (c *Coordinator) OnConfigError(fn func(msg string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConfigError = fn
}

// Add stages a file as a pending task. Adding a name that already exists
// replaces the old task with a fresh pending one, even if the old task had
// finished. Staging a new file re-arms the batch completion signal.
func (c *Coordinator) Add(name string, payload Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[name] = &Task{Name: name, Payload: payload, Status: StatusPending}
	c.completionFired = false
}

// SetDocType declares the document type for a staged task.
func (c *Coordinator) SetDocType(name, docType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tasks[name]; ok {
		t.DocType = docType
	}
}

// Remove unstages a pending task. Tasks that have started are not
// cancellable. Removal drops both the status and the progress entry.
func (c *Coordinator) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[name]
	if !ok || t.Status != StatusPending {
		return false
	}
	delete(c.tasks, name)
	return true
}

// Tasks returns a snapshot of the table, sorted by name.
func (c *Coordinator) Tasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Statuses returns the per-file status table.
func (c *Coordinator) Statuses() map[string]Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Status, len(c.tasks))
	for name, t := range c.tasks {
		out[name] = t.Status
	}
	return out
}

// Progresses returns the per-file progress table. Its key set is always
// identical to the status table's: both views come from the same entry.
func (c *Coordinator) Progresses() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.tasks))
	for name, t := range c.tasks {
		out[name] = t.Progress
	}
	return out
}

// Start validates the batch, waits for a usable token and submits every
// pending or errored task. Validation is all-or-nothing: if any task lacks
// a document type, no task transitions and a ValidationError is returned.
// Uploads themselves run in the background; use Wait to join them.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	var missing []string
	for name, t := range c.tasks {
		if t.DocType == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		c.mu.Unlock()
		sort.Strings(missing)
		return &ValidationError{Missing: missing}
	}
	if len(c.tasks) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.batchID = uuid.NewString()
	// a fresh start gets a fresh 401 sweep allowance
	c.sweptOnce = false
	c.mu.Unlock()

	token, ok := c.tokens.Token()
	if !ok {
		select {
		case res := <-c.tokens.Request(ctx):
			if res.Err != nil {
				return res.Err
			}
			token = res.Token
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	c.currentToken = token
	c.mu.Unlock()

	c.submit(ctx, token, c.restartableNames())
	return nil
}

// Wait blocks until every submitted task (including tasks resubmitted by a
// 401 sweep) has reached a terminal state.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// restartableNames snapshots the tasks eligible for (re)submission. The
// list is an explicit snapshot, taken fresh for every sweep.
func (c *Coordinator) restartableNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var names []string
	for name, t := range c.tasks {
		if t.Status == StatusPending || t.Status == StatusError {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// submit moves the named tasks to uploading and runs them concurrently.
func (c *Coordinator) submit(ctx context.Context, token string, names []string) {
	for _, name := range names {
		c.mu.Lock()
		t, ok := c.tasks[name]
		if !ok || t.Status == StatusUploading || t.Status == StatusSuccess {
			c.mu.Unlock()
			continue
		}
		t.Status = StatusUploading
		t.Progress = 0
		task := *t
		c.mu.Unlock()

		c.wg.Add(1)
		go func(task Task) {
			defer c.wg.Done()
			c.sem <- struct{}{}
			defer func() { <-c.sem }()
			c.runTask(ctx, token, task)
		}(task)
	}
}

// runTask drives one task through the two-phase protocol.
func (c *Coordinator) runTask(ctx context.Context, token string, task Task) {
	up := drive.Upload{
		Name:     task.Name,
		MimeType: task.Payload.MimeType,
		Size:     task.Payload.Size,
		DocType:  task.DocType,
		Category: taxonomy.CategoryOf(task.DocType),
	}

	sessionURL, err := c.gateway.InitiateUpload(ctx, token, up)
	if err != nil {
		c.failTask(ctx, task.Name, token, err)
		return
	}

	err = c.gateway.TransferContent(ctx, sessionURL, task.Payload.MimeType, task.Payload.Data, func(percent int) {
		c.setProgress(task.Name, percent)
	})
	if err != nil {
		c.failTask(ctx, task.Name, token, err)
		return
	}

	c.mu.Lock()
	if t, ok := c.tasks[task.Name]; ok {
		t.Status = StatusSuccess
		t.Progress = 100
	}
	c.mu.Unlock()

	c.log.Info(ctx, "upload finished", "file", task.Name, "batch", c.currentBatchID())

	// Best effort; the recorder swallows its own failures and the task
	// stays successful regardless.
	c.audit.RecordUpload(ctx, token, task.Name, task.DocType)

	c.checkCompletion()
}

func (c *Coordinator) currentBatchID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batchID
}

func (c *Coordinator) setProgress(name string, percent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[name]
	if !ok || t.Status != StatusUploading {
		return
	}
	if percent > t.Progress {
		t.Progress = percent
	}
}

// failTask marks the task as errored and routes the error by kind: 401
// invalidates the shared token and arms the re-acquisition sweep,
// configuration problems are surfaced verbatim, anything else is terminal
// until a manual restart. token is the token the failed attempt ran with.
func (c *Coordinator) failTask(ctx context.Context, name string, token string, err error) {
	c.mu.Lock()
	if t, ok := c.tasks[name]; ok {
		t.Status = StatusError
	}
	onConfigError := c.onConfigError
	c.mu.Unlock()

	var cfgErr *drive.ConfigError
	switch {
	case errors.Is(err, drive.ErrUnauthorized):
		c.log.Warn(ctx, "access token rejected", "file", name)
		c.handleUnauthorized(ctx, name, token)
	case errors.As(err, &cfgErr):
		c.log.Error(ctx, "configuration problem", "file", name, "error", cfgErr.Msg)
		if onConfigError != nil {
			onConfigError(cfgErr.Msg)
		}
	default:
		c.log.Error(ctx, "upload failed", "file", name, "error", err)
	}
}

// handleUnauthorized invalidates the shared token and requests a fresh one
// exactly once, no matter how many tasks hit 401 around the same time. When
// the new token arrives, every task still pending or errored is resubmitted
// in one sweep. Only one sweep runs per Start: if the fresh token is also
// rejected the tasks stay errored for the operator to restart.
//
// A task whose attempt was still in flight with the old token when the
// sweep snapshotted its targets misses that sweep. Its 401 arrives carrying
// a token that is no longer current, so it is resubmitted directly with the
// current one instead of being counted against the sweep allowance.
func (c *Coordinator) handleUnauthorized(ctx context.Context, name string, failedToken string) {
	c.mu.Lock()
	if failedToken != c.currentToken {
		fresh := c.currentToken
		c.mu.Unlock()
		c.log.Info(ctx, "retrying straggler with the current token", "file", name)
		c.submit(ctx, fresh, []string{name})
		return
	}
	if c.reacquiring || c.sweptOnce {
		c.mu.Unlock()
		return
	}
	c.reacquiring = true
	c.mu.Unlock()

	c.tokens.Invalidate()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		var res session.TokenResult
		select {
		case res = <-c.tokens.Request(ctx):
		case <-ctx.Done():
			res = session.TokenResult{Err: ctx.Err()}
		}

		c.mu.Lock()
		c.reacquiring = false
		c.sweptOnce = true
		if res.Err == nil {
			c.currentToken = res.Token
		}
		c.mu.Unlock()

		if res.Err != nil {
			c.log.Error(ctx, "token re-acquisition failed", "error", res.Err)
			return
		}

		c.log.Info(ctx, "token re-acquired, resubmitting unfinished tasks")
		c.submit(ctx, res.Token, c.restartableNames())
	}()
}

// checkCompletion fires the completion callback when, at this instant,
// every task in the table is successful. It fires at most once per batch; a
// batch holding an errored task never completes on its own.
func (c *Coordinator) checkCompletion() {
	c.mu.Lock()
	if c.completionFired || len(c.tasks) == 0 {
		c.mu.Unlock()
		return
	}
	for _, t := range c.tasks {
		if t.Status != StatusSuccess {
			c.mu.Unlock()
			return
		}
	}
	c.completionFired = true
	fn := c.onComplete
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}
