package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sahilsync07/vaultify/internal/client/upload"
	"github.com/sahilsync07/vaultify/internal/taxonomy"
)

// Upload stages local files and asks for a document type for each one.
// Nothing is transferred until StartUploads.
func (a *App) Upload(paths []string) {
	if len(paths) == 0 {
		fmt.Println("Usage: upload <path> [path ...]")
		return
	}

	for _, path := range paths {
		if !a.stageFile(path) {
			continue
		}
		name := filepath.Base(path)
		docType, err := a.pickDocType(name)
		if err != nil {
			fmt.Printf("No document type set for %s, pick one later with 'type %s'\n", name, name)
			continue
		}
		a.coordinator.SetDocType(name, docType)
	}

	a.Staged()
}

// stageFile reads a local file into the coordinator. Returns false when the
// file could not be read.
func (a *App) stageFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Cannot read %s: %v\n", path, err)
		return false
	}

	name := filepath.Base(path)
	a.coordinator.Add(name, upload.Payload{
		Data:     data,
		MimeType: detectMimeType(path),
		Size:     int64(len(data)),
	})
	fmt.Printf("Staged %s (%d bytes)\n", name, len(data))
	return true
}

func detectMimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// pickDocType walks the user through category then document type.
func (a *App) pickDocType(name string) (string, error) {
	category, err := GetChoice(a.reader, fmt.Sprintf("Category for %s:", name), taxonomy.Categories(), os.Stdout)
	if err != nil {
		return "", err
	}
	return GetChoice(a.reader, "Document type:", taxonomy.Types(category), os.Stdout)
}

func (a *App) Staged() {
	tasks := a.coordinator.Tasks()
	if len(tasks) == 0 {
		fmt.Println("Nothing staged. Use 'upload <path>' first.")
		return
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	for _, t := range tasks {
		docType := t.DocType
		if docType == "" {
			docType = "(no type)"
		}
		switch t.Status {
		case upload.StatusUploading:
			fmt.Printf("  %-40s %-22s %s %d%%\n", t.Name, docType, t.Status, t.Progress)
		default:
			fmt.Printf("  %-40s %-22s %s\n", t.Name, docType, t.Status)
		}
	}
}

func (a *App) SetType(name string) {
	if name == "" {
		fmt.Println("Usage: type <name>")
		return
	}
	if _, ok := a.coordinator.Statuses()[name]; !ok {
		fmt.Printf("%s is not staged\n", name)
		return
	}

	docType, err := a.pickDocType(name)
	if err != nil {
		fmt.Printf("Type not changed: %v\n", err)
		return
	}
	a.coordinator.SetDocType(name, docType)
	fmt.Printf("%s -> %s\n", name, docType)
}

func (a *App) Unstage(name string) {
	if name == "" {
		fmt.Println("Usage: rm <name>")
		return
	}
	if a.coordinator.Remove(name) {
		fmt.Printf("Unstaged %s\n", name)
		return
	}
	fmt.Printf("%s cannot be removed (not staged, or already uploading)\n", name)
}

// StartUploads kicks off the staged batch and renders progress until every
// task reaches a terminal state.
func (a *App) StartUploads(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Println("Sign in first with 'login'.")
		return
	}

	if err := a.coordinator.Start(ctx); err != nil {
		var verr *upload.ValidationError
		if errors.As(err, &verr) {
			fmt.Println("Every staged file needs a document type before uploading:")
			for _, name := range verr.Missing {
				fmt.Printf("  type %s\n", name)
			}
			return
		}
		fmt.Printf("Upload failed to start: %v\n", err)
		return
	}

	done := make(chan struct{})
	go func() {
		a.coordinator.Wait()
		close(done)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			a.Staged()
			return
		case <-ticker.C:
			a.renderProgress()
		}
	}
}

func (a *App) renderProgress() {
	statuses := a.coordinator.Statuses()
	progresses := a.coordinator.Progresses()

	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if statuses[name] == upload.StatusUploading {
			fmt.Printf("  %s... %d%%\n", name, progresses[name])
		}
	}
}
