package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Watch stages every file that appears in dir until the user presses Enter.
// Staged files still need a document type and an explicit 'start'.
func (a *App) Watch(ctx context.Context, dir string) {
	if dir == "" {
		fmt.Println("Usage: watch <dir>")
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		fmt.Printf("%s is not a directory\n", dir)
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Printf("Cannot watch %s: %v\n", dir, err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		fmt.Printf("Cannot watch %s: %v\n", dir, err)
		return
	}

	fmt.Printf("Watching %s, press Enter to stop.\n", dir)

	stop := make(chan struct{})
	go func() {
		a.reader.ReadString('\n')
		close(stop)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			fmt.Println("Stopped watching.")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			a.stageFile(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			a.log.Warn(ctx, "watch error", "error", err)
		}
	}
}
