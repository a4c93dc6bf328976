package cli

import (
	"context"
	"fmt"

	"github.com/sahilsync07/vaultify/internal/client/drive"
)

func (a *App) Logs(ctx context.Context) {
	var entries []drive.LogEntry
	err := a.withToken(ctx, func(token string) error {
		var err error
		entries, err = a.recorder.List(ctx, token)
		return err
	})
	if err != nil {
		fmt.Printf("Could not fetch the activity log: %v\n", err)
		return
	}

	if len(entries) == 0 {
		fmt.Println("No activity yet.")
		return
	}
	for _, e := range entries {
		fmt.Printf("  %s  %-20s %-8s %s\n", e.Timestamp, e.User, e.Action, e.Details)
	}
}
