package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/browser"
	"github.com/sahilsync07/vaultify/internal/client/drive"
)

func (a *App) List(ctx context.Context, category string) {
	var files []drive.File
	err := a.withToken(ctx, func(token string) error {
		var err error
		files, err = a.gateway.ListFiles(ctx, token, "")
		return err
	})
	if err != nil {
		fmt.Printf("Listing failed: %v\n", err)
		return
	}

	if category != "" {
		filtered := files[:0]
		for _, f := range files {
			if strings.EqualFold(f.Properties["category"], category) {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}

	a.renderFiles(files)
}

func (a *App) Search(ctx context.Context, text string) {
	if text == "" {
		fmt.Println("Usage: search <text>")
		return
	}

	query := fmt.Sprintf("name contains '%s'", strings.ReplaceAll(text, "'", "\\'"))
	var files []drive.File
	err := a.withToken(ctx, func(token string) error {
		var err error
		files, err = a.gateway.ListFiles(ctx, token, query)
		return err
	})
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		return
	}

	a.renderFiles(files)
}

func (a *App) renderFiles(files []drive.File) {
	if len(files) == 0 {
		fmt.Println("No documents found.")
		return
	}
	for _, f := range files {
		docType := f.Properties["docType"]
		if docType == "" {
			docType = "-"
		}
		fmt.Printf("  %-40s %-22s %s\n", f.Name, docType, f.CreatedTime)
	}
	fmt.Printf("%d document(s)\n", len(files))
}

// findFile resolves a user-supplied name or id against the vault listing.
func (a *App) findFile(ctx context.Context, ref string) (*drive.File, error) {
	var found *drive.File
	err := a.withToken(ctx, func(token string) error {
		files, err := a.gateway.ListFiles(ctx, token, "")
		if err != nil {
			return err
		}
		for i := range files {
			if files[i].ID == ref || files[i].Name == ref {
				found = &files[i]
				return nil
			}
		}
		return fmt.Errorf("no document named %q in the vault", ref)
	})
	return found, err
}

func (a *App) Open(ctx context.Context, ref string) {
	if ref == "" {
		fmt.Println("Usage: open <name|id>")
		return
	}

	f, err := a.findFile(ctx, ref)
	if err != nil {
		fmt.Printf("Open failed: %v\n", err)
		return
	}
	if f.WebViewLink == "" {
		fmt.Println("This document has no preview link.")
		return
	}
	if err := browser.OpenURL(f.WebViewLink); err != nil {
		fmt.Printf("Could not open a browser, preview link:\n%s\n", f.WebViewLink)
	}
}

func (a *App) Cat(ctx context.Context, ref string) {
	if ref == "" {
		fmt.Println("Usage: cat <name|id>")
		return
	}

	f, err := a.findFile(ctx, ref)
	if err != nil {
		fmt.Printf("Preview failed: %v\n", err)
		return
	}

	var content []byte
	var mimeType string
	err = a.withToken(ctx, func(token string) error {
		var err error
		content, mimeType, err = a.gateway.DownloadFile(ctx, token, f.ID)
		return err
	})
	if err != nil {
		fmt.Printf("Preview failed: %v\n", err)
		return
	}

	if !strings.HasPrefix(mimeType, "text/") && !strings.Contains(mimeType, "json") {
		fmt.Printf("%s is %s; use 'open %s' for a browser preview.\n", f.Name, mimeType, f.Name)
		return
	}
	fmt.Println(string(content))
}
