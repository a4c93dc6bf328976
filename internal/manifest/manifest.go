// Package manifest implements the build-time document manifest: a static
// documents.json generated from the vault folder listing, consumed by the
// guest (unauthenticated) views. Listing uses a plain API key rather than a
// user token, so the tool can run unattended.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/sahilsync07/vaultify/internal/filex"
	"github.com/sahilsync07/vaultify/internal/logging"
	"github.com/sahilsync07/vaultify/internal/taxonomy"
)

const Version = "1.0.0"

// Item is one manifest entry.
type Item struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MimeType      string `json:"mimeType"`
	Size          int64  `json:"size"`
	WebViewLink   string `json:"webViewLink"`
	ThumbnailLink string `json:"thumbnailLink"`
	Category      string `json:"category"`
	CreatedTime   string `json:"createdTime"`
}

// Manifest is the documents.json document shape.
type Manifest struct {
	LastUpdated string `json:"lastUpdated"`
	Version     string `json:"version"`
	Items       []Item `json:"items"`
}

// listedFile mirrors the fields requested from the Drive listing. Drive
// serializes size as a string.
type listedFile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MimeType      string `json:"mimeType"`
	Size          int64  `json:"size,string,omitempty"`
	WebViewLink   string `json:"webViewLink"`
	ThumbnailLink string `json:"thumbnailLink"`
	CreatedTime   string `json:"createdTime"`
}

type Syncer struct {
	apiBase    string
	apiKey     string
	folderID   string
	httpClient *http.Client
	log        logging.Logger
	now        func() time.Time
}

func NewSyncer(apiKey, folderID string, log logging.Logger) *Syncer {
	return &Syncer{
		apiBase:    "https://www.googleapis.com/drive/v3/files",
		apiKey:     apiKey,
		folderID:   folderID,
		httpClient: &http.Client{},
		log:        log,
		now:        time.Now,
	}
}

// Sync fetches the folder listing, derives categories and writes the
// manifest to outPath. It returns the number of items written.
func (s *Syncer) Sync(ctx context.Context, outPath string) (int, error) {
	if s.apiKey == "" {
		return 0, fmt.Errorf("no API key configured")
	}
	if s.folderID == "" {
		return 0, fmt.Errorf("no folder id configured")
	}

	files, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}

	m := s.build(files)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode manifest: %w", err)
	}

	if _, err := filex.EnsureDir(filepath.Dir(outPath)); err != nil {
		return 0, err
	}
	if err := filex.WriteFileAtomic(outPath, data, 0o644); err != nil {
		return 0, err
	}

	s.log.Info(ctx, "manifest synced", "items", len(m.Items), "path", outPath)
	return len(m.Items), nil
}

func (s *Syncer) fetch(ctx context.Context) ([]listedFile, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", s.folderID))
	params.Set("fields", "files(id, name, mimeType, size, webViewLink, thumbnailLink, createdTime)")
	params.Set("key", s.apiKey)
	params.Set("pageSize", "1000")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Files []listedFile `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	return out.Files, nil
}

func (s *Syncer) build(files []listedFile) Manifest {
	items := make([]Item, 0, len(files))
	for _, f := range files {
		items = append(items, Item{
			ID:            f.ID,
			Name:          f.Name,
			MimeType:      f.MimeType,
			Size:          f.Size,
			WebViewLink:   f.WebViewLink,
			ThumbnailLink: f.ThumbnailLink,
			Category:      taxonomy.GuessCategory(f.Name),
			CreatedTime:   f.CreatedTime,
		})
	}
	return Manifest{
		LastUpdated: s.now().UTC().Format(time.RFC3339),
		Version:     Version,
		Items:       items,
	}
}
