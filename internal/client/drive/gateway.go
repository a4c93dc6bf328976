// Package drive is a stateless wrapper over the Google Drive v3 REST
// endpoints used by the vault: folder listing, resumable uploads and the
// audit-log object. It translates HTTP outcomes into the typed errors in
// errors.go and holds no state beyond configuration.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sahilsync07/vaultify/internal/logging"
)

const (
	defaultAPIBase    = "https://www.googleapis.com/drive/v3/files"
	defaultUploadBase = "https://www.googleapis.com/upload/drive/v3/files"

	// Folder id value left behind by an unconfigured deployment.
	placeholderFolderID = "undefined"

	listFields = "files(id, name, mimeType, webViewLink, thumbnailLink, createdTime, properties, size)"
)

// File is the slice of Drive file metadata the vault cares about. The
// Properties bag carries the declared document type and category stashed at
// upload time; Drive has no native field for them.
type File struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	MimeType      string            `json:"mimeType"`
	WebViewLink   string            `json:"webViewLink,omitempty"`
	ThumbnailLink string            `json:"thumbnailLink,omitempty"`
	CreatedTime   string            `json:"createdTime,omitempty"`
	Size          int64             `json:"size,string,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
}

// Upload describes one file to be sent to Drive.
type Upload struct {
	Name     string
	MimeType string
	Size     int64
	DocType  string
	Category string
}

type Gateway struct {
	folderID   string
	apiBase    string
	uploadBase string
	httpClient *http.Client
	log        logging.Logger
}

func NewGateway(folderID string, log logging.Logger) *Gateway {
	return &Gateway{
		folderID:   folderID,
		apiBase:    defaultAPIBase,
		uploadBase: defaultUploadBase,
		httpClient: &http.Client{},
		log:        log,
	}
}

// checkFolderID validates the destination folder configuration before any
// remote call that depends on it.
func (g *Gateway) checkFolderID() error {
	if g.folderID == "" || g.folderID == placeholderFolderID {
		return &ConfigError{Msg: "Google Drive folder id is missing. Please configure drive_folder_id."}
	}
	return nil
}

// ListFiles returns the files in the vault folder. extraQuery, when not
// empty, is ANDed onto the folder query (Drive query syntax).
func (g *Gateway) ListFiles(ctx context.Context, token string, extraQuery string) ([]File, error) {
	if err := g.checkFolderID(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", g.folderID)
	if extraQuery != "" {
		query = query + " and " + extraQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", listFields)
	params.Set("pageSize", "1000")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Op: "list files", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "list files", Err: err}
	}
	defer resp.Body.Close()

	if err := classifyResponse("list files", resp); err != nil {
		return nil, err
	}

	var out struct {
		Files []File `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &RequestError{Op: "list files", Err: err}
	}
	return out.Files, nil
}

// InitiateUpload starts a resumable upload: it POSTs the file metadata and
// declares the content type and total byte length, and returns the
// short-lived session URL for the byte transfer.
func (g *Gateway) InitiateUpload(ctx context.Context, token string, up Upload) (string, error) {
	if err := g.checkFolderID(); err != nil {
		return "", err
	}

	mimeType := up.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	meta := map[string]any{
		"name":     up.Name,
		"mimeType": mimeType,
		"parents":  []string{g.folderID},
		"properties": map[string]string{
			"docType":  up.DocType,
			"category": up.Category,
		},
	}
	body, err := json.Marshal(meta)
	if err != nil {
		return "", &RequestError{Op: "initiate upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.uploadBase+"?uploadType=resumable", bytes.NewReader(body))
	if err != nil {
		return "", &RequestError{Op: "initiate upload", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Upload-Content-Type", mimeType)
	req.Header.Set("X-Upload-Content-Length", fmt.Sprintf("%d", up.Size))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &RequestError{Op: "initiate upload", Err: err}
	}
	defer resp.Body.Close()

	if err := classifyResponse("initiate upload", resp); err != nil {
		return "", err
	}

	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", &RequestError{Op: "initiate upload", Err: fmt.Errorf("no upload session URL returned")}
	}
	return sessionURL, nil
}

// TransferContent PUTs the file bytes to the session URL returned by
// InitiateUpload. onProgress, when not nil, receives the transfer progress
// as a non-decreasing integer percentage; it is display-only and best
// effort. The session URL is pre-authorized, no token is needed.
func (g *Gateway) TransferContent(ctx context.Context, sessionURL string, mimeType string, payload []byte, onProgress func(percent int)) error {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var body io.Reader = bytes.NewReader(payload)
	if onProgress != nil && len(payload) > 0 {
		body = &progressReader{r: body, total: int64(len(payload)), report: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, body)
	if err != nil {
		return &RequestError{Op: "transfer content", Err: err}
	}
	req.Header.Set("Content-Type", mimeType)
	req.ContentLength = int64(len(payload))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: "transfer content", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return classifyResponse("transfer content", resp)
	}
	return nil
}

// DownloadFile fetches the raw content of a file together with its MIME type.
func (g *Gateway) DownloadFile(ctx context.Context, token string, fileID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase+"/"+url.PathEscape(fileID)+"?alt=media", nil)
	if err != nil {
		return nil, "", &RequestError{Op: "download file", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "", &RequestError{Op: "download file", Err: err}
	}
	defer resp.Body.Close()

	if err := classifyResponse("download file", resp); err != nil {
		return nil, "", err
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &RequestError{Op: "download file", Err: err}
	}
	return content, resp.Header.Get("Content-Type"), nil
}

// progressReader reports read progress as an integer percentage. It only
// reports when the percentage increases, so callbacks are monotonic.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	last   int
	report func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		percent := int(p.sent * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		if percent > p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}
