package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sahilsync07/vaultify/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, folderID string, api, upload *httptest.Server) *Gateway {
	t.Helper()
	g := NewGateway(folderID, logging.NewDefault("error"))
	if api != nil {
		g.apiBase = api.URL
	}
	if upload != nil {
		g.uploadBase = upload.URL
	}
	return g
}

func TestListFiles_MissingFolderID_ReturnsConfigError(t *testing.T) {
	for _, folderID := range []string{"", "undefined"} {
		g := newTestGateway(t, folderID, nil, nil)

		_, err := g.ListFiles(context.Background(), "tok", "")

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr, "folder id %q", folderID)
		assert.Contains(t, cfgErr.Error(), "folder id")
	}
}

func TestListFiles_BuildsQueryAndParsesResult(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "1000", r.URL.Query().Get("pageSize"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]any{
				{"id": "f1", "name": "pan.pdf", "mimeType": "application/pdf", "size": "123",
					"properties": map[string]string{"docType": "PAN Card", "category": "Identity Proofs"}},
				{"id": "f2", "name": "deed.pdf", "mimeType": "application/pdf"},
			},
		})
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", srv, nil)

	files, err := g.ListFiles(context.Background(), "tok-abc", "name = 'pan.pdf'")
	require.NoError(t, err)

	assert.Equal(t, "'folder-1' in parents and trashed = false and name = 'pan.pdf'", gotQuery)
	assert.Equal(t, "Bearer tok-abc", gotAuth)

	require.Len(t, files, 2)
	assert.Equal(t, "f1", files[0].ID)
	assert.Equal(t, int64(123), files[0].Size)
	assert.Equal(t, "PAN Card", files[0].Properties["docType"])
	assert.Equal(t, int64(0), files[1].Size)
}

func TestListFiles_EmptyFolder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", srv, nil)

	files, err := g.ListFiles(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListFiles_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"Invalid Credentials"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", srv, nil)

	_, err := g.ListFiles(context.Background(), "expired", "")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestListFiles_ServerError_ReturnsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", srv, nil)

	_, err := g.ListFiles(context.Background(), "tok", "")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestInitiateUpload_ReturnsSessionURL(t *testing.T) {
	var gotMeta map[string]any
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "resumable", r.URL.Query().Get("uploadType"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMeta))

		w.Header().Set("Location", "http://session.example/upload-1")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", nil, srv)

	sessionURL, err := g.InitiateUpload(context.Background(), "tok", Upload{
		Name:     "pan.pdf",
		MimeType: "application/pdf",
		Size:     2048,
		DocType:  "PAN Card",
		Category: "Identity Proofs",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://session.example/upload-1", sessionURL)

	assert.Equal(t, "application/pdf", gotHeaders.Get("X-Upload-Content-Type"))
	assert.Equal(t, "2048", gotHeaders.Get("X-Upload-Content-Length"))
	assert.Equal(t, "Bearer tok", gotHeaders.Get("Authorization"))

	assert.Equal(t, "pan.pdf", gotMeta["name"])
	assert.Equal(t, []any{"folder-1"}, gotMeta["parents"])
	props, ok := gotMeta["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PAN Card", props["docType"])
	assert.Equal(t, "Identity Proofs", props["category"])
}

func TestInitiateUpload_MissingLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", nil, srv)

	_, err := g.InitiateUpload(context.Background(), "tok", Upload{Name: "a.txt"})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestInitiateUpload_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", nil, srv)

	_, err := g.InitiateUpload(context.Background(), "stale", Upload{Name: "a.txt"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestInitiateUpload_MissingFolderID(t *testing.T) {
	g := newTestGateway(t, "", nil, nil)

	_, err := g.InitiateUpload(context.Background(), "tok", Upload{Name: "a.txt"})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestTransferContent_SuccessReportsMonotonicProgress(t *testing.T) {
	payload := make([]byte, 64*1024)
	var received int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		buf := make([]byte, 4096)
		for {
			n, err := r.Body.Read(buf)
			received += n
			if err != nil {
				break
			}
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", nil, nil)

	var reports []int
	err := g.TransferContent(context.Background(), srv.URL, "application/pdf", payload, func(p int) {
		reports = append(reports, p)
	})
	require.NoError(t, err)
	assert.Equal(t, len(payload), received)

	require.NotEmpty(t, reports)
	assert.Equal(t, 100, reports[len(reports)-1])
	for i := 1; i < len(reports); i++ {
		assert.Greater(t, reports[i], reports[i-1])
	}
}

func TestTransferContent_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":503}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", nil, nil)

	err := g.TransferContent(context.Background(), srv.URL, "", []byte("x"), nil)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusServiceUnavailable, reqErr.StatusCode)
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/f1", r.URL.Path)
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "hello")
	}))
	defer srv.Close()

	g := newTestGateway(t, "folder-1", srv, nil)

	content, mimeType, err := g.DownloadFile(context.Background(), "tok", "f1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
	assert.Equal(t, "text/plain", mimeType)
}

func TestConfigError_IsNotUnauthorized(t *testing.T) {
	err := error(&ConfigError{Msg: "folder id missing"})
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
