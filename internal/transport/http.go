package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/emberlab/emgsync/internal/constants"
	"github.com/emberlab/emgsync/internal/httpclient"
	"github.com/emberlab/emgsync/internal/storage"
)

// UploadMetadata travels alongside the file content so the blob store
// can index it.
type UploadMetadata struct {
	RecordingID string
	SessionID   string
	Filename    string
	DataType    string
}

// RemoteLocation is the stable public URL the blob store assigned.
type RemoteLocation struct {
	URL string `json:"url"`
}

// DownloadOutcome carries the HTTP status of a completed download.
type DownloadOutcome struct {
	StatusCode int
}

// BlobTransport is the contract the sync and export layers depend on.
type BlobTransport interface {
	Upload(ctx context.Context, localPath string, meta UploadMetadata) (RemoteLocation, error)
	Download(ctx context.Context, remoteURL, destPath string) (DownloadOutcome, error)
	DeleteLocal(path string) error
}

// HTTPTransport talks to the blob store over HTTP. An optional bearer
// token is attached to every request; the callers never see the
// difference, so auth can be turned on without touching them.
type HTTPTransport struct {
	uploadURL string
	token     string
	client    *httpclient.Client
}

func NewHTTPTransport(uploadURL, token string, client *httpclient.Client) *HTTPTransport {
	if client == nil {
		client = httpclient.NewClient(nil, constants.DefaultRequestGap)
	}
	return &HTTPTransport{
		uploadURL: uploadURL,
		token:     token,
		client:    client,
	}
}

// Upload streams the file at localPath to the blob store as a
// multipart POST and returns the URL the server assigned. Retrying is
// the caller's job; one call is one attempt.
func (t *HTTPTransport) Upload(ctx context.Context, localPath string, meta UploadMetadata) (RemoteLocation, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return RemoteLocation{}, fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadBody(mw, f, meta)
		mw.Close()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.uploadURL, pr)
	if err != nil {
		return RemoteLocation{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	t.authorize(req)

	resp, err := t.client.GetUnderlyingClient().Do(req)
	if err != nil {
		return RemoteLocation{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return RemoteLocation{}, &RejectedError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var loc RemoteLocation
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return RemoteLocation{}, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if loc.URL == "" {
		return RemoteLocation{}, fmt.Errorf("upload response missing url")
	}
	return loc, nil
}

func writeUploadBody(mw *multipart.Writer, f *os.File, meta UploadMetadata) error {
	fields := map[string]string{
		"recording_id": meta.RecordingID,
		"session_id":   meta.SessionID,
		"data_type":    meta.DataType,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return err
		}
	}

	filename := meta.Filename
	if filename == "" {
		filename = filepath.Base(f.Name())
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

// Download streams remoteURL into destPath. The body is copied straight
// to disk; it is never held in memory whole. A reachable server with a
// non-success status yields a RemoteError and no file at destPath; an
// unreachable server yields an OfflineError.
func (t *HTTPTransport) Download(ctx context.Context, remoteURL, destPath string) (DownloadOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return DownloadOutcome{}, &OfflineError{Err: err}
	}
	t.authorize(req)

	resp, err := t.client.Do(ctx, req)
	if err != nil {
		return DownloadOutcome{}, &OfflineError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return DownloadOutcome{StatusCode: resp.StatusCode}, &RemoteError{StatusCode: resp.StatusCode}
	}

	f, err := storage.CreateFile(destPath)
	if err != nil {
		return DownloadOutcome{StatusCode: resp.StatusCode}, fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	_, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = storage.RemoveIfExists(destPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return DownloadOutcome{StatusCode: resp.StatusCode}, &OfflineError{Err: copyErr}
	}

	return DownloadOutcome{StatusCode: resp.StatusCode}, nil
}

// DeleteLocal removes a local file; an already-absent path is success.
func (t *HTTPTransport) DeleteLocal(path string) error {
	return storage.RemoveIfExists(path)
}

func (t *HTTPTransport) authorize(req *http.Request) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
}
