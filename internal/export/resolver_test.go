package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/emberlab/emgsync/internal/domain"
	"github.com/emberlab/emgsync/internal/transport"
)

// fakeTransport scripts download outcomes; Upload is unused by the resolver.
type fakeTransport struct {
	content       string
	downloadErr   error
	statusCode    int
	downloadCalls int
	skipWrite     bool // simulate success without materializing the file
}

func (f *fakeTransport) Upload(ctx context.Context, localPath string, meta transport.UploadMetadata) (transport.RemoteLocation, error) {
	return transport.RemoteLocation{}, errors.New("not used")
}

func (f *fakeTransport) Download(ctx context.Context, remoteURL, destPath string) (transport.DownloadOutcome, error) {
	f.downloadCalls++
	if f.downloadErr != nil {
		return transport.DownloadOutcome{StatusCode: f.statusCode}, f.downloadErr
	}
	if !f.skipWrite {
		if err := os.WriteFile(destPath, []byte(f.content), 0644); err != nil {
			return transport.DownloadOutcome{}, err
		}
	}
	return transport.DownloadOutcome{StatusCode: 200}, nil
}

func (f *fakeTransport) DeleteLocal(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}

func testRecording(localPath, remoteURL *string) *domain.Recording {
	return &domain.Recording{
		ID:        "rec-1",
		SessionID: "sess-1",
		Filename:  "x.csv",
		DataType:  domain.DataTypeRaw,
		LocalPath: localPath,
		RemoteURL: remoteURL,
	}
}

func assertScratchEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected scratch dir empty, found %d entries", len(entries))
	}
}

func TestResolver_LocalContentWins(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "x.csv")
	if err := os.WriteFile(local, []byte("1,2,3\n"), 0644); err != nil {
		t.Fatalf("failed to write local file: %v", err)
	}

	ft := &fakeTransport{content: "remote content"}
	scratch := t.TempDir()
	r := NewResolver(ft, scratch, nil)

	got := r.Resolve(context.Background(), testRecording(&local, strPtr("https://host/x.csv")))
	if got != "1,2,3\n" {
		t.Errorf("Expected local content, got %q", got)
	}
	if ft.downloadCalls != 0 {
		t.Errorf("Expected no download when local copy exists, got %d", ft.downloadCalls)
	}
}

func TestResolver_MissingLocalFallsBackToRemote(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.csv")

	ft := &fakeTransport{content: "0.5,0.6\n"}
	scratch := t.TempDir()
	r := NewResolver(ft, scratch, nil)

	got := r.Resolve(context.Background(), testRecording(&missing, strPtr("https://host/x.csv")))
	if got != "0.5,0.6\n" {
		t.Errorf("Expected downloaded content, got %q", got)
	}
	assertScratchEmpty(t, scratch)
}

func TestResolver_OfflinePlaceholder(t *testing.T) {
	ft := &fakeTransport{downloadErr: &transport.OfflineError{Err: errors.New("no route")}}
	scratch := t.TempDir()
	r := NewResolver(ft, scratch, nil)

	got := r.Resolve(context.Background(), testRecording(nil, strPtr("https://host/x.csv")))
	if got != PlaceholderOffline {
		t.Errorf("Expected offline placeholder, got %q", got)
	}
	assertScratchEmpty(t, scratch)
}

func TestResolver_RemoteErrorPlaceholder(t *testing.T) {
	ft := &fakeTransport{downloadErr: &transport.RemoteError{StatusCode: 404}, statusCode: 404}
	scratch := t.TempDir()
	r := NewResolver(ft, scratch, nil)

	got := r.Resolve(context.Background(), testRecording(nil, strPtr("https://host/x.csv")))
	if got != PlaceholderRemoteError {
		t.Errorf("Expected remote-error placeholder, got %q", got)
	}
	assertScratchEmpty(t, scratch)
}

func TestResolver_NoLocationsPlaceholder(t *testing.T) {
	ft := &fakeTransport{}
	r := NewResolver(ft, t.TempDir(), nil)

	got := r.Resolve(context.Background(), testRecording(nil, nil))
	if got != PlaceholderNoData {
		t.Errorf("Expected no-data placeholder, got %q", got)
	}
	if ft.downloadCalls != 0 {
		t.Error("Expected no download without a remote URL")
	}

	// Local path set but file missing, and no remote: still no-data.
	missing := filepath.Join(t.TempDir(), "gone.csv")
	got = r.Resolve(context.Background(), testRecording(&missing, nil))
	if got != PlaceholderNoData {
		t.Errorf("Expected no-data placeholder, got %q", got)
	}
}

func TestResolver_UnreadableDownloadDegrades(t *testing.T) {
	// Download reports success but the scratch file never materialized;
	// resolution must still return a defined string.
	ft := &fakeTransport{skipWrite: true}
	scratch := t.TempDir()
	r := NewResolver(ft, scratch, nil)

	got := r.Resolve(context.Background(), testRecording(nil, strPtr("https://host/x.csv")))
	if got != PlaceholderRemoteError {
		t.Errorf("Expected remote-error placeholder, got %q", got)
	}
	assertScratchEmpty(t, scratch)
}
