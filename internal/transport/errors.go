// Package transport moves recording content between local storage and
// the remote blob store. Its error types let callers tell an
// unreachable server apart from a reachable one that said no; the sync
// and export layers branch on that difference.
package transport

import "fmt"

// TransportError is a connectivity failure during upload: the blob
// store could not be reached at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("blob store unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectedError is a server-side refusal of an upload (validation,
// quota). The attempt is terminal but counts toward retry exhaustion.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("upload rejected by server (status %d): %s", e.StatusCode, e.Body)
}

// OfflineError is a connectivity failure during download: the server
// holding the content could not be reached.
type OfflineError struct {
	Err error
}

func (e *OfflineError) Error() string {
	return fmt.Sprintf("cannot reach server: %v", e.Err)
}

func (e *OfflineError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-success status from a reachable server during
// download. Distinct from OfflineError: the network is fine, the
// content is not coming.
type RemoteError struct {
	StatusCode int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}
