// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort          = "8080"
	DefaultDBPath        = "emgsync.db"
	DefaultBlobURL       = "http://127.0.0.1:9000/blobs"
	DefaultConcurrency   = 2
	DefaultSyncInterval  = 5 * time.Second
	DefaultHTTPTimeout   = 2 * time.Minute
	DefaultUploadRetries = 3
	DefaultRetryBase     = 1 * time.Second
	DefaultRequestGap    = 100 * time.Millisecond
)

// File Extensions
const (
	ExtCSV = ".csv"
	ExtZIP = ".zip"
)

// MIME Types
const (
	MimeTypeZIP = "application/zip"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)
