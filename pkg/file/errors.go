package file

import "errors"

var (
	ErrEmptyBatch        = errors.New("cannot archive an empty batch")
	ErrInvalidPath       = errors.New("invalid path") // Prevents path traversal attacks
	ErrObjectExists      = errors.New("archive object already exists")
	ErrObjectConflict    = errors.New("concurrent write to archive object")
	ErrEncodeBatch       = errors.New("failed to encode log events")
	ErrHealthcheckFailed = errors.New("archive healthcheck failed")

	// File system errors
	ErrFailedToWriteFile       = errors.New("failed to write file")
	ErrFailedToCreateDirectory = errors.New("failed to create directory")
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute path")

	// S3-specific errors for proper error classification
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrServiceUnavailable = errors.New("service temporarily unavailable") // Used for throttling and retries

	// Context and cancellation errors
	ErrOperationTimeout  = errors.New("operation timed out")
	ErrOperationCanceled = errors.New("operation canceled")

	// Configuration errors
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
)
