// Package file archives log event batches as NDJSON objects, either in
// Amazon S3 (or any S3-compatible service) or on the local filesystem.
//
// Both archivers implement the relay client contract and share one key
// layout built by ObjectKey:
//
//	<prefix>/YYYY/MM/DD/<first-event-id>.ndjson
//
// The key depends only on the batch, so a batch retried after a lost
// response maps to the same object. S3Archiver uploads with
// If-None-Match: *, LocalArchiver links a fully written temporary file into
// place. In both cases an existing object is reported as
// relay.ErrDuplicateAccepted and the relay treats the batch as delivered.
// A ConditionalRequestConflict from S3 (two writers racing for one key) is
// reported as relay.ErrStaleSequence and retried.
//
// # Usage
//
//	cfg, _ := config.Load[file.S3Config]()
//	sink, err := file.NewS3Archiver(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	r, _ := relay.New[logevent.Event](sink)
//
// For development:
//
//	sink, _ := file.NewLocalArchiver("./var/archive", file.WithLocalPrefix("logs"))
//
// # Error Handling
//
// S3 errors are mapped to the package sentinels (ErrAccessDenied,
// ErrBucketNotFound, ErrServiceUnavailable and so on) and can be checked
// with errors.Is.
package file
