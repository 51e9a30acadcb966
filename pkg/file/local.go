package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// LocalArchiver writes every batch as one NDJSON file below baseDir, using
// the same layout as S3Archiver. Files appear atomically and are never
// overwritten.
type LocalArchiver struct {
	baseDir string // Absolute path, all files are stored within this directory
	prefix  string
}

// LocalOption defines a function that configures LocalArchiver.
type LocalOption func(*LocalArchiver)

// WithLocalPrefix sets the key prefix below baseDir.
func WithLocalPrefix(prefix string) LocalOption {
	return func(a *LocalArchiver) {
		a.prefix = prefix
	}
}

// NewLocalArchiver creates a relay client archiving to baseDir. The directory
// is resolved to an absolute path and created if it doesn't exist.
func NewLocalArchiver(baseDir string, opts ...LocalOption) (*LocalArchiver, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve base directory: %v", ErrFailedToGetAbsolutePath, err)
	}

	if err := os.MkdirAll(absBaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	a := &LocalArchiver{baseDir: absBaseDir}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Submit writes batch to its archive path. A file that already exists is
// reported as relay.ErrDuplicateAccepted.
func (a *LocalArchiver) Submit(ctx context.Context, batch []logevent.Event) error {
	key, err := ObjectKey(a.prefix, batch)
	if err != nil {
		return err
	}
	body, err := encodeBatch(batch)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrOperationCanceled, err)
	}

	dst := filepath.Join(a.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".batch-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	// Link fails instead of replacing an existing file.
	if err := os.Link(tmp.Name(), dst); err != nil {
		if errors.Is(err, os.ErrExist) {
			return errors.Join(relay.ErrDuplicateAccepted, fmt.Errorf("%w: %s", ErrObjectExists, key))
		}
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	return nil
}

// Path returns the absolute file path for an archive key.
func (a *LocalArchiver) Path(key string) string {
	return filepath.Join(a.baseDir, filepath.FromSlash(key))
}

// Healthcheck returns a readiness check checking that the base directory is usable.
func (a *LocalArchiver) Healthcheck() func(context.Context) error {
	return func(context.Context) error {
		info, err := os.Stat(a.baseDir)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrHealthcheckFailed, a.baseDir)
		}
		return nil
	}
}
