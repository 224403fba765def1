// Package terminology uploads a custom terminology CSV to the translation
// backend before any translation call is made.
package terminology

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"pptx-translator/internal/logging"
	"pptx-translator/internal/services"
	"pptx-translator/internal/translate"
)

// Name is the fixed identifier the terminology is uploaded under. Each
// import overwrites the previous table.
const Name = "pptx-translator-terminology"

const lockRetryDelay = 250 * time.Millisecond

// Loader imports terminology and holds the host-wide lock on it until
// Release is called.
type Loader struct {
	importer translate.TerminologyImporter
	lockPath string
	logger   *slog.Logger

	lock   *flock.Flock
	digest string
}

// NewLoader builds a loader. lockPath may be empty to skip locking.
func NewLoader(importer translate.TerminologyImporter, lockPath string, logger *slog.Logger) *Loader {
	return &Loader{
		importer: importer,
		lockPath: lockPath,
		logger:   logging.NewComponentLogger(logger, "terminology"),
	}
}

// Import validates the CSV at path, takes the terminology lock and uploads
// the file under Name with the OVERWRITE strategy. It returns the
// terminology names later translation requests must reference.
func (l *Loader) Import(ctx context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		marker := services.ErrExternal
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "terminology", "read", fmt.Sprintf("read %s", path), err)
	}
	glossary, err := translate.ParseGlossary(data)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "terminology", "parse", filepath.Base(path), err)
	}
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}

	err = l.importer.ImportTerminology(ctx, translate.Terminology{
		Name:          Name,
		Data:          data,
		Format:        translate.FormatCSV,
		MergeStrategy: translate.MergeOverwrite,
	})
	if err != nil {
		l.Release()
		if errors.Is(err, services.ErrExternal) || errors.Is(err, services.ErrTimeout) ||
			errors.Is(err, services.ErrConfiguration) || errors.Is(err, services.ErrValidation) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrExternal, "terminology", "import", "upload rejected", err)
	}
	l.digest = Digest(data)
	logging.WithContext(ctx, l.logger).Info("terminology imported",
		logging.String(logging.FieldEventType, "terminology_imported"),
		logging.String("name", Name),
		logging.String("file", path),
		logging.String("digest", l.digest),
		logging.Int("terms", glossary.Len()),
		logging.Any("languages", glossary.Languages()),
	)
	return []string{Name}, nil
}

// Digest returns the content fingerprint of the last imported file, or ""
// before a successful Import.
func (l *Loader) Digest() string { return l.digest }

// Digest fingerprints terminology CSV bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (l *Loader) acquire(ctx context.Context) error {
	if l.lockPath == "" || l.lock != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.lockPath), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "terminology", "lock", "create lock directory", err)
	}
	lock := flock.New(l.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrExternal, "terminology", "lock", "acquire terminology lock", err)
	}
	if !ok {
		logging.WithContext(ctx, l.logger).Info("waiting for another run to release the terminology lock",
			logging.String("lock", l.lockPath))
		ok, err = lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil || !ok {
			return services.Wrap(services.ErrTimeout, "terminology", "lock", "terminology lock not acquired", err)
		}
	}
	l.lock = lock
	return nil
}

// Release drops the terminology lock. It is safe to call more than once.
func (l *Loader) Release() {
	if l.lock == nil {
		return
	}
	if err := l.lock.Unlock(); err != nil {
		l.logger.Warn("failed to release terminology lock",
			logging.String(logging.FieldEventType, "terminology_unlock_failed"),
			logging.Error(err),
			logging.Hint("remove "+l.lockPath+" if no other run is active"),
		)
	}
	l.lock = nil
}
