package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

const maxNameAttempts = 100

// FileExporter writes each receipt to its own text file. Existing files are
// never overwritten.
type FileExporter struct {
	dir    string
	logger *zap.Logger
}

func NewFileExporter(dir string, logger *zap.Logger) *FileExporter {
	return &FileExporter{dir: dir, logger: logger}
}

// DefaultDir is the user's Downloads directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

func (e *FileExporter) Name() string {
	return "file"
}

func (e *FileExporter) Export(ctx context.Context, r domain.ReceiptRecord) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}

	base := fmt.Sprintf("Bill_%d", r.Timestamp.UnixMilli())
	content := []byte(FormatText(r))

	for n := 0; n < maxNameAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name := base + ".txt"
		if n > 0 {
			name = fmt.Sprintf("%s-%d.txt", base, n)
		}
		path := filepath.Join(e.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create receipt file: %w", err)
		}

		if _, err := f.Write(content); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("write receipt file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close receipt file: %w", err)
		}

		e.logger.Info("receipt saved", zap.String("receipt_id", r.ID), zap.String("path", path))
		return path, nil
	}

	return "", fmt.Errorf("no free file name for %s in %s", base, e.dir)
}
