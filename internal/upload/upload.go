package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyFile is returned for a zero-length upload.
var ErrEmptyFile = errors.New("upload: empty file")

// Saver writes uploaded images into Dir.
type Saver struct {
	Dir string
	Now func() time.Time
}

func NewSaver(dir string) *Saver {
	return &Saver{Dir: dir, Now: time.Now}
}

// FileName derives a stored name from the upload time and the original
// extension: <unix-millis>-<8 hex><.ext>.
func (s *Saver) FileName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", s.Now().UnixMilli(), suffix, ext)
}

// Save copies the multipart file to disk and returns the stored name.
func (s *Saver) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size == 0 {
		return "", ErrEmptyFile
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := s.FileName(header.Filename)
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return name, nil
}
