package views

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"teleop-logger/models"
	"teleop-logger/utils"
)

// ImageStore saves frames as individual JPEG files in one directory.
type ImageStore struct {
	dir string
}

// NewImageStore creates dir on demand.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// Write saves f under a name derived from ts and returns the path as it is
// recorded in the driving log.
func (s *ImageStore) Write(f models.Frame, ts time.Time) (string, error) {
	if f.Empty() {
		return "", fmt.Errorf("save frame %d: no image data", f.Seq)
	}
	path := filepath.Join(s.dir, utils.ImageName(ts))
	if err := os.WriteFile(path, f.Data, 0644); err != nil {
		return "", fmt.Errorf("save frame %d: %w", f.Seq, err)
	}
	return path, nil
}

