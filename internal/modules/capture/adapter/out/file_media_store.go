package out

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	trackingdomain "worklens/internal/modules/tracking/domain"
	"worklens/internal/platform/id"
)

// FileMediaStore writes capture bytes as PNG files under the data
// directory, one subdirectory per modality.
type FileMediaStore struct {
	baseDir string
	idGen   id.Generator
}

func NewFileMediaStore(baseDir string, idGen id.Generator) (*FileMediaStore, error) {
	for _, sub := range []string{"screenshots", "photos"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0o700); err != nil {
			return nil, fmt.Errorf("create media dir: %w", err)
		}
	}
	return &FileMediaStore{baseDir: baseDir, idGen: idGen}, nil
}

func (s *FileMediaStore) SaveScreenshot(ctx context.Context, data []byte, capturedAt time.Time) (trackingdomain.MediaRef, error) {
	return s.save("screenshots", data, capturedAt)
}

func (s *FileMediaStore) SavePhoto(ctx context.Context, data []byte, capturedAt time.Time) (trackingdomain.MediaRef, error) {
	return s.save("photos", data, capturedAt)
}

func (s *FileMediaStore) save(sub string, data []byte, capturedAt time.Time) (trackingdomain.MediaRef, error) {
	mediaID := s.idGen.New()
	path := filepath.Join(s.baseDir, sub, fmt.Sprintf("%d-%s.png", capturedAt.Unix(), mediaID))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return trackingdomain.MediaRef{}, fmt.Errorf("write media file: %w", err)
	}
	digest := sha256.Sum256(data)
	return trackingdomain.MediaRef{
		ID:         mediaID,
		SHA256:     hex.EncodeToString(digest[:]),
		Path:       path,
		CapturedAt: capturedAt,
	}, nil
}
