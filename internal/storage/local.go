package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// LocalStore keeps files at <root>/<ownerID>/<name>.
type LocalStore struct {
	root    string
	maxSize int64
}

// NewLocalStore creates a store rooted at root. A non-positive maxSize
// means DefaultMaxSize.
func NewLocalStore(root string, maxSize int64) *LocalStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &LocalStore{root: root, maxSize: maxSize}
}

func (s *LocalStore) ownerDir(ownerID int64) string {
	return filepath.Join(s.root, ownerKey(ownerID))
}

// Put streams body into a temporary file and renames it into place once
// the size ceiling is known to hold. Nothing is left behind on failure.
func (s *LocalStore) Put(ctx context.Context, ownerID int64, name, contentType string, body io.Reader) (*models.AudioFile, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateContentType(contentType); err != nil {
		return nil, err
	}

	dir := s.ownerDir(ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			logger.Log.Warnw("failed to remove temporary upload", "path", tmpName, "error", rmErr)
		}
	}

	n, err := io.Copy(tmp, io.LimitReader(newContextReader(ctx, io.NopCloser(body)), s.maxSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return nil, err
	}
	if n > s.maxSize {
		cleanup()
		return nil, ErrPayloadTooLarge
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmpName, dst); err != nil {
		cleanup()
		return nil, err
	}

	logger.Log.Infow("audio file stored", "owner_id", ownerID, "name", name, "size", n, "path", dst)

	return &models.AudioFile{
		OwnerID:  ownerID,
		Name:     name,
		Size:     n,
		Location: dst,
	}, nil
}

// List returns the owner's files sorted by name.
func (s *LocalStore) List(ctx context.Context, ownerID int64) ([]models.AudioFile, error) {
	dir := s.ownerDir(ownerID)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.AudioFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]models.AudioFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || ValidateName(e.Name()) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, models.AudioFile{
			OwnerID:  ownerID,
			Name:     e.Name(),
			Size:     info.Size(),
			Location: filepath.Join(dir, e.Name()),
		})
	}
	return files, nil
}

// Open returns a stream over the file. The stream stops when ctx is done.
func (s *LocalStore) Open(ctx context.Context, ownerID int64, name string) (*models.AudioStream, error) {
	if err := ValidateName(name); err != nil {
		return nil, ErrFileNotFound
	}

	f, err := os.Open(filepath.Join(s.ownerDir(ownerID), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrFileNotFound
	}

	return &models.AudioStream{
		Body:        newContextReader(ctx, f),
		Size:        info.Size(),
		ContentType: ContentTypeByName(name),
	}, nil
}

// Delete removes the file. Deleting a missing file yields ErrFileNotFound
// every time.
func (s *LocalStore) Delete(ctx context.Context, ownerID int64, name string) error {
	if err := ValidateName(name); err != nil {
		return ErrFileNotFound
	}

	err := os.Remove(filepath.Join(s.ownerDir(ownerID), name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrFileNotFound
	}
	if err != nil {
		return err
	}

	logger.Log.Infow("audio file deleted", "owner_id", ownerID, "name", name)
	return nil
}
