package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrFileNotFound is returned by PDFStorage.Get when no file exists under the key
var ErrFileNotFound = errors.New("pdf file not found")

// PDFStorage stores rendered PDFs under flat keys such as recipe-12.pdf
type PDFStorage interface {
	// Store writes the PDF under req.Key, replacing any previous content
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Get opens the PDF stored under key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the PDF under key. A missing file is not an error.
	Delete(ctx context.Context, key string) error
	// GetURL returns the address clients download the PDF from
	GetURL(ctx context.Context, key string) (string, error)
}

// StoreRequest contains the parameters for storing a PDF
type StoreRequest struct {
	Key     string
	PDFData []byte
}

// StoreResult contains the result of storing a PDF
type StoreResult struct {
	Key  string
	URL  string
	Size int64
}

// RecipeFileKey is the deterministic storage key of a recipe's PDF. Re-renders
// overwrite the same key instead of accumulating files.
func RecipeFileKey(recipeID uint) string {
	return fmt.Sprintf("recipe-%d.pdf", recipeID)
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the media root directory
	BasePath string
	// BaseURL is the URL prefix the media root is served under
	BaseURL string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage stores PDFs as files in the media root
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates the media root if needed
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "./media"
	}
	if config.BaseURL == "" {
		config.BaseURL = "/media"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		config: config,
		logger: logger,
	}, nil
}

// BasePath returns the media root directory
func (s *FileSystemStorage) BasePath() string {
	return s.config.BasePath
}

// Store writes to a temp file in the media root and renames it over the
// target, so readers never observe a partially written PDF.
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if req == nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if len(req.PDFData) == 0 {
		return nil, NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	fullPath, err := s.resolve(req.Key)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.config.BasePath, ".upload-*.pdf")
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(req.PDFData); err != nil {
		tmp.Close()
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to set file mode", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to move PDF into place", err)
	}

	url := s.urlFor(req.Key)
	s.logger.Info("PDF stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.PDFData)),
		zap.String("url", url))

	return &StoreResult{
		Key:  req.Key,
		URL:  url,
		Size: int64(len(req.PDFData)),
	}, nil
}

// Get opens the PDF stored under key
func (s *FileSystemStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open PDF file", err)
	}
	return file, nil
}

// Delete removes the PDF stored under key
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("PDF to delete does not exist", zap.String("key", key))
			return nil
		}
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}

	s.logger.Info("PDF deleted", zap.String("key", key))
	return nil
}

// GetURL returns the media URL of key
func (s *FileSystemStorage) GetURL(_ context.Context, key string) (string, error) {
	if _, err := s.resolve(key); err != nil {
		return "", err
	}
	return s.urlFor(key), nil
}

func (s *FileSystemStorage) urlFor(key string) string {
	return s.config.BaseURL + "/" + key
}

// resolve maps a key to a path directly inside the media root. Keys are flat
// file names, so any separator or dot segment is rejected.
func (s *FileSystemStorage) resolve(key string) (string, error) {
	if !validKey(key) {
		s.logger.Warn("blocked invalid storage key", zap.String("key", key))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid storage key", nil)
	}
	return filepath.Join(s.config.BasePath, key), nil
}

func validKey(key string) bool {
	if key == "" || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && filepath.Base(key) == key
}

var _ PDFStorage = (*FileSystemStorage)(nil)
