package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Receipt records a completed installer fetch.
type Receipt struct {
	// Release is the marketing name of the fetched release.
	Release string `yaml:"release"`
	// Version is the dotted version string that was fetched.
	Version string `yaml:"version"`
	// Pathname is the cached installer bundle.
	Pathname string `yaml:"pathname"`
	// DownloadedAt is when the fetch completed.
	DownloadedAt time.Time `yaml:"downloaded_at"`
	// Hostname identifies the machine that performed the fetch.
	Hostname string `yaml:"hostname"`
	// Username identifies the operator that performed the fetch.
	Username string `yaml:"username"`
}

// Repository defines persistence operations for fetch receipts.
type Repository interface {
	Load(ctx context.Context) (*Receipt, error)
	Save(ctx context.Context, receipt *Receipt) error
}

// FileRepository persists the receipt to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the receipt file.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

// Filename is the receipt file created inside a cache entry directory.
const Filename = "receipt.yaml"

// filePermissions is the mode for written receipt files.
const filePermissions = 0o644

// ErrNotFound is returned when no receipt has been written yet.
var ErrNotFound = errors.New("receipt not found")

// New builds a receipt for a completed fetch, stamping time and actor.
func New(release, version, pathname string) *Receipt {
	receipt := &Receipt{
		Release:      release,
		Version:      version,
		Pathname:     pathname,
		DownloadedAt: time.Now().UTC(),
	}

	if hostname, err := os.Hostname(); err == nil {
		receipt.Hostname = hostname
	}

	if currentUser, err := user.Current(); err == nil {
		receipt.Username = currentUser.Username
	}

	return receipt
}

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt file: %w", err)
	}

	var receipt Receipt
	if err = yaml.Unmarshal(contents, &receipt); err != nil {
		return nil, fmt.Errorf("decode receipt file: %w", err)
	}

	return &receipt, nil
}

// Save writes the receipt to disk.
func (r *FileRepository) Save(_ context.Context, receipt *Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	if err = os.WriteFile(r.path, data, filePermissions); err != nil {
		return fmt.Errorf("write receipt file: %w", err)
	}

	return nil
}
