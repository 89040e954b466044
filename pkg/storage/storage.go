// Package storage is a small filesystem abstraction with a local driver
// and an S3-compatible driver (AWS S3, MinIO, R2, Spaces).
//
//	mgr, _ := storage.NewManager(ctx, cfg)
//	disk, _ := mgr.Disk("s3")
//	_ = disk.Put(ctx, "exports/catalog.json", data)
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned by Get when path does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Disk is implemented by every driver. Paths are slash-separated and
// relative to the disk root.
type Disk interface {
	Put(ctx context.Context, path string, content []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	// Files lists every file under directory, recursively, sorted.
	Files(ctx context.Context, directory string) ([]string, error)
	URL(path string) string
}

// S3Config configures the "s3" disk. An empty Bucket disables it.
type S3Config struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string // leave empty for AWS
	URL      string // public base URL; derived from bucket and region when empty
}

// Config selects and configures disks.
type Config struct {
	Default   string
	LocalRoot string
	LocalURL  string
	S3        S3Config
}

// Manager holds the configured disks.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultName string
}

// NewManager boots the local disk and, when a bucket is configured, the
// s3 disk.
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	local, err := NewLocal(cfg.LocalRoot, cfg.LocalURL)
	if err != nil {
		return nil, err
	}

	m := &Manager{disks: map[string]Disk{"local": local}, defaultName: cfg.Default}
	if m.defaultName == "" {
		m.defaultName = "local"
	}

	if cfg.S3.Bucket != "" {
		d, err := NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		m.disks["s3"] = d
	}

	if _, ok := m.disks[m.defaultName]; !ok {
		return nil, fmt.Errorf("storage: default disk %q is not configured", m.defaultName)
	}
	return m, nil
}

// Register adds or replaces a disk.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disks[name] = d
}

// Disk returns the named disk; an empty name means the default disk.
func (m *Manager) Disk(name string) (Disk, error) {
	if name == "" {
		name = m.defaultName
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Names lists the configured disks.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.disks))
	for name := range m.disks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
