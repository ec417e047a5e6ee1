package linkcap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// Capability describes what the filesystem holding Root can do.
type Capability struct {
	Root     string
	Hardlink bool
	Symlink  bool
	Device   uint64
}

// SupportsHardlink reports whether hard links can be created under Root.
func (c Capability) SupportsHardlink() bool { return c.Hardlink }

// SupportsSymlink reports whether symbolic links can be created under Root.
func (c Capability) SupportsSymlink() bool { return c.Symlink }

// SameDevice reports whether path lives on the same device as Root, which a
// hard link requires.
func (c Capability) SameDevice(path string) bool {
	dev, err := DeviceOf(path)
	if err != nil {
		return false
	}
	return dev == c.Device
}

// DeviceOf returns the device number of path.
func DeviceOf(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return uint64(st.Dev), nil //nolint:unconvert // Dev width differs across platforms
}

// Probe tests link support by creating and removing a scratch directory in
// root, or in its nearest existing ancestor when root does not exist yet.
// A root that cannot be written reports no link support rather than failing.
func Probe(root string) (Capability, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Capability{}, fmt.Errorf("resolve %s: %w", root, err)
	}
	dir, err := existingAncestor(abs)
	if err != nil {
		return Capability{}, err
	}
	dev, err := DeviceOf(dir)
	if err != nil {
		return Capability{}, err
	}
	capability := Capability{Root: abs, Device: dev}

	scratch, err := os.MkdirTemp(dir, ".fileorg-probe-*")
	if err != nil {
		return capability, nil
	}
	defer os.RemoveAll(scratch)

	target := filepath.Join(scratch, "target")
	if err := os.WriteFile(target, nil, 0o600); err != nil {
		return capability, nil
	}
	capability.Hardlink = os.Link(target, filepath.Join(scratch, "hardlink")) == nil
	capability.Symlink = os.Symlink(target, filepath.Join(scratch, "symlink")) == nil
	return capability, nil
}

func existingAncestor(path string) (string, error) {
	current := path
	for {
		info, err := os.Stat(current)
		if err == nil {
			if !info.IsDir() {
				return "", fmt.Errorf("%s is not a directory", current)
			}
			return current, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", current, err)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing ancestor for %s", path)
		}
		current = parent
	}
}

// Cache memoizes Probe results per root.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Capability
	probe   func(string) (Capability, error)
}

// NewCache returns an empty cache backed by Probe.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Capability), probe: Probe}
}

// Get returns the capability for root, probing it on first use.
func (c *Cache) Get(root string) (Capability, error) {
	key := filepath.Clean(root)
	c.mu.Lock()
	defer c.mu.Unlock()
	if capability, ok := c.entries[key]; ok {
		return capability, nil
	}
	capability, err := c.probe(key)
	if err != nil {
		return Capability{}, err
	}
	c.entries[key] = capability
	return capability, nil
}
