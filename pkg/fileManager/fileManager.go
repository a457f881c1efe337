package filemanager

import (
	"fmt"
	"os"
	"path/filepath"

	bencodetorrent "github.com/TheLox95/torrent-wire/pkg/bencodeTorrent"
)

// FileManager reads metainfo documents from disk. Relative names are
// resolved against Dir; an empty Dir means the working directory.
type FileManager struct {
	Dir string
}

func (m *FileManager) path(name string) string {
	if m.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.Dir, name)
}

// ReadTorrent returns the raw bytes of a metainfo document.
func (m *FileManager) ReadTorrent(name string) ([]byte, error) {
	data, err := os.ReadFile(m.path(name))
	if err != nil {
		return nil, fmt.Errorf("error during file %q reading: %w", name, err)
	}
	return data, nil
}

// LoadTorrent reads and parses a metainfo document.
func (m *FileManager) LoadTorrent(name string) (*bencodetorrent.BencodeTorrent, error) {
	data, err := m.ReadTorrent(name)
	if err != nil {
		return nil, err
	}
	t, err := bencodetorrent.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse %q: %w", name, err)
	}
	return t, nil
}
