package avatar

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStorage keeps avatars in a local directory served under URLPrefix.
type DiskStorage struct {
	dir       string
	urlPrefix string
}

func NewDiskStorage(dir, urlPrefix string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStorage{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save writes data through a temporary file so readers never observe a
// partially written avatar.
func (s *DiskStorage) Save(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, filepath.Base(name)))
}

func (s *DiskStorage) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (s *DiskStorage) URL(name string) string {
	return path.Join(s.urlPrefix, name)
}

// Route returns the mux pattern and handler serving the stored files.
func (s *DiskStorage) Route() (string, http.Handler) {
	prefix := s.urlPrefix + "/"
	return "GET " + prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(s.dir)))
}
