package store

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
)

// DirStore is a Store backed by a directory on the host filesystem. Store
// paths are slash-separated and rooted at the directory, so "/enc/up.cbm"
// maps to <root>/enc/up.cbm.
type DirStore struct {
	mu      sync.Mutex
	root    string
	file    *os.File
	current string
	writing bool
}

// NewDirStore returns a DirStore rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

func (s *DirStore) hostPath(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+p)))
}

func (s *DirStore) closeLocked() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	s.current = ""
	s.writing = false
}

func (s *DirStore) OpenRead(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean("/" + p)

	// Same file as previously, just rewind.
	if s.file != nil && !s.writing && s.current == p {
		_, err := s.file.Seek(0, io.SeekStart)
		return err
	}

	s.closeLocked()

	f, err := os.Open(s.hostPath(p))
	if err != nil {
		return err
	}
	s.file, s.current, s.writing = f, p, false
	return nil
}

func (s *DirStore) OpenWrite(p string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean("/" + p)
	s.closeLocked()

	if overwrite {
		os.Remove(s.hostPath(p))
	}

	f, err := os.OpenFile(s.hostPath(p), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	s.file, s.current, s.writing = f, p, true
	return nil
}

func (s *DirStore) Seek(offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return ErrNoFile
	}
	_, err := s.file.Seek(offset, io.SeekStart)
	return err
}

// Read fills p with as many bytes as the file has left and reports the
// count. A short transfer is not an error; io.EOF is only returned when no
// bytes at all were available.
func (s *DirStore) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return 0, ErrNoFile
	}

	n := 0
	for n < len(p) {
		m, err := s.file.Read(p[n:])
		n += m
		if err == io.EOF {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *DirStore) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return 0, ErrNoFile
	}
	return s.file.Write(p)
}

func (s *DirStore) Size() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return 0, ErrNoFile
	}
	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *DirStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *DirStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file, s.current, s.writing = nil, "", false
	return err
}

func (s *DirStore) Exists(p string) bool {
	_, err := os.Stat(s.hostPath(p))
	return err == nil
}

func (s *DirStore) Mkdir(p string) error {
	return os.MkdirAll(s.hostPath(p), 0755)
}

func (s *DirStore) Remove(p string) error {
	s.mu.Lock()
	if s.current == path.Clean("/"+p) {
		s.closeLocked()
	}
	s.mu.Unlock()
	return os.Remove(s.hostPath(p))
}

func (s *DirStore) List(p string) ([]string, error) {
	entries, err := os.ReadDir(s.hostPath(p))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
