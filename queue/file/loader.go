package file

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// Open loads (or creates) the queue file named by the config. A file
// that fails verification is renamed aside as <name>_<n>.bad, keeping at
// most MaxQuarantine generations, and a fresh queue takes its place.
func Open(pattern encoding.BinaryUnmarshaler, config ...Config) (*Queue, error) {
	cfg := configDefault(config...)

	return (&loader{
		cfg:     cfg,
		nameRe:  regexp.MustCompile(`^(.+)_(\d+)\.(q|bad)$`),
		pattern: pattern,
	}).load()
}

type loader struct {
	cfg     Config
	nameRe  *regexp.Regexp
	pattern encoding.BinaryUnmarshaler
}

func (l *loader) load() (*Queue, error) {
	if err := os.MkdirAll(l.cfg.Workspace, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(l.cfg.Workspace, l.cfg.Name+"_0.q")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	q, err := NewQueue(f, l.pattern)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, ErrCorrupt) {
		_ = f.Close()
		return nil, err
	}

	if err := l.quarantine(f); err != nil {
		return nil, err
	}

	f, err = os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return NewQueue(f, l.pattern)
}

func (l *loader) quarantine(f *os.File) error {
	if err := f.Close(); err != nil {
		return err
	}

	name, _, n, err := l.splitName(filepath.Base(f.Name()))
	if err != nil {
		return err
	}
	aside := filepath.Join(l.cfg.Workspace, l.joinName(name, "bad", n))

	return l.shift(f.Name(), aside)
}

func (l *loader) joinName(name, ext string, n int) string {
	return fmt.Sprintf("%s_%d.%s", name, n, ext)
}

func (l *loader) splitName(fileName string) (name, ext string, n int, err error) {
	m := l.nameRe.FindStringSubmatch(fileName)
	if len(m) != 4 {
		return "", "", 0, fmt.Errorf("bad queue file name: %q", fileName)
	}

	n, err = strconv.Atoi(m[2])
	if err != nil {
		return "", "", 0, err
	}

	return m[1], m[3], n, nil
}

// shift renames prev to next, cascading existing generations upward and
// dropping anything beyond MaxQuarantine.
func (l *loader) shift(prev, next string) error {
	if exists(next) {
		name, ext, n, err := l.splitName(filepath.Base(next))
		if err != nil {
			return err
		}
		err = l.shift(next, filepath.Join(l.cfg.Workspace, l.joinName(name, ext, n+1)))
		if err != nil {
			return err
		}
	}

	_, _, n, err := l.splitName(filepath.Base(prev))
	if err != nil {
		return err
	}
	if n >= l.cfg.MaxQuarantine {
		return os.Remove(prev)
	}

	return os.Rename(prev, next)
}

// exists reports whether path names a regular file.
func exists(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
