package job

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanorg/vanorg"
)

// NewFileDeadLetter archives failed jobs under basePath, one file per
// dump. The callbacks receive write and read failures; either may be
// nil.
func NewFileDeadLetter(basePath string,
	failSaveFunc func(jobID, cause string, err error),
	failOpenFunc func(err error)) (vanorg.DeadLetter, error) {
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		err := os.MkdirAll(basePath, 0o755)
		if err != nil {
			return nil, err
		}
	}
	if failSaveFunc == nil {
		failSaveFunc = func(_, _ string, _ error) {
			// Nothing
		}
	}
	if failOpenFunc == nil {
		failOpenFunc = func(_ error) {
			// Nothing
		}
	}
	return &fileDeadLetter{
		basePath:     basePath,
		failSaveFunc: failSaveFunc,
		failOpenFunc: failOpenFunc,
	}, nil
}

type fileDeadLetter struct {
	basePath     string
	failSaveFunc func(jobID, cause string, err error)
	failOpenFunc func(err error)
}

// Dump writes a length-prefixed job id followed by the cause text.
func (d *fileDeadLetter) Dump(jobID string, cause string) {
	f, err := os.CreateTemp(d.basePath, "dead")
	if err != nil {
		d.failSaveFunc(jobID, cause, err)
		return
	}
	defer f.Close()

	err = binary.Write(f, binary.BigEndian, int64(len(jobID)))
	if err != nil {
		d.failSaveFunc(jobID, cause, err)
		return
	}
	_, err = io.Copy(f, strings.NewReader(jobID))
	if err != nil {
		d.failSaveFunc(jobID, cause, err)
		return
	}
	_, err = io.Copy(f, strings.NewReader(cause))
	if err != nil {
		d.failSaveFunc(jobID, cause, err)
		return
	}
}

func (d *fileDeadLetter) Return() (exist bool, jobID string, cause string) {
	f, err := os.Open(d.basePath)
	if err != nil {
		d.failOpenFunc(err)
		return
	}
	names, err := f.Readdirnames(-1)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		d.failOpenFunc(err)
		return
	}
	if len(names) == 0 {
		return false, "", ""
	}

	f, err = os.Open(filepath.Join(d.basePath, names[0]))
	if err != nil {
		d.failOpenFunc(err)
		return
	}
	var n int64
	err = binary.Read(f, binary.BigEndian, &n)
	if err != nil {
		d.failOpenFunc(err)
		return
	}
	buf := bytes.NewBuffer(nil)
	_, err = io.CopyN(buf, f, n)
	if err != nil {
		d.failOpenFunc(err)
		return
	}
	jobID = buf.String()
	buf.Reset()
	_, err = io.Copy(buf, f)
	if err != nil {
		d.failOpenFunc(err)
		return
	}
	cause = buf.String()
	err = f.Close()
	if err != nil {
		d.failOpenFunc(err)
		return
	}
	err = os.Remove(f.Name())
	if err != nil {
		d.failOpenFunc(err)
		return
	}
	return true, jobID, cause
}

// NewNullDeadLetter discards everything.
func NewNullDeadLetter() vanorg.DeadLetter {
	return &nullDeadLetter{}
}

type nullDeadLetter struct {
}

func (d *nullDeadLetter) Dump(string, string) {
}

func (d *nullDeadLetter) Return() (exist bool, jobID string, cause string) {
	return false, "", ""
}
