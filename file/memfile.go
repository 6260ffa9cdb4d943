package file

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

var _ File = &memFile{}

// memFile represent a file like byte array
type memFile struct {
	name    string
	content []byte
}

// NewMemFile create a file interface from content and content should not be modified afterwards
func NewMemFile(name string, content []byte) File {
	return &memFile{
		name:    name,
		content: content,
	}
}

func (m *memFile) Name() string {
	return m.name
}

func (m *memFile) Content() ([]byte, error) {
	return m.content, nil
}

func (m *memFile) String() string {
	return fmt.Sprintf("[memfile:%v,%d]", m.name, len(m.content))
}

func (m *memFile) Reader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.content)), nil
}

// Open streams content through an anonymous pipe. The sandboxed memfd
// shortcut the teacher used is out of scope here (no sandbox component
// exists in this tree to hand the fd to); a pipe keeps File satisfiable
// on every platform without that dependency.
func (m *memFile) Open() (*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	go func() {
		defer w.Close()
		w.Write(m.content)
	}()
	return r, nil
}
