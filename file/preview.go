package file

import "io"

// ReadPreview returns at most limit bytes of f's content, or the empty
// string if f is nil — the readFileLength(path?, limit) primitive of
// §4.H, adapted from returning a raw path to taking the already-resolved
// File so callers never re-open by name.
func ReadPreview(f File, limit int) (string, error) {
	if f == nil {
		return "", nil
	}
	rd, ok := f.(interface {
		Reader() (io.ReadCloser, error)
	})
	if !ok {
		content, err := f.Content()
		if err != nil {
			return "", err
		}
		if len(content) > limit {
			content = content[:limit]
		}
		return string(content), nil
	}

	r, err := rd.Reader()
	if err != nil {
		return "", err
	}
	defer r.Close()

	buf := make([]byte, limit)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return string(buf[:n]), nil
}
