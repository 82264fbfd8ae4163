package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"

	"github.com/tuannm99/pagesim/internal/page"
)

// accessesPerLine keeps written trace files readable.
const accessesPerLine = 32

// Codec is picked from the file extension.
type Codec string

const (
	CodecPlain  Codec = "plain"
	CodecSnappy Codec = "snappy"
	CodecLZ4    Codec = "lz4"
)

func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sz", ".snappy":
		return CodecSnappy
	case ".lz4":
		return CodecLZ4
	default:
		return CodecPlain
	}
}

// ReadFile loads a reference string, decompressing .sz (snappy stream) and
// .lz4 (lz4 frame) files.
func ReadFile(path string) ([]page.Access, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	switch CodecFor(path) {
	case CodecSnappy:
		r = snappy.NewReader(f)
	case CodecLZ4:
		r = lz4.NewReader(f)
	}

	out, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("trace: %s: %w", path, err)
	}
	return out, nil
}

// WriteFile stores accesses using the codec implied by path.
func WriteFile(path string, accesses []page.Access) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	var w io.WriteCloser
	switch CodecFor(path) {
	case CodecSnappy:
		w = snappy.NewBufferedWriter(f)
	case CodecLZ4:
		w = lz4.NewWriter(f)
	default:
		w = nopCloser{f}
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < len(accesses); i += accessesPerLine {
		end := min(i+accessesPerLine, len(accesses))
		if _, err := fmt.Fprintln(bw, Format(accesses[i:end])); err != nil {
			return fmt.Errorf("trace: write %s: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("trace: flush %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("trace: close %s: %w", path, err)
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
