package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// maxTokenSize bounds a single line or token; a comment longer than this is
// rejected rather than buffered.
const maxTokenSize = 1 << 20

// Load reads a dataset file, decompressing it according to its extension.
func Load(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r, err := NewReader(bufio.NewReader(f), CodecFor(path))
	if err != nil {
		return nil, fmt.Errorf("open %s stream: %w", CodecFor(path), err)
	}
	defer r.Close()

	values, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return values, nil
}

// Read parses integers separated by whitespace or commas. Lines whose first
// non-blank character is '#' are ignored.
func Read(r io.Reader) ([]int64, error) {
	var values []int64
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 64*1024), maxTokenSize)

	lineNo := 0
	for lines.Scan() {
		lineNo++
		line := bytes.TrimSpace(lines.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		tokens := bufio.NewScanner(bytes.NewReader(line))
		tokens.Buffer(make([]byte, 0, 64), maxTokenSize)
		tokens.Split(scanFields)
		for tokens.Scan() {
			v, err := strconv.ParseInt(tokens.Text(), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid integer %q", lineNo, tokens.Text())
			}
			values = append(values, v)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// Write stores values one per line, compressing according to the extension
// of path. Missing parent directories are created.
func Write(path string, values []int64) (err error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	buf := bufio.NewWriter(f)
	w, err := NewWriter(buf, CodecFor(path))
	if err != nil {
		return err
	}
	if err := Encode(w, values); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return buf.Flush()
}

// Encode writes values one per line to w.
func Encode(w io.Writer, values []int64) error {
	line := make([]byte, 0, 24)
	for _, v := range values {
		line = strconv.AppendInt(line[:0], v, 10)
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// scanFields is a bufio.SplitFunc like bufio.ScanWords that also treats
// commas as separators.
func scanFields(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, width := utf8.DecodeRune(data[start:])
		if !isSeparator(r) {
			break
		}
		start += width
	}
	for i := start; i < len(data); {
		r, width := utf8.DecodeRune(data[i:])
		if isSeparator(r) {
			return i + width, data[start:i], nil
		}
		i += width
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
