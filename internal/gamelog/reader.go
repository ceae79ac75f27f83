package gamelog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
)

// Reader reads complete lines appended to a single growing log file and
// owns the file-position bookkeeping needed to resume across restarts.
//
// The offset only ever advances past bytes that end in a line terminator: a
// trailing fragment with no terminator yet is left on disk and re-read on
// the next call, so a crash between calls never loses or duplicates a line.
// Exactly one Reader must be active per physical file; two readers on the
// same file would race on interpreting "new" bytes.
type Reader struct {
	path     string
	offset   int64
	lastSize int64
}

// NewReader creates a Reader for the given log file path. The file does not
// need to exist yet; an absent file reads as "nothing new".
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Position returns the byte offset of consumed, line-terminated content.
func (r *Reader) Position() int64 { return r.offset }

// FileSize returns the file size observed on the most recent read.
func (r *Reader) FileSize() int64 { return r.lastSize }

// SetPosition restores saved state from a prior run. A saved offset larger
// than the live file means the file was rotated since the state was saved;
// that is detected on the next read via the size comparison, which resets
// the offset to zero and replays the file.
func (r *Reader) SetPosition(offset, knownSize int64) {
	if offset < 0 {
		offset = 0
	}
	if offset > knownSize {
		// Offset beyond known size violates the position invariant,
		// clamp rather than trust it.
		offset = knownSize
	}
	r.offset = offset
	r.lastSize = knownSize
}

// Reset forces the offset back to zero so the next read replays the whole
// file from the start.
func (r *Reader) Reset() {
	r.offset = 0
	r.lastSize = 0
}

// ReadAllLines returns every complete line currently in the file, from the
// start, with terminators stripped. A trailing unterminated fragment is not
// included. Re-invocable: each call replays from position zero.
func (r *Reader) ReadAllLines() ([]string, error) {
	r.Reset()
	return r.ReadNewLines()
}

// ReadNewLines returns the complete lines appended since the last successful
// read, in file order.
//
// A missing file is not an error: it returns an empty result, as does a call
// with no new terminated bytes. If the file is smaller than it was last time
// (rotation or truncation) the offset resets to zero and the whole current
// content is returned. On an I/O error mid-read the offset is left
// untouched, so the caller can simply retry on its next poll.
func (r *Reader) ReadNewLines() ([]string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}
	size := stat.Size()

	if size < r.lastSize {
		log.Debug().
			Str("file", r.path).
			Int64("last_size", r.lastSize).
			Int64("size", size).
			Msg("Log file shrank, treating as rotation and rereading from start")
		r.offset = 0
	}
	r.lastSize = size

	if size <= r.offset {
		return nil, nil
	}

	if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to offset %d: %w", r.offset, err)
	}

	buf := make([]byte, size-r.offset)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	buf = buf[:n]

	// Consume only up to the last line terminator; the remainder is a
	// partial line still being written by the game client.
	end := bytes.LastIndexByte(buf, '\n')
	if end < 0 {
		return nil, nil
	}

	lines, err := decodeLines(buf[:end+1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode log chunk: %w", err)
	}

	r.offset += int64(end + 1)
	return lines, nil
}

// decodeLines decodes a chunk of terminated log bytes and splits it into
// lines with terminators stripped. Invalid byte sequences are substituted
// rather than failing the whole read, so one mangled line cannot stall the
// stream.
func decodeLines(chunk []byte) ([]string, error) {
	decoded, err := unicode.UTF8.NewDecoder().Bytes(chunk)
	if err != nil {
		return nil, err
	}

	text := string(decoded)
	// The chunk always ends in '\n'; drop it before splitting so the split
	// does not produce a spurious trailing empty line.
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}, nil
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}
