package watch

import (
	"bytes"
	"os"
	"strings"
)

// replayChunkSize is how much of the file is read per step when scanning
// backwards.
const replayChunkSize = 4096

// readLastNLines returns the last n non-empty lines of the file at path,
// oldest first, reading backwards from the end in chunks.
//
// Limits (0 = unlimited):
//   - maxBytes: total bytes read from the file
//   - maxLineBytes: length of a single line
//
// Returns ErrReplayLimitExceeded if a limit is exceeded.
func readLastNLines(path string, n, maxBytes, maxLineBytes int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	var (
		buf      []byte
		newlines int
		// recheck is the newline count at which buf is split again.
		recheck = n
		offset  = stat.Size()
	)
	for offset > 0 {
		size := int64(replayChunkSize)
		if offset < size {
			size = offset
		}
		offset -= size

		if maxBytes > 0 && len(buf)+int(size) > maxBytes {
			return nil, ErrReplayLimitExceeded
		}
		chunk := make([]byte, size, int(size)+len(buf))
		if _, err := file.ReadAt(chunk, offset); err != nil {
			return nil, err
		}
		newlines += bytes.Count(chunk, []byte{'\n'})
		buf = append(chunk, buf...)

		if newlines == 0 {
			if maxLineBytes > 0 && len(buf) > maxLineBytes {
				return nil, ErrReplayLimitExceeded
			}
			continue
		}
		// Every line after the first newline is complete. Splitting is
		// skipped until there can be enough of them.
		if newlines < recheck {
			continue
		}
		found := len(nonEmptyLines(buf, false))
		if found >= n {
			break
		}
		recheck = newlines + n - found
	}

	lines := nonEmptyLines(buf, offset == 0)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if maxLineBytes > 0 {
		for _, l := range lines {
			if len(l) > maxLineBytes {
				return nil, ErrReplayLimitExceeded
			}
		}
	}
	return lines, nil
}

// nonEmptyLines splits buf into lines without terminators and drops empty
// ones. The text before the first newline is kept only when includeHead is
// set, since it may be the tail of a line that was not read.
func nonEmptyLines(buf []byte, includeHead bool) []string {
	parts := strings.Split(string(buf), "\n")
	if !includeHead {
		parts = parts[1:]
	}
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSuffix(p, "\r"); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}
