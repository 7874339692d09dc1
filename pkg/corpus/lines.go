package corpus

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/natefinch/atomic"
)

// maxLineLength prevents a single malformed line from taking up a large amount of memory
const maxLineLength = 4096

// ReadLines reads one corpus entry per line. Each line is trimmed of
// surrounding whitespace and lower-cased; blank lines are skipped.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256), maxLineLength)

	var entries []string
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return entries, nil
}

// WriteLines atomically writes entries to path, one per line, replacing any
// existing file.
func WriteLines(path string, entries []string) error {
	var buf bytes.Buffer
	for _, entry := range entries {
		buf.WriteString(entry)
		buf.WriteByte('\n')
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write corpus file: %w", err)
	}
	return nil
}
