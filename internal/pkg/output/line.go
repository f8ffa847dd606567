package output

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/anicoll/upmon/internal/pkg/config"
	"github.com/anicoll/upmon/internal/pkg/model"
)

// ISO 8601 with millisecond precision; "Z07:00" collapses to "Z" for UTC.
const stampLayout = "2006-01-02T15:04:05.000Z07:00"

// LineWriter writes details of all changed properties on a single line, per
// DBus message per device. A mutex around the sink keeps concurrent callers'
// lines from interleaving.
type LineWriter struct {
	mu        sync.Mutex
	out       io.Writer
	closer    io.Closer
	separator string
	delimiter string
	timestamp bool
}

// NewLineWriter opens the configured sink: the output file in append mode,
// or standard output when no file is configured.
func NewLineWriter(cfg *config.OutputConfig) (*LineWriter, error) {
	w := &LineWriter{
		out:       os.Stdout,
		separator: cfg.Separator,
		delimiter: cfg.Delimiter,
		timestamp: cfg.Timestamp,
	}
	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w.out = f
		w.closer = f
	}
	return w, nil
}

// Write appends one newline-terminated line for the record. Iteration order
// over changes is map order and therefore unspecified. Errors from the sink
// are returned to the caller, never retried.
func (w *LineWriter) Write(_ context.Context, devicePath string, changes model.Changes) error {
	pairs := make([]string, 0, len(changes))
	for name, property := range changes {
		pairs = append(pairs, name+w.separator+property.String())
	}

	var line strings.Builder
	if w.timestamp {
		line.WriteString(time.Now().UTC().Format(stampLayout))
		line.WriteByte(' ')
	}
	line.WriteString(devicePath)
	line.WriteByte(' ')
	line.WriteString(strings.Join(pairs, w.delimiter))
	line.WriteByte('\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.out, line.String())
	return err
}

// Close closes the output file, if one was opened.
func (w *LineWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
