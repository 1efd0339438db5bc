package csvout

import (
	"encoding/csv"
	"io"
	"os"
	"sync"

	"certpipe/pkg/model"

	"github.com/pkg/errors"
)

// Header is the first line of a new output file. It is written as is, csv.Writer
// would quote the padded column names.
const Header = "timestamp, matched_keyword, domain, scan_results_url"

// TimeLayout formats the timestamp column
const TimeLayout = "2006-01-02 15:04:05.000000"

// Writer appends matches to a CSV file, creating it with a header if needed
type Writer struct {
	mu   sync.Mutex
	path string
}

// NewWriter returns a Writer for path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// WriteRow appends a row for m
func (w *Writer) WriteRow(m model.Match) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := os.Stat(w.path)
	isNew := os.IsNotExist(err)

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", w.path)
	}
	defer f.Close()

	if isNew {
		if _, err := io.WriteString(f, Header+"\r\n"); err != nil {
			return errors.Wrapf(err, "write header to %s", w.path)
		}
	}
	cw := csv.NewWriter(f)
	cw.UseCRLF = true
	if err := cw.Write([]string{m.Timestamp.Format(TimeLayout), m.Keyword, m.Domain, m.ScanURL}); err != nil {
		return errors.Wrapf(err, "write row to %s", w.path)
	}
	cw.Flush()
	return errors.Wrapf(cw.Error(), "flush %s", w.path)
}
