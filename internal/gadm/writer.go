package gadm

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// Writer writes rows as CSV, optionally preceded by a single header line.
type Writer struct {
	w             *csv.Writer
	header        bool
	headerWritten bool
	rows          int
}

// NewWriter returns a Writer on w. With crlf set, lines end in \r\n.
func NewWriter(w io.Writer, header, crlf bool) *Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = crlf
	return &Writer{w: cw, header: header}
}

// WriteHeader writes the column names if headers are enabled and they have
// not been written yet.
func (w *Writer) WriteHeader() error {
	if !w.header || w.headerWritten {
		return nil
	}
	if err := w.w.Write(Columns); err != nil {
		return eris.Wrap(err, "gadm: write header")
	}
	w.headerWritten = true
	return nil
}

// Write writes one row, emitting the header first when needed.
func (w *Writer) Write(row Row) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.w.Write(row.Record()); err != nil {
		return eris.Wrap(err, "gadm: write row")
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush flushes buffered output and reports any write error.
func (w *Writer) Flush() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return eris.Wrap(err, "gadm: flush output")
	}
	return nil
}
