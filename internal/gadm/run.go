package gadm

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/selby-botany/gadm-names/internal/country"
	"github.com/selby-botany/gadm-names/internal/source"
)

// Options configures a single extraction run.
type Options struct {
	Input             string // path, "-" for stdin
	Output            string // path, "-" for stdout
	Reference         string // country reference CSV
	ReferenceEncoding string
	Header            bool
	CRLF              bool

	// FailOnDecodeError makes malformed input JSON fail the run instead of
	// producing empty output with a warning.
	FailOnDecodeError bool
}

// Run loads the reference table, transforms the input document and writes
// the CSV output. Rows written before a schema error stay in the output.
func Run(opts Options) (stats Stats, err error) {
	log := zap.L().With(zap.String("component", "gadm.run"))

	table, err := country.Load(opts.Reference, opts.ReferenceEncoding)
	if err != nil {
		return Stats{}, err
	}

	out, err := source.Create(opts.Output)
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = eris.Wrap(cerr, "gadm: close output")
		}
	}()

	in, err := source.Open(opts.Input)
	if err != nil {
		return Stats{}, err
	}
	defer in.Close() //nolint:errcheck

	doc, err := Decode(in)
	if err != nil {
		if eris.Is(err, ErrDecode) && !opts.FailOnDecodeError {
			log.Warn("input is not valid JSON, no rows written",
				zap.String("input", opts.Input),
				zap.Error(err),
			)
			return Stats{}, nil
		}
		return Stats{}, err
	}

	w := NewWriter(out, opts.Header, opts.CRLF)
	if len(doc.Features) > 0 {
		if err := w.WriteHeader(); err != nil {
			return Stats{}, err
		}
	}

	t := NewTransformer(table)
	for row, rowErr := range t.Rows(doc) {
		if rowErr != nil {
			_ = w.Flush()
			return t.Stats(), rowErr
		}
		if err := w.Write(row); err != nil {
			return t.Stats(), err
		}
	}
	if err := w.Flush(); err != nil {
		return t.Stats(), err
	}

	stats = t.Stats()
	log.Info("extraction complete",
		zap.String("input", opts.Input),
		zap.String("output", opts.Output),
		zap.Int("countries", table.Len()),
		zap.Int("features", stats.Features),
		zap.Int("matched", stats.Matched),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}
