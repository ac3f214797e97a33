// Package country loads the static country metadata table that GADM features
// are joined against.
package country

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"
)

// FileName is the reference file expected inside the task directory.
const FileName = "countries.csv"

// Record is one row of country metadata.
type Record struct {
	ISO3      string `json:"iso_3"`
	Country   string `json:"country"`
	Subregion string `json:"subregion"`
	Continent string `json:"continent"`
}

// Table maps ISO-3 country codes to their metadata. It is not mutated after
// Parse returns.
type Table struct {
	byISO3 map[string]Record
}

// NewTable builds a table from records. A repeated code replaces the
// earlier record.
func NewTable(records ...Record) Table {
	t := Table{byISO3: make(map[string]Record, len(records))}
	for _, r := range records {
		t.byISO3[r.ISO3] = r
	}
	return t
}

// Lookup returns the record for an ISO-3 code.
func (t Table) Lookup(iso3 string) (Record, bool) {
	r, ok := t.byISO3[iso3]
	return r, ok
}

// Len returns the number of distinct codes in the table.
func (t Table) Len() int {
	return len(t.byISO3)
}

// Records returns every record ordered by country name using English
// collation, ties broken by ISO-3 code.
func (t Table) Records() []Record {
	out := make([]Record, 0, len(t.byISO3))
	for _, r := range t.byISO3 {
		out = append(out, r)
	}

	c := collate.New(language.English, collate.Loose)
	sort.Slice(out, func(i, j int) bool {
		if cmp := c.CompareString(out[i].Country, out[j].Country); cmp != 0 {
			return cmp < 0
		}
		return out[i].ISO3 < out[j].ISO3
	})
	return out
}

// Load opens the reference CSV at path, decodes it from the named text
// encoding (empty means UTF-8) and parses it.
func Load(path, encoding string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, eris.Wrapf(err, "country: open reference file %s", path)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if encoding != "" && !strings.EqualFold(encoding, "utf-8") && !strings.EqualFold(encoding, "utf8") {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return Table{}, eris.Wrapf(err, "country: unknown encoding %q", encoding)
		}
		r = enc.NewDecoder().Reader(f)
	}

	t, err := Parse(r)
	if err != nil {
		return Table{}, eris.Wrapf(err, "country: parse %s", path)
	}

	zap.L().Debug("country: loaded reference table",
		zap.String("path", path),
		zap.Int("countries", t.Len()),
	)
	return t, nil
}

// Parse reads headerless rows of iso3,country,subregion,continent. Any short
// row or row without an ISO-3 code or country name fails the whole parse.
// A repeated code replaces the earlier row.
func Parse(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	t := Table{byISO3: make(map[string]Record)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, eris.Wrap(err, "country: read row")
		}

		line, _ := reader.FieldPos(0)
		rec, err := recordFromRow(record)
		if err != nil {
			return Table{}, eris.Wrapf(err, "country: line %d", line)
		}
		t.byISO3[rec.ISO3] = rec
	}

	return t, nil
}

// recordFromRow maps one CSV row onto a Record.
func recordFromRow(row []string) (Record, error) {
	if len(row) < 4 {
		return Record{}, eris.Errorf("expected 4 columns, got %d", len(row))
	}

	rec := Record{
		ISO3:      row[0],
		Country:   row[1],
		Subregion: row[2],
		Continent: row[3],
	}
	if rec.ISO3 == "" {
		return Record{}, eris.New("empty iso3 code")
	}
	if rec.Country == "" {
		return Record{}, eris.Errorf("empty country name for %s", rec.ISO3)
	}
	return rec, nil
}
