package gadm

import (
	"iter"

	"go.uber.org/zap"

	"github.com/selby-botany/gadm-names/internal/country"
)

// KeyISO3 is the GADM property holding the ISO-3 country code.
const KeyISO3 = "GID_0"

// Levels is the number of administrative levels GADM names.
const Levels = 5

// Columns are the output column names in order.
var Columns = []string{"iso_3", "continent", "subregion", "country", "pd1", "pd2", "pd3", "pd4", "pd5"}

// levelKeys maps pd1..pd5 to their GADM property names.
var levelKeys = [Levels]string{"NAME_1", "NAME_2", "NAME_3", "NAME_4", "NAME_5"}

// Row is one output record.
type Row struct {
	ISO3      string
	Continent string
	Subregion string
	Country   string
	Divisions [Levels]string // pd1..pd5
}

// Record returns the row's fields in Columns order.
func (r Row) Record() []string {
	out := make([]string, 0, len(Columns))
	out = append(out, r.ISO3, r.Continent, r.Subregion, r.Country)
	out = append(out, r.Divisions[:]...)
	return out
}

// Stats counts what a transformation has seen so far.
type Stats struct {
	Features int `json:"features"`
	Matched  int `json:"matched"`
	Skipped  int `json:"skipped"`
}

// Transformer joins features against a country table.
type Transformer struct {
	table country.Table
	stats Stats
}

// NewTransformer returns a Transformer for table.
func NewTransformer(table country.Table) *Transformer {
	return &Transformer{table: table}
}

// Stats returns the counters accumulated across all Rows iterations.
func (t *Transformer) Stats() Stats {
	return t.stats
}

// Rows yields one Row per feature whose GID_0 is in the table, in feature
// order. Features with unknown codes are skipped. A feature without
// properties or GID_0 yields a *SchemaError and ends the sequence.
func (t *Transformer) Rows(doc *Document) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		if doc == nil {
			return
		}

		for i, raw := range doc.Features {
			t.stats.Features++

			f, err := decodeFeature(i, raw)
			if err != nil {
				yield(Row{}, err)
				return
			}

			row, ok := t.buildRow(f.Properties)
			if !ok {
				t.stats.Skipped++
				continue
			}
			t.stats.Matched++

			zap.L().Debug("gadm: selected",
				zap.Int("feature", i+1),
				zap.Strings("row", row.Record()),
			)
			if !yield(row, nil) {
				return
			}
		}
	}
}

// buildRow overlays, in order, empty defaults, the country record and the
// per-level names present in props.
func (t *Transformer) buildRow(props Properties) (Row, bool) {
	iso3, _ := props.Lookup(KeyISO3)
	rec, ok := t.table.Lookup(iso3)
	if !ok {
		return Row{}, false
	}

	var row Row
	row.ISO3 = rec.ISO3
	row.Continent = rec.Continent
	row.Subregion = rec.Subregion
	row.Country = rec.Country
	for level, key := range levelKeys {
		if name, present := props.Lookup(key); present {
			row.Divisions[level] = name
		}
	}
	return row, true
}
