package entities

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PrecautionRow holds up to four ordered precaution slots for one disease.
// Slots keep the raw cleaned text; empty and "nan" slots are skipped by readers.
type PrecautionRow struct {
	Disease     string
	Name        string // normalized disease name
	Precautions []string
}

// SymptomCatalogueRow holds the ordered Symptom_N slots for one disease.
type SymptomCatalogueRow struct {
	Disease  string
	Name     string
	Symptoms []string
}

// FaqRow is one question/answer pair.
type FaqRow struct {
	Question           string
	Answer             string
	Source             string
	FocusArea          string
	NormalizedQuestion string
}

// PrecautionTable is keyed by normalized disease name. A nil table is absent.
type PrecautionTable struct {
	rows   []PrecautionRow
	byName map[string]int
}

// NewPrecautionTable fills normalized names and builds the lookup index.
// The first row wins when a disease appears more than once.
func NewPrecautionTable(rows []PrecautionRow) *PrecautionTable {
	t := &PrecautionTable{rows: rows, byName: make(map[string]int, len(rows))}
	for i := range t.rows {
		t.rows[i].Name = NormalizeName(t.rows[i].Disease)
		if _, ok := t.byName[t.rows[i].Name]; !ok {
			t.byName[t.rows[i].Name] = i
		}
	}
	return t
}

// Lookup finds the row for a normalized disease name.
func (t *PrecautionTable) Lookup(name string) (PrecautionRow, bool) {
	if t == nil {
		return PrecautionRow{}, false
	}
	i, ok := t.byName[name]
	if !ok {
		return PrecautionRow{}, false
	}
	return t.rows[i], true
}

// Len returns the row count; zero for an absent table.
func (t *PrecautionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// SymptomCatalogue is keyed by normalized disease name. A nil catalogue is absent.
type SymptomCatalogue struct {
	rows   []SymptomCatalogueRow
	byName map[string]int
}

// NewSymptomCatalogue fills normalized names and builds the lookup index.
func NewSymptomCatalogue(rows []SymptomCatalogueRow) *SymptomCatalogue {
	c := &SymptomCatalogue{rows: rows, byName: make(map[string]int, len(rows))}
	for i := range c.rows {
		c.rows[i].Name = NormalizeName(c.rows[i].Disease)
		if _, ok := c.byName[c.rows[i].Name]; !ok {
			c.byName[c.rows[i].Name] = i
		}
	}
	return c
}

// Lookup finds the row for a normalized disease name.
func (c *SymptomCatalogue) Lookup(name string) (SymptomCatalogueRow, bool) {
	if c == nil {
		return SymptomCatalogueRow{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return SymptomCatalogueRow{}, false
	}
	return c.rows[i], true
}

// Len returns the row count; zero for an absent catalogue.
func (c *SymptomCatalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rows)
}

// FaqTable keeps rows in table order. A nil table is absent.
type FaqTable struct {
	rows []FaqRow
}

// NewFaqTable fills the normalized-question field of every row.
func NewFaqTable(rows []FaqRow) *FaqTable {
	for i := range rows {
		rows[i].NormalizedQuestion = NormalizeName(rows[i].Question)
	}
	return &FaqTable{rows: rows}
}

// Rows returns the rows in table order. Callers must not modify them.
func (t *FaqTable) Rows() []FaqRow {
	if t == nil {
		return nil
	}
	return t.rows
}

// Len returns the row count; zero for an absent table.
func (t *FaqTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// SymptomKey normalizes a symptom name to the matrix column form.
func SymptomKey(s string) string {
	return strings.ReplaceAll(NormalizeName(s), " ", "_")
}

// SymptomMatrix maps each disease row to a binary vector over a fixed symptom vocabulary.
// Flags are stored row-major in one buffer, one byte per cell; row norms are computed at
// construction.
type SymptomMatrix struct {
	diseases []string
	names    []string
	columns  []string
	colIndex map[string]int
	cells    []uint8
	norms    []float64
	byName   map[string]int
}

// NewSymptomMatrix validates the shape and precomputes norms and indexes.
// cells holds len(diseases) rows of len(columns) flags, row-major; any non-zero byte is a
// present symptom. The matrix takes ownership of cells. Column names are normalized with
// SymptomKey.
func NewSymptomMatrix(diseases, columns []string, cells []uint8) (*SymptomMatrix, error) {
	if len(cells) != len(diseases)*len(columns) {
		return nil, fmt.Errorf("symptom matrix: %d cells for %d rows of %d columns", len(cells), len(diseases), len(columns))
	}

	m := &SymptomMatrix{
		diseases: diseases,
		names:    make([]string, len(diseases)),
		columns:  make([]string, len(columns)),
		colIndex: make(map[string]int, len(columns)),
		cells:    cells,
		norms:    make([]float64, len(diseases)),
		byName:   make(map[string]int, len(diseases)),
	}

	for j, col := range columns {
		key := SymptomKey(col)
		if _, dup := m.colIndex[key]; dup {
			return nil, fmt.Errorf("symptom matrix: duplicate column %q", key)
		}
		m.columns[j] = key
		m.colIndex[key] = j
	}

	n := len(columns)
	for i := range diseases {
		set := 0
		for _, v := range cells[i*n : (i+1)*n] {
			if v != 0 {
				set++
			}
		}
		m.norms[i] = math.Sqrt(float64(set))

		m.names[i] = NormalizeName(diseases[i])
		if _, ok := m.byName[m.names[i]]; !ok {
			m.byName[m.names[i]] = i
		}
	}

	return m, nil
}

// Columns returns the symptom vocabulary in column order.
func (m *SymptomMatrix) Columns() []string { return m.columns }

// ColumnIndex returns the position of a normalized symptom key.
func (m *SymptomMatrix) ColumnIndex(key string) (int, bool) {
	j, ok := m.colIndex[key]
	return j, ok
}

// Rows returns the number of disease rows.
func (m *SymptomMatrix) Rows() int {
	if m == nil {
		return 0
	}
	return len(m.diseases)
}

// Disease returns the original disease name of row i.
func (m *SymptomMatrix) Disease(i int) string { return m.diseases[i] }

// Row returns row i as a 0/1 vector.
func (m *SymptomMatrix) Row(i int) []float64 {
	n := len(m.columns)
	out := make([]float64, n)
	for j, v := range m.cells[i*n : (i+1)*n] {
		if v != 0 {
			out[j] = 1
		}
	}
	return out
}

// RowByName returns the first row whose normalized disease name matches.
func (m *SymptomMatrix) RowByName(name string) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.byName[name]
	return i, ok
}

// PresentSymptoms lists the columns set in row i, underscores shown as spaces.
func (m *SymptomMatrix) PresentSymptoms(i int) []string {
	n := len(m.columns)
	out := []string{}
	for j, v := range m.cells[i*n : (i+1)*n] {
		if v != 0 {
			out = append(out, strings.ReplaceAll(m.columns[j], "_", " "))
		}
	}
	return out
}

// Similarities computes the cosine similarity of query against every row in one
// pass over the cell buffer. A zero query, or a zero row, scores 0.
func (m *SymptomMatrix) Similarities(query []float64) []float64 {
	n := len(m.columns)
	scores := make([]float64, len(m.diseases))
	if len(query) != n {
		return scores
	}

	var qsq float64
	for _, v := range query {
		qsq += v * v
	}
	qnorm := math.Sqrt(qsq)
	if qnorm == 0 {
		return scores
	}

	for i := range scores {
		if m.norms[i] == 0 {
			continue
		}
		row := m.cells[i*n : (i+1)*n]
		var dot float64
		for j, q := range query {
			if row[j] != 0 {
				dot += q
			}
		}
		scores[i] = dot / (qnorm * m.norms[i])
	}
	return scores
}

// ReferenceData is the immutable set of reference tables shared by every query.
// Any table may be nil when it failed to load.
type ReferenceData struct {
	Precautions *PrecautionTable
	Catalogue   *SymptomCatalogue
	FAQ         *FaqTable
	Matrix      *SymptomMatrix
	LoadedAt    time.Time
}

// Empty reports whether every table is absent.
func (r *ReferenceData) Empty() bool {
	return r == nil || (r.Precautions == nil && r.Catalogue == nil && r.FAQ == nil && r.Matrix == nil)
}
