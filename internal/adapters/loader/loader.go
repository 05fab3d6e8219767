// Package loader reads the reference datasets from a zip archive or a directory.
package loader

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

// ctxCheckRows is how often the matrix reader checks for cancellation.
const ctxCheckRows = 4096

// Members names the CSV file of each table inside the dataset source.
type Members struct {
	Precautions string
	Catalogue   string
	FAQ         string
	Matrix      string
}

// DefaultMembers returns the archive layout the application ships with.
func DefaultMembers() Members {
	return Members{
		Precautions: "chatdata/Disease precaution.csv",
		Catalogue:   "chatdata/DiseaseAndSymptoms.csv",
		FAQ:         "chatdata/medquad.csv",
		Matrix:      "chatdata/Final_Augmented_dataset_Diseases_and_Symptoms.csv",
	}
}

// DatasetLoader implements ports.DatasetLoader.
// path may be a zip archive or a directory holding the same member paths.
type DatasetLoader struct {
	path    string
	members Members
	logger  *slog.Logger
}

// NewDatasetLoader creates a loader for path using the default member layout.
func NewDatasetLoader(path string, logger *slog.Logger) *DatasetLoader {
	return NewDatasetLoaderWithMembers(path, DefaultMembers(), logger)
}

// NewDatasetLoaderWithMembers creates a loader with custom member paths.
func NewDatasetLoaderWithMembers(path string, members Members, logger *slog.Logger) *DatasetLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetLoader{path: path, members: members, logger: logger}
}

// Load reads every table. Only an unreadable source is an error; a missing or malformed
// member leaves that table nil and logs a warning.
func (l *DatasetLoader) Load(ctx context.Context) (*entities.ReferenceData, error) {
	fsys, closeFn, err := l.open()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	ref := &entities.ReferenceData{}

	if t := l.readMember(ctx, fsys, l.members.Precautions); t != nil {
		ref.Precautions = buildPrecautions(t)
	}
	if t := l.readMember(ctx, fsys, l.members.Catalogue); t != nil {
		ref.Catalogue = buildCatalogue(t)
	}
	if t := l.readMember(ctx, fsys, l.members.FAQ); t != nil {
		ref.FAQ = buildFAQ(t)
	}
	if m := l.readMatrix(ctx, fsys, l.members.Matrix); m != nil {
		ref.Matrix = m
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref.LoadedAt = time.Now()
	return ref, nil
}

// open returns the dataset source as a file system.
func (l *DatasetLoader) open() (fs.FS, func() error, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset source: %w", err)
	}
	if info.IsDir() {
		return os.DirFS(l.path), func() error { return nil }, nil
	}

	zr, err := zip.OpenReader(l.path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset archive %s: %w", l.path, err)
	}
	return zr, zr.Close, nil
}

func (l *DatasetLoader) readMember(ctx context.Context, fsys fs.FS, name string) *table {
	if ctx.Err() != nil || name == "" {
		return nil
	}

	s, closer, err := openStream(fsys, name)
	if err != nil {
		l.logger.WarnContext(ctx, "dataset member unreadable", "member", name, "error", err)
		return nil
	}
	defer closer.Close()

	t, err := readTable(s)
	if err != nil {
		l.logger.WarnContext(ctx, "dataset member unreadable", "member", name, "error", err)
		return nil
	}
	l.logSkipped(ctx, name, s.skipped)
	l.logger.DebugContext(ctx, "dataset member loaded", "member", name, "rows", len(t.rows), "columns", len(t.header))
	return t
}

// readMatrix streams the symptom matrix straight into its cell buffer.
func (l *DatasetLoader) readMatrix(ctx context.Context, fsys fs.FS, name string) *entities.SymptomMatrix {
	if ctx.Err() != nil || name == "" {
		return nil
	}

	s, closer, err := openStream(fsys, name)
	if err != nil {
		l.logger.WarnContext(ctx, "dataset member unreadable", "member", name, "error", err)
		return nil
	}
	defer closer.Close()

	m, err := buildMatrix(ctx, s)
	if err != nil {
		l.logger.WarnContext(ctx, "symptom matrix unusable", "member", name, "error", err)
		return nil
	}
	l.logSkipped(ctx, name, s.skipped)
	l.logger.DebugContext(ctx, "dataset member loaded", "member", name, "rows", m.Rows(), "columns", len(m.Columns()))
	return m
}

func (l *DatasetLoader) logSkipped(ctx context.Context, name string, skipped int) {
	if skipped > 0 {
		l.logger.WarnContext(ctx, "skipped malformed csv lines", "member", name, "lines", skipped)
	}
}

func buildPrecautions(t *table) *entities.PrecautionTable {
	disease := t.header.column("Disease")
	slots := t.header.columnsWithPrefix("Precaution")
	if disease < 0 {
		return nil
	}

	rows := make([]entities.PrecautionRow, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, entities.PrecautionRow{Disease: r[disease], Precautions: pick(r, slots)})
	}
	return entities.NewPrecautionTable(rows)
}

func buildCatalogue(t *table) *entities.SymptomCatalogue {
	disease := t.header.column("Disease")
	slots := t.header.columnsWithPrefix("Symptom")
	if disease < 0 {
		return nil
	}

	rows := make([]entities.SymptomCatalogueRow, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, entities.SymptomCatalogueRow{Disease: r[disease], Symptoms: pick(r, slots)})
	}
	return entities.NewSymptomCatalogue(rows)
}

func buildFAQ(t *table) *entities.FaqTable {
	question, answer := t.header.column("question"), t.header.column("answer")
	if question < 0 || answer < 0 {
		return nil
	}
	source, focus := t.header.column("source"), t.header.column("focus_area")

	rows := make([]entities.FaqRow, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, entities.FaqRow{
			Question:  r[question],
			Answer:    r[answer],
			Source:    cell(r, source),
			FocusArea: cell(r, focus),
		})
	}
	return entities.NewFaqTable(rows)
}

// buildMatrix reads the disease column ("diseases", else the first column) and treats
// every other column as a symptom flag. A cell is set when it parses as a non-zero number;
// a repeated symptom column keeps its first occurrence.
func buildMatrix(ctx context.Context, s *csvStream) (*entities.SymptomMatrix, error) {
	if len(s.header) < 2 {
		return nil, fmt.Errorf("need a disease column and at least one symptom column, got %d columns", len(s.header))
	}
	disease := s.header.column("diseases")
	if disease < 0 {
		disease = 0
	}

	var (
		columns []string
		src     []int
		seen    = map[string]bool{}
	)
	for i, h := range s.header {
		key := entities.SymptomKey(h)
		if i == disease || seen[key] {
			continue
		}
		seen[key] = true
		columns = append(columns, h)
		src = append(src, i)
	}

	var (
		diseases []string
		cells    []uint8
		row      = make([]string, len(s.header))
	)
	for n := 0; ; n++ {
		if n%ctxCheckRows == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		err := s.next(row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if row[disease] == "" {
			continue
		}
		for _, i := range src {
			cells = append(cells, flag(row[i]))
		}
		// Cells share the line's backing string; clone so the line can be freed.
		diseases = append(diseases, strings.Clone(row[disease]))
	}
	return entities.NewSymptomMatrix(diseases, columns, cells)
}

func flag(cell string) uint8 {
	switch cell {
	case "0", "":
		return 0
	case "1":
		return 1
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil && v != 0 {
		return 1
	}
	return 0
}

func pick(row []string, idx []int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, row[i])
	}
	return out
}

func cell(row []string, i int) string {
	if i < 0 {
		return ""
	}
	return row[i]
}
