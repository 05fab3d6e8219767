package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const readBufferSize = 64 << 10

var (
	unnamedColumn = regexp.MustCompile(`(?i)^unnamed`)
	byteOrderMark = []byte("\xef\xbb\xbf")
)

// header is a cleaned CSV header: trimmed names without index columns.
type header []string

// column returns the index of the first header equal to name, ignoring case.
func (h header) column(name string) int {
	for i, col := range h {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// columnsWithPrefix returns header indexes starting with prefix, ignoring case, in header order.
func (h header) columnsWithPrefix(prefix string) []int {
	var out []int
	for i, col := range h {
		if len(col) >= len(prefix) && strings.EqualFold(col[:len(prefix)], prefix) {
			out = append(out, i)
		}
	}
	return out
}

// table is a fully read CSV, used for the small tables.
type table struct {
	header header
	rows   [][]string
}

// csvStream yields cleaned rows one at a time: padded to the header width, empty rows
// dropped, NaN placeholders blanked. Malformed lines are skipped and counted.
type csvStream struct {
	cr      *csv.Reader
	header  header
	keep    []int
	skipped int
}

// openStream opens a CSV member. The member is scanned once to decide the encoding and
// opened again for reading, so nothing is buffered whole. Input that is not valid UTF-8
// is decoded as latin-1.
func openStream(fsys fs.FS, name string) (*csvStream, io.Closer, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, nil, err
	}
	valid, err := isUTF8(f)
	f.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("scanning csv: %w", err)
	}

	f, err = fsys.Open(name)
	if err != nil {
		return nil, nil, err
	}
	s, err := newCSVStream(f, !valid)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return s, f, nil
}

func isUTF8(r io.Reader) (bool, error) {
	br := bufio.NewReaderSize(r, readBufferSize)
	for {
		c, size, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if c == utf8.RuneError && size == 1 {
			return false, nil
		}
	}
}

func newCSVStream(r io.Reader, latin1 bool) (*csvStream, error) {
	br := bufio.NewReaderSize(r, readBufferSize)
	if bom, _ := br.Peek(len(byteOrderMark)); string(bom) == string(byteOrderMark) {
		br.Discard(len(byteOrderMark))
	}

	var src io.Reader = br
	if latin1 {
		src = charmap.ISO8859_1.NewDecoder().Reader(br)
	}

	cr := csv.NewReader(src)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	raw, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	// Index columns written by dataframe exports are dropped.
	s := &csvStream{cr: cr}
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" || unnamedColumn.MatchString(h) {
			continue
		}
		s.keep = append(s.keep, i)
		s.header = append(s.header, h)
	}
	return s, nil
}

// next fills row, which must have one slot per header column, with the next non-empty
// row. It returns io.EOF when the input is exhausted.
func (s *csvStream) next(row []string) error {
	for {
		record, err := s.cr.Read()
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.skipped++
				continue
			}
			return fmt.Errorf("reading csv: %w", err)
		}

		empty := true
		for j, src := range s.keep {
			row[j] = ""
			if src >= len(record) {
				continue
			}
			cell := cleanCell(record[src])
			row[j] = cell
			if cell != "" {
				empty = false
			}
		}
		if !empty {
			return nil
		}
	}
}

// readTable drains a stream into memory.
func readTable(s *csvStream) (*table, error) {
	t := &table{header: s.header}
	for {
		row := make([]string, len(s.header))
		err := s.next(row)
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		t.rows = append(t.rows, row)
	}
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}
