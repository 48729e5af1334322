package database

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Row is one data record read from a table file
type Row struct {
	Line    int      // 1-based line number in the file
	Fields  []string // always len(Header) or longer
	Padded  int      // number of trailing fields that were missing
	Resplit bool     // quoting was unbalanced; the line was split on bare commas
}

// Table is a header-prefixed, comma separated file holding one entity kind.
// Every record occupies exactly one physical line.
type Table struct {
	Name   string
	Path   string
	Header []string

	opts   Options
	syncer func() error
}

// ReadRows reads every data row of the table. A missing file is created with
// the header only. The first non-blank line is the header. Each line is
// tokenised on its own, so a malformed line never affects the lines after
// it: unbalanced quotes fall back to a bare comma split, and rows shorter
// than the header are right-padded with empty strings.
func (t *Table) ReadRows() ([]Row, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, t.WriteRows(nil)
		}
		return nil, fmt.Errorf("failed to open %s: %w", t.Name, err)
	}
	defer f.Close()

	var rows []Row
	br := bufio.NewReader(f)
	headerSeen := false
	line := 0
	for {
		text, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("failed to read %s: %w", t.Name, readErr)
		}
		if text == "" && readErr != nil {
			break
		}
		line++
		text = strings.TrimRight(text, "\r\n")

		switch {
		case strings.TrimSpace(text) == "":
		case !headerSeen:
			headerSeen = true
		default:
			if row, ok := t.parseRow(line, text); ok {
				rows = append(rows, row)
			}
		}
		if readErr != nil {
			break
		}
	}
	return rows, nil
}

func (t *Table) parseRow(line int, text string) (Row, bool) {
	record, resplit := splitLine(text)
	if isBlank(record) {
		return Row{}, false
	}
	row := Row{Line: line, Fields: record, Resplit: resplit}
	if missing := len(t.Header) - len(record); missing > 0 {
		row.Fields = append(record, make([]string, missing)...)
		row.Padded = missing
	}
	return row, true
}

// splitLine tokenises one line as a CSV record. Lines whose quoting does not
// parse are split on every comma, which is how unquoted legacy files were
// written.
func splitLine(text string) ([]string, bool) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return strings.Split(text, ","), true
	}
	return record, false
}

// WriteRows rewrites the whole table: header first, then records. The file
// is replaced atomically through a temporary file in the same directory.
func (t *Table) WriteRows(records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(t.Path), "."+t.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", t.Name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := t.encode(bw, records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", t.Name, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", t.Name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", t.Name, err)
	}
	if err := os.Rename(tmpName, t.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", t.Name, err)
	}
	tmpName = ""

	if t.syncer != nil {
		return t.syncer()
	}
	return nil
}

func (t *Table) encode(w io.Writer, records [][]string) error {
	if t.opts.LegacyEscaping {
		if _, err := io.WriteString(w, strings.Join(t.Header, ",")+"\n"); err != nil {
			return err
		}
		for _, rec := range records {
			escaped := make([]string, len(rec))
			for i, field := range rec {
				escaped[i] = legacyEscape(field)
			}
			if _, err := io.WriteString(w, strings.Join(escaped, ",")+"\n"); err != nil {
				return err
			}
		}
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, rec := range records {
		flat := make([]string, len(rec))
		for i, field := range rec {
			flat[i] = lineBreakReplacer.Replace(field)
		}
		if err := cw.Write(flat); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// lineBreakReplacer keeps every record on one physical line
var lineBreakReplacer = strings.NewReplacer("\r", " ", "\n", " ")

var legacyReplacer = strings.NewReplacer(",", " ", "\r", " ", "\n", " ", `"`, "'")

// legacyEscape reproduces the legacy on-disk format: delimiters become
// spaces and double quotes become single quotes
func legacyEscape(s string) string {
	return legacyReplacer.Replace(s)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
