package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"forecast-go/internal/state"

	"github.com/xuri/excelize/v2"
)

// FileSource reads datasets from {DataDir}/{file}
type FileSource struct {
	DataDir string
}

func NewFileSource(dataDir string) *FileSource {
	return &FileSource{DataDir: dataDir}
}

func (s *FileSource) Location(ref string) string {
	return filepath.Join(s.DataDir, ref)
}

// Load reads a .csv or .xlsx file. Unknown extensions are parsed as CSV.
func (s *FileSource) Load(ctx context.Context, ref string) (*state.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// refs name files inside DataDir; anything escaping it does not exist
	if !filepath.IsLocal(ref) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	path := s.Location(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var df *state.DataFrame
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		df, err = ParseXLSX(data)
	default:
		df, err = ParseCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	df.FilePath = path
	df.FileName = ref
	return df, nil
}

// ParseCSV parses CSV bytes with a header row. A single-column header that
// contains semicolons is reparsed with ';' as separator.
func ParseCSV(data []byte) (*state.DataFrame, error) {
	df, err := parseCSVWith(data, ',')
	if err == nil && len(df.Headers) == 1 && strings.Contains(df.Headers[0], ";") {
		return parseCSVWith(data, ';')
	}
	if err != nil {
		// Try with semicolon separator
		if alt, altErr := parseCSVWith(data, ';'); altErr == nil {
			return alt, nil
		}
	}
	return df, err
}

func parseCSVWith(data []byte, comma rune) (*state.DataFrame, error) {
	// Strip UTF-8 BOM left by spreadsheet exports
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Allow variable fields
	reader.LazyQuotes = true    // Allow bare quotes in non-quoted fields
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}

	// Clean headers
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	rows := [][]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Try to continue on malformed rows
			continue
		}
		rows = append(rows, record)
	}

	return &state.DataFrame{
		Headers: headers,
		Rows:    rows,
	}, nil
}

// ParseXLSX reads the first sheet of a workbook; its first row is the header.
func ParseXLSX(data []byte) (*state.DataFrame, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	headers := make([]string, len(all[0]))
	for i, h := range all[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(all)-1)
	for _, r := range all[1:] {
		rows = append(rows, r)
	}

	return &state.DataFrame{
		Headers: headers,
		Rows:    rows,
	}, nil
}
