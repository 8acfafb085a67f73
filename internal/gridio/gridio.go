// Package gridio loads spreadsheet and CSV files into xlform grids.
package gridio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/gridwerk/xlform-go/xlform"
)

// Options controls how a file is read.
type Options struct {
	// Sheet is the zero-based worksheet index. Ignored for CSV files.
	Sheet int

	// Delimiter is the CSV field separator. Zero means comma.
	Delimiter rune

	// Encoding names the character encoding of a CSV file. Empty means
	// UTF-8. Legacy single-byte encodings are decoded via charmap.
	Encoding string
}

// Load reads the file at path into a grid. The loader is chosen by file
// extension: .csv, .xls or .xlsx.
func Load(path string, opts Options) (*xlform.MapGrid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path, opts)
	case ".xlsx":
		return loadXLSX(path, opts)
	case ".xls":
		return loadXLS(path, opts)
	default:
		return nil, fmt.Errorf("%q is not a loadable grid format", filepath.Ext(path))
	}
}

func loadCSV(path string, opts Options) (*xlform.MapGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	var src io.Reader = f
	if dec != nil {
		src = dec.Reader(f)
	}

	r := csv.NewReader(src)
	if opts.Delimiter != 0 {
		r.Comma = opts.Delimiter
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	g := xlform.NewMapGrid()
	for i, record := range records {
		for j, field := range record {
			setTyped(g, i+1, j+1, field)
		}
	}
	return g, nil
}

func loadXLSX(path string, opts Options) (*xlform.MapGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if opts.Sheet < 0 || opts.Sheet >= len(sheets) {
		return nil, fmt.Errorf("sheet index %d out of range (%d sheets)", opts.Sheet, len(sheets))
	}
	rows, err := f.GetRows(sheets[opts.Sheet])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[opts.Sheet], err)
	}

	g := xlform.NewMapGrid()
	for i, row := range rows {
		for j, cell := range row {
			setTyped(g, i+1, j+1, cell)
		}
	}
	return g, nil
}

func loadXLS(path string, opts Options) (*xlform.MapGrid, error) {
	wb, err := xls.Open(path, "")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if opts.Sheet < 0 || opts.Sheet >= wb.NumSheets() {
		return nil, fmt.Errorf("sheet index %d out of range (%d sheets)", opts.Sheet, wb.NumSheets())
	}
	sheet := wb.GetSheet(opts.Sheet)
	if sheet == nil {
		return nil, fmt.Errorf("sheet index %d could not be read", opts.Sheet)
	}

	g := xlform.NewMapGrid()
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := 0; j <= row.LastCol(); j++ {
			setTyped(g, i+1, j+1, row.Col(j))
		}
	}
	return g, nil
}

// decoderFor maps an encoding name to a charmap decoder. A nil decoder
// means the input is already UTF-8.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// setTyped stores raw cell text under the closest spreadsheet type: blank
// cells are skipped, then numbers, logicals and error literals are tried
// before falling back to text.
func setTyped(g *xlform.MapGrid, row, col int, raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		g.SetNumber(row, col, n)
		return
	}
	if strings.EqualFold(trimmed, "TRUE") {
		g.SetBool(row, col, true)
		return
	}
	if strings.EqualFold(trimmed, "FALSE") {
		g.SetBool(row, col, false)
		return
	}
	if code, ok := xlform.ParseErrorCode(trimmed); ok {
		g.SetError(row, col, code)
		return
	}
	g.SetText(row, col, raw)
}
