package jpx

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/gocarina/gocsv"
)

// Master list column headers
const (
	ColCode     = "コード"
	ColName     = "銘柄名"
	ColSegment  = "市場・商品区分"
	ColSector17 = "17業種区分"
)

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MasterRow is one line of the master list. Unused columns are ignored.
type MasterRow struct {
	Code         string `csv:"コード"`
	Name         string `csv:"銘柄名"`
	SegmentLabel string `csv:"市場・商品区分"`
	Sector17     string `csv:"17業種区分"`
}

// DecodeMaster decodes the master list from a BIFF (.xls) workbook or a UTF-8 CSV export
func DecodeMaster(body []byte) ([]MasterRow, error) {
	var (
		table [][]string
		err   error
	)
	if bytes.HasPrefix(body, oleMagic) {
		table, err = readXLS(body)
	} else {
		table, err = readCSV(body)
	}
	if err != nil {
		return nil, err
	}
	return decodeTable(table)
}

func readXLS(body []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(body), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls has no sheets")
	}

	var table [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		table = append(table, cells)
	}
	return table, nil
}

func readCSV(body []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	r.FieldsPerRecord = -1
	table, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read master csv: %w", err)
	}
	return table, nil
}

// decodeTable maps the header onto MasterRow. Every required column must be present.
func decodeTable(table [][]string) ([]MasterRow, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("master list is empty")
	}

	header := make(map[string]bool, len(table[0]))
	for i, h := range table[0] {
		h = strings.TrimSpace(h)
		table[0][i] = h
		header[h] = true
	}
	for _, col := range []string{ColCode, ColName, ColSegment, ColSector17} {
		if !header[col] {
			return nil, fmt.Errorf("master list missing column %q", col)
		}
	}

	// xls 행은 길이가 제각각이라 헤더 폭에 맞춤
	width := len(table[0])
	for i := 1; i < len(table); i++ {
		switch {
		case len(table[i]) < width:
			table[i] = append(table[i], make([]string, width-len(table[i]))...)
		case len(table[i]) > width:
			table[i] = table[i][:width]
		}
	}

	var rows []MasterRow
	if err := gocsv.UnmarshalCSV(&tableReader{rows: table}, &rows); err != nil {
		return nil, fmt.Errorf("decode master list: %w", err)
	}

	out := rows[:0]
	for _, r := range rows {
		r.Code = strings.TrimSpace(r.Code)
		if r.Code == "" {
			continue
		}
		r.Name = strings.TrimSpace(r.Name)
		r.SegmentLabel = strings.TrimSpace(r.SegmentLabel)
		r.Sector17 = strings.TrimSpace(r.Sector17)
		out = append(out, r)
	}
	return out, nil
}

// tableReader feeds already-split rows to gocsv
type tableReader struct {
	rows [][]string
	pos  int
}

func (t *tableReader) Read() ([]string, error) {
	if t.pos >= len(t.rows) {
		return nil, io.EOF
	}
	row := t.rows[t.pos]
	t.pos++
	return row, nil
}

func (t *tableReader) ReadAll() ([][]string, error) {
	rest := t.rows[t.pos:]
	t.pos = len(t.rows)
	return rest, nil
}
