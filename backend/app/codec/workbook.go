package codec

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Sheet names used by backup payloads.
const (
	SheetStructures    = "Structures"
	SheetElements      = "Elements"
	SheetRecords       = "Records"
	SheetStructureMaps = "StructureMaps"
)

// Row is a flat column-name to string-value mapping. Nested JSON fields are
// carried as their serialized form.
type Row = map[string]string

// sheetColumns fixes the column order for the sheets this system writes, so
// archives stay byte-comparable between runs.
var sheetColumns = map[string][]string{
	SheetStructures:    {"id", "name", "title", "description", "ownerId", "visibility", "createdAt", "updatedAt", "imageUrl", "markmapShowWbs"},
	SheetElements:      {"id", "name", "structureId", "parentId", "recordId", "elementLinkId", "orderIndex", "createdAt", "updatedAt"},
	SheetRecords:       {"id", "metadata", "tags", "createdAt", "updatedAt"},
	SheetStructureMaps: {"id", "structureId", "name", "description", "createdAt", "updatedAt"},
}

var sheetOrder = []string{SheetStructures, SheetElements, SheetRecords, SheetStructureMaps}

// EncodeWorkbook renders one tabular sheet per map key and returns the
// workbook bytes.
func EncodeWorkbook(sheets map[string][]Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	names := make([]string, 0, len(sheets))
	for _, name := range sheetOrder {
		if _, ok := sheets[name]; ok {
			names = append(names, name)
		}
	}
	for name := range sheets {
		if _, known := sheetColumns[name]; !known {
			names = append(names, name)
		}
	}

	for _, name := range names {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		cols := columnsFor(name, sheets[name])
		header := make([]interface{}, len(cols))
		for i, c := range cols {
			header[i] = c
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, fmt.Errorf("write header %s: %w", name, err)
		}
		for i, row := range sheets[name] {
			values := make([]interface{}, len(cols))
			for j, c := range cols {
				values[j] = row[c]
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return nil, fmt.Errorf("cell for row %d: %w", i, err)
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return nil, fmt.Errorf("write row %d of %s: %w", i, name, err)
			}
		}
	}

	// The implicit default sheet is only kept when nothing else was written,
	// since a workbook cannot be empty.
	if len(names) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeWorkbook is the inverse of EncodeWorkbook. Sheets absent from the
// workbook simply have no entry, so lookups yield an empty sequence.
func DecodeWorkbook(data []byte) (map[string][]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	out := make(map[string][]Row)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		header := rows[0]
		decoded := make([]Row, 0, len(rows)-1)
		for _, raw := range rows[1:] {
			row := make(Row, len(header))
			for i, col := range header {
				if i < len(raw) {
					row[col] = raw[i]
				} else {
					row[col] = ""
				}
			}
			decoded = append(decoded, row)
		}
		out[name] = decoded
	}
	return out, nil
}

func columnsFor(name string, rows []Row) []string {
	if cols, ok := sheetColumns[name]; ok {
		return cols
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range rows {
		for col := range row {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	sort.Strings(cols)
	return cols
}
