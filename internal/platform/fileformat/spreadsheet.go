package fileformat

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const xlsMaxRows = 100000

// XLSX reads the first worksheet and writes a single "Sheet1".
type XLSX struct{}

func (XLSX) ReadTable(data []byte) (*Table, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	return fromGrid(rows), nil
}

func (XLSX) WriteTable(t *Table) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	for i, row := range t.grid() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := file.SetSheetRow(sheet, cell, &vals); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i, err)
		}
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// XLS reads legacy BIFF workbooks. Writing is not supported.
type XLS struct{}

func (XLS) ReadTable(data []byte) (*Table, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}
	if workbook.NumSheets() > 1 {
		return nil, fmt.Errorf("multiple worksheets found")
	}
	return fromGrid(workbook.ReadAllCells(xlsMaxRows)), nil
}

func (XLS) WriteTable(*Table) ([]byte, error) {
	return nil, &UnsupportedFormatError{Ext: ".xls", Op: "write"}
}
