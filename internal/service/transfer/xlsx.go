package transfer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "Tasks"

// encodeXLSX renders rows (header included) as an XLSX workbook with a
// single sheet.
func encodeXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(xlsxSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeXLSX parses the first sheet of an XLSX workbook into records keyed
// by the header row.
func decodeXLSX(data []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return recordsFromRows(rows), nil
}
