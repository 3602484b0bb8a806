package record

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	createdAtColumn = "Created At"
	createdByColumn = "Created By"
)

// exportTable flattens records into a header row plus data rows. Columns are
// the journal's field labels in display order, then the two system columns.
func exportTable(journal *models.Journal, records []models.Record) ([]string, [][]string) {
	fields := journal.SortedFields()

	header := make([]string, 0, len(fields)+2)
	for _, field := range fields {
		header = append(header, field.Label)
	}
	header = append(header, createdAtColumn, createdByColumn)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		var data map[string]interface{}
		_ = json.Unmarshal(rec.Data, &data)

		row := make([]string, 0, len(header))
		for _, field := range fields {
			row = append(row, formatCell(data[field.FieldID]))
		}

		row = append(row, rec.CreatedAt.Format("2006-01-02"))
		if rec.Creator != nil {
			row = append(row, rec.Creator.FullName())
		} else {
			row = append(row, "")
		}

		rows = append(rows, row)
	}

	return header, rows
}

// BuildCSV renders records as UTF-8 CSV with a byte-order mark so
// spreadsheet applications detect the encoding.
func BuildCSV(journal *models.Journal, records []models.Record) ([]byte, error) {
	header, rows := exportTable(journal, records)

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func BuildXLSX(journal *models.Journal, records []models.Record) ([]byte, error) {
	header, rows := exportTable(journal, records)

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(journal.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	if err := writeRow(f, sheet, 1, header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ExportFilename(journal *models.Journal, format string) string {
	return fmt.Sprintf("%s_%s.%s", journal.UniqueID, time.Now().Format("2006-01-02"), format)
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

// sheetName fits the journal name into excelize's 31-char sheet name limit.
func sheetName(name string) string {
	if name == "" {
		return "Records"
	}
	runes := []rune(name)
	if len(runes) > 31 {
		return string(runes[:31])
	}
	return name
}

func formatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
