package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const reportName = "backup_report.xlsx"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BuildReport renders the run inventory workbook: a summary sheet plus one
// sheet per content type and one for the metadata documents.
func BuildReport(content *ContentResult, meta *MetadataResult, started, finished time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, fmt.Errorf("rename summary sheet failed: %w", err)
	}

	summary := [][]interface{}{
		{"Backup folder", content.Folder},
		{"Started (UTC)", started.UTC().Format(time.RFC3339)},
		{"Finished (UTC)", finished.UTC().Format(time.RFC3339)},
		{"Workbooks", len(content.Workbooks)},
		{"Prep Flows", len(content.PrepFlows)},
		{"Data Sources", len(content.Datasources)},
		{"Metadata documents", len(meta.Documents)},
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		return nil, err
	}

	contentSheets := []struct {
		name  string
		items []Item
	}{
		{"Workbooks", content.Workbooks},
		{"Prep Flows", content.PrepFlows},
		{"Data Sources", content.Datasources},
	}
	for _, sheet := range contentSheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("create sheet %s failed: %w", sheet.name, err)
		}
		rows := [][]interface{}{{"ID", "Name", "S3 URL"}}
		for _, item := range sheet.items {
			rows = append(rows, []interface{}{item.ID, item.Name, item.S3URL})
		}
		if err := writeRows(f, sheet.name, rows); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet("Metadata"); err != nil {
		return nil, fmt.Errorf("create sheet Metadata failed: %w", err)
	}
	rows := [][]interface{}{{"Document", "Items", "S3 URL"}}
	for _, doc := range meta.Documents {
		rows = append(rows, []interface{}{doc.Name, doc.Count, doc.S3URL})
	}
	if err := writeRows(f, "Metadata", rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render report failed: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row on %s failed: %w", sheet, err)
		}
	}
	return nil
}

// WriteReport builds the inventory workbook and uploads it to the run folder
// root.
func WriteReport(ctx context.Context, w *Writer, content *ContentResult, meta *MetadataResult, started, finished time.Time) (string, error) {
	data, err := BuildReport(content, meta, started, finished)
	if err != nil {
		return "", err
	}
	return w.Upload(ctx, content.Folder+reportName, xlsxContentType, bytes.NewReader(data), map[string]string{
		"resource-type": "report",
	})
}
