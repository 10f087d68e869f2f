package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportFilename is the attachment name of the enquiry workbook.
const ExportFilename = "enquiries.xlsx"

const exportSheet = "Enquiries"

var exportHeader = []interface{}{"ID", "Name", "Email", "Contact", "Package", "Message", "Timestamp"}

// ExportEnquiries writes every live enquiry to w as an xlsx workbook with
// one header row.
func (s *ContentService) ExportEnquiries(ctx context.Context, w io.Writer) error {
	enquiries, err := s.repo.ListEnquiries(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range enquiries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{e.ID, e.Name, e.Email, e.Contact, e.Package, e.Message, e.Timestamp.Format(time.RFC3339)}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
