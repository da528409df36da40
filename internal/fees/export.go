package fees

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Fees"

var sideColumns = []string{
	"Scope", "Country", "State", "City", "Town",
	"Percentage", "Max Cap / Deal", "Max Cap / Month", "Fixed Fee", "VAT", "Gateway Fee",
}

func exportHeader() []interface{} {
	header := []interface{}{"Fee ID", "Name", "Type", "Status", "Menu ID", "Pairing ID"}
	for _, side := range []string{"Vendor", "Consumer"} {
		for _, col := range sideColumns {
			header = append(header, side+" "+col)
		}
	}
	return header
}

func optID(id *uint) interface{} {
	if id == nil {
		return ""
	}
	return *id
}

func detailCells(d *models.FeeDetail) []interface{} {
	cells := make([]interface{}, len(sideColumns))
	for i := range cells {
		cells[i] = ""
	}
	if d == nil {
		return cells
	}

	cells[0] = "GLOBAL"
	if d.Location != nil {
		cells[0] = "LOCATION"
		cells[1] = optID(d.Location.CountryID)
		cells[2] = optID(d.Location.StateID)
		cells[3] = optID(d.Location.CityID)
		cells[4] = d.Location.Town
	}
	for i, v := range []string{
		d.Percentage.String(), d.MaxCapPerDeal.String(), d.MaxCapPerMonth.String(),
		d.FixedFee.String(), d.VAT.String(), d.PaymentGatewayFee.String(),
	} {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			cells[5+i] = v
			continue
		}
		cells[5+i] = f
	}
	return cells
}

func exportRows(fee models.Fee) [][]interface{} {
	base := []interface{}{fee.ID, fee.Name, string(fee.Type), string(fee.Status), optID(fee.MenuID)}
	if len(fee.Pairings) == 0 {
		row := append(append([]interface{}{}, base...), "")
		row = append(row, detailCells(nil)...)
		return [][]interface{}{append(row, detailCells(nil)...)}
	}

	rows := make([][]interface{}, 0, len(fee.Pairings))
	for _, p := range fee.Pairings {
		row := append(append([]interface{}{}, base...), p.ID)
		row = append(row, detailCells(p.VendorDetail)...)
		row = append(row, detailCells(p.ConsumerDetail)...)
		rows = append(rows, row)
	}
	return rows
}

// ExportFees writes every fee tree as an XLSX workbook: one row per pairing,
// and a single row without pairing columns for a fee that has none.
func (s *Service) ExportFees(ctx context.Context, w io.Writer) error {
	var fees []models.Fee
	if err := s.db.WithContext(ctx).Scopes(withPairings).Order("id ASC").Find(&fees).Error; err != nil {
		s.logFailure("export", err)
		return apperr.FromDB(err, "could not load fees for export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return apperr.Persistence(err, "could not prepare export sheet")
	}

	write := func(rowNum int, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(exportSheet, cell, &values)
	}

	if err := write(1, exportHeader()); err != nil {
		return apperr.Persistence(err, "could not write export header")
	}
	rowNum := 2
	for _, fee := range fees {
		for _, row := range exportRows(fee) {
			if err := write(rowNum, row); err != nil {
				return apperr.Persistence(err, "could not write export row %d", rowNum)
			}
			rowNum++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return apperr.Persistence(err, "could not write export")
	}
	s.succeeded("export")
	s.logger.Info("fees exported", zap.Int("fees", len(fees)), zap.Int("rows", rowNum-2))
	return nil
}

// ExportFileName is the attachment name used by the export endpoint.
func ExportFileName(day string) string {
	return fmt.Sprintf("fees-%s.xlsx", day)
}
