package reports

import (
	"io"

	"go-glass-dispatch/internal/models"

	"github.com/xuri/excelize/v2"
)

var orderColumns = []string{
	"Order ID", "Date", "Marketing Executive", "Customer", "Phone", "Status",
	"Item ID", "Item", "Brand", "Thickness", "Size 1", "Size 2", "Quantity", "Rate", "List Rate", "Amount",
	"Order Total", "Approved By", "Remarks",
}

var slipColumns = []string{
	"Slip ID", "Slip No", "Date", "Vehicle", "Gate Pass", "Status", "Invoice", "Confirmed By",
	"Order ID", "Customer", "Item ID", "Item", "Brand", "Thickness", "Quantity", "CD Status", "Payment Terms", "Rack",
}

// ExportOrders writes one row per order line to an .xlsx workbook.
func ExportOrders(w io.Writer, orders []models.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, toRow(orderColumns)); err != nil {
		return err
	}

	row := 2
	for _, o := range orders {
		for _, it := range o.Items {
			err := writeRow(f, sheet, row, []any{
				o.ID, o.Date, o.MarketingExecutive, o.CustomerName, o.CustomerPhone, string(o.Status),
				it.ItemID, it.ItemName, it.BrandName, it.Thickness, it.Size1, it.Size2, it.Quantity,
				it.RateGiven.InexactFloat64(), it.RateFromList.InexactFloat64(), it.Amount.InexactFloat64(),
				o.TotalAmount.InexactFloat64(), o.ApprovedBy, o.Remarks,
			})
			if err != nil {
				return err
			}
			row++
		}
	}
	return f.Write(w)
}

// ExportSlips writes one row per slip line to an .xlsx workbook.
func ExportSlips(w io.Writer, slips []models.LoadingSlip) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Loading Slips"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, toRow(slipColumns)); err != nil {
		return err
	}

	row := 2
	for _, s := range slips {
		for _, g := range s.Groups {
			for _, it := range g.Items {
				err := writeRow(f, sheet, row, []any{
					s.ID, s.SlipNo, s.Date, s.VehicleNo, s.GatePassNo, string(s.Status), s.InvoiceNo, s.ConfirmedBy,
					g.OrderID, g.CustomerName, it.ItemID, it.ItemName, it.BrandName, it.Thickness, it.Quantity,
					it.CDStatus, it.PaymentTerms, it.RackLocation,
				})
				if err != nil {
					return err
				}
				row++
			}
		}
	}
	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toRow(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}
