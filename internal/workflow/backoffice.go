package workflow

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"go-glass-dispatch/internal/models"
)

// SlipUpdate carries the back-office edits to a confirmed slip. Nil fields
// and an empty Status are left as they are.
type SlipUpdate struct {
	InvoiceNo  *string
	GatePassNo *string
	Status     models.SlipStatus
}

// UpdateSlip applies back-office edits. Status may only move forward along
// confirmed, loading, dispatched, partial, delivered, and only to a status the
// back office is allowed to set.
func (s *Service) UpdateSlip(ctx context.Context, actor Actor, id string, version int, upd SlipUpdate) (models.LoadingSlip, error) {
	if upd.Status != "" {
		if !upd.Status.IsValid() {
			return models.LoadingSlip{}, invalid(ErrInvalidStatus, "%q", upd.Status)
		}
		if !upd.Status.IsBackOfficeTarget() {
			return models.LoadingSlip{}, invalid(ErrInvalidTransition, "back office cannot set %s", upd.Status)
		}
	}

	var from models.SlipStatus
	updated, err := s.slips.Update(ctx, id, func(sl *models.LoadingSlip) error {
		if err := checkVersion(sl.Version, version); err != nil {
			return err
		}
		from = sl.Status
		if upd.Status != "" && !sl.Status.CanMoveTo(upd.Status) {
			return invalid(ErrInvalidTransition, "slip %s cannot go from %s to %s", sl.ID, sl.Status, upd.Status)
		}
		if upd.InvoiceNo != nil {
			sl.InvoiceNo = strings.TrimSpace(*upd.InvoiceNo)
		}
		if upd.GatePassNo != nil {
			sl.GatePassNo = strings.TrimSpace(*upd.GatePassNo)
		}
		if upd.Status != "" {
			sl.Status = upd.Status
		}
		now := s.now()
		sl.UpdatedBy = actor.Name
		sl.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return models.LoadingSlip{}, notFound("loading slip", id, err)
	}

	if updated.Status != from {
		s.record(ctx, models.AuditLog{
			EntityType: models.EntitySlip, EntityID: id, Action: "status",
			FromStatus: string(from), ToStatus: string(updated.Status), Actor: actor.Name,
		})
	}
	return updated, nil
}

// ViewSlip fetches one slip.
func (s *Service) ViewSlip(ctx context.Context, id string) (models.LoadingSlip, error) {
	sl, err := s.slips.Get(ctx, id)
	if err != nil {
		return models.LoadingSlip{}, notFound("loading slip", id, err)
	}
	return sl, nil
}

// ListSlips returns every slip, newest first, or only those in status.
func (s *Service) ListSlips(ctx context.Context, status models.SlipStatus) ([]models.LoadingSlip, error) {
	if status != "" && !status.IsValid() {
		return nil, invalid(ErrInvalidStatus, "%q", status)
	}
	slips, err := s.slips.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return slips, nil
	}
	filtered := slips[:0]
	for _, sl := range slips {
		if sl.Status == status {
			filtered = append(filtered, sl)
		}
	}
	return filtered, nil
}

// PrintSlip renders a slip as a plain-text manifest for the loading bay.
func (s *Service) PrintSlip(ctx context.Context, id string, w io.Writer) error {
	sl, err := s.ViewSlip(ctx, id)
	if err != nil {
		return err
	}
	return WriteSlip(w, sl)
}

// WriteSlip writes the manifest of sl to w.
func WriteSlip(w io.Writer, sl models.LoadingSlip) error {
	fmt.Fprintf(w, "LOADING SLIP %s\n", sl.SlipNo)
	fmt.Fprintf(w, "Date: %s   Vehicle: %s   Gate pass: %s\n", sl.Date, sl.VehicleNo, dash(sl.GatePassNo))
	fmt.Fprintf(w, "Status: %s   Invoice: %s   Confirmed by: %s\n\n", sl.Status, dash(sl.InvoiceNo), dash(sl.ConfirmedBy))

	for _, g := range sl.Groups {
		fmt.Fprintf(w, "Order %s  %s  %s  %s\n", g.OrderID, g.CustomerName, g.CustomerPhone, g.CustomerAddress)

		table := tablewriter.NewWriter(w)
		table.Header("#", "Item", "Brand", "Thickness", "Size", "Qty", "CD", "Terms", "Rack")
		for _, it := range g.Items {
			if err := table.Append([]string{
				strconv.Itoa(it.ItemID),
				it.ItemName,
				it.BrandName,
				it.Thickness,
				it.Size1 + " x " + it.Size2,
				strconv.Itoa(it.Quantity),
				dash(it.CDStatus),
				dash(it.PaymentTerms),
				dash(it.RackLocation),
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "Total lines: %d\n", sl.ItemCount())
	return err
}

func dash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
