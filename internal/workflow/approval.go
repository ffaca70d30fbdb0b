package workflow

import (
	"context"
	"strings"
	"time"

	"go-glass-dispatch/internal/models"
)

// Approve clears a pending order for loading.
func (s *Service) Approve(ctx context.Context, actor Actor, orderID string, version int, remarks string) (models.Order, error) {
	return s.decide(ctx, actor, orderID, version, "approve", models.OrderApproved, remarks,
		func(o *models.Order, now time.Time) {
			o.ApprovedBy = actor.Name
			o.ApprovedAt = &now
			o.Remarks = remarks
		})
}

// Hold parks a pending order. The reason doubles as the remarks.
func (s *Service) Hold(ctx context.Context, actor Actor, orderID string, version int, reason string) (models.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return models.Order{}, invalid(ErrMissingField, "hold reason")
	}
	return s.decide(ctx, actor, orderID, version, "hold", models.OrderHold, reason,
		func(o *models.Order, now time.Time) {
			o.HoldReason = reason
			o.Remarks = reason
		})
}

// Cancel withdraws a pending order.
func (s *Service) Cancel(ctx context.Context, actor Actor, orderID string, version int, remarks string) (models.Order, error) {
	return s.decide(ctx, actor, orderID, version, "cancel", models.OrderCancelled, remarks,
		func(o *models.Order, now time.Time) {
			o.CancelledBy = actor.Name
			o.CancelledAt = &now
			o.Remarks = remarks
		})
}

// decide runs one of the three finance decisions. Only pending orders can be
// decided; anything else is rejected without touching the order.
func (s *Service) decide(
	ctx context.Context,
	actor Actor,
	orderID string,
	version int,
	action string,
	to models.OrderStatus,
	note string,
	stamp func(o *models.Order, now time.Time),
) (models.Order, error) {
	var from models.OrderStatus

	updated, err := s.orders.Update(ctx, orderID, func(o *models.Order) error {
		if err := checkVersion(o.Version, version); err != nil {
			return err
		}
		if !o.Status.CanDecide() {
			return invalid(ErrInvalidTransition, "cannot %s order %s: it is %s", action, o.ID, o.Status)
		}
		from = o.Status
		o.Status = to
		stamp(o, s.now())
		return nil
	})
	if err != nil {
		return models.Order{}, notFound("order", orderID, err)
	}

	s.record(ctx, models.AuditLog{
		EntityType: models.EntityOrder,
		EntityID:   orderID,
		Action:     action,
		FromStatus: string(from),
		ToStatus:   string(to),
		Actor:      actor.Name,
		Note:       note,
	})
	return updated, nil
}
