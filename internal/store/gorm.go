package store

import (
	"context"
	"errors"
	"time"

	"go-glass-dispatch/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewGorm returns stores backed by a gorm connection. The schema must already
// be migrated (see database.Migrate).
func NewGorm(db *gorm.DB, now Clock) Stores {
	if now == nil {
		now = time.Now
	}
	return Stores{
		Orders: &GormOrders{db: db, now: now},
		Slips:  &GormSlips{db: db, now: now},
		Users:  &GormUsers{db: db, now: now},
		Audit:  &GormAudit{db: db, now: now},
	}
}

// lockRow takes a row lock where the dialect has one. SQLite serialises
// writers on its own.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func byRow(db *gorm.DB) *gorm.DB      { return db.Order("row_id") }
func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position") }

// --- ORDERS ---

type GormOrders struct {
	db  *gorm.DB
	now Clock
}

func (s *GormOrders) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", byRow).
		Order("created_at desc, id desc").
		Find(&orders).Error
	return orders, err
}

func (s *GormOrders) Get(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).Preload("Items", byRow).First(&o, "id = ?", id).Error
	return o, notFound(err)
}

func (s *GormOrders) ListBySource(ctx context.Context, sourceID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", byRow).
		Where("source_order_id = ?", sourceID).
		Order("created_at, id").
		Find(&orders).Error
	return orders, err
}

func (s *GormOrders) Add(ctx context.Context, o models.Order) (models.Order, error) {
	o = o.Clone()
	prepareOrder(&o, s.now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateID
		}
		return tx.Create(&o).Error
	})
	if err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func (s *GormOrders) Update(ctx context.Context, id string, patch OrderPatch) (models.Order, error) {
	var out models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Load and lock the current row
		var cur models.Order
		if err := lockRow(tx).Preload("Items", byRow).First(&cur, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		// 2. Let the caller change a copy
		next := cur.Clone()
		if err := patch(&next); err != nil {
			return err
		}
		next.ID = cur.ID
		next.CreatedAt = cur.CreatedAt
		next.Version = cur.Version + 1
		next.UpdatedAt = advance(cur.UpdatedAt, s.now())

		// 3. Write the header only if nobody else bumped the version
		res := tx.Model(&models.Order{ID: id}).
			Where("version = ?", cur.Version).
			Select("*").
			Omit("ID", "CreatedAt", clause.Associations).
			Updates(&next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		// 4. Replace the item rows
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range next.Items {
			next.Items[i].RowID = 0
			next.Items[i].OrderID = id
		}
		if len(next.Items) > 0 {
			if err := tx.Create(&next.Items).Error; err != nil {
				return err
			}
		}

		out = next
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return out, nil
}

func (s *GormOrders) Delete(ctx context.Context, id string, check func(models.Order) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Order
		if err := lockRow(tx).Preload("Items", byRow).First(&cur, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if check != nil {
			if err := check(cur); err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", id).Error
	})
}

// --- LOADING SLIPS ---

type GormSlips struct {
	db  *gorm.DB
	now Clock
}

func (s *GormSlips) preload(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Groups", byPosition).Preload("Groups.Items", byPosition)
}

func (s *GormSlips) List(ctx context.Context) ([]models.LoadingSlip, error) {
	var slips []models.LoadingSlip
	err := s.preload(s.db.WithContext(ctx)).Order("created_at desc, id desc").Find(&slips).Error
	return slips, err
}

func (s *GormSlips) Get(ctx context.Context, id string) (models.LoadingSlip, error) {
	var slip models.LoadingSlip
	err := s.preload(s.db.WithContext(ctx)).First(&slip, "id = ?", id).Error
	return slip, notFound(err)
}

func (s *GormSlips) Add(ctx context.Context, slip models.LoadingSlip) (models.LoadingSlip, error) {
	slip = slip.Clone()
	prepareSlip(&slip, s.now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.LoadingSlip{}).Where("id = ?", slip.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateID
		}
		// Lock the slip lines of every order on the slip before looking for clashes
		if err := checkTaken(lockRow(tx), slip); err != nil {
			return err
		}
		// GORM inserts the groups and their items with the header
		return tx.Create(&slip).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent insert got past the check first; the unique line index caught it
		if terr := checkTaken(s.db.WithContext(ctx), slip); terr != nil {
			return models.LoadingSlip{}, terr
		}
		return models.LoadingSlip{}, ErrDuplicateID
	}
	if err != nil {
		return models.LoadingSlip{}, err
	}
	return slip, nil
}

// checkTaken returns an *ItemTakenError for the first line of slip that is
// already stored on another slip.
func checkTaken(db *gorm.DB, slip models.LoadingSlip) error {
	for _, g := range slip.Groups {
		loaded, err := loadedItems(db, g.OrderID)
		if err != nil {
			return err
		}
		for _, it := range g.Items {
			if holder, ok := loaded[it.ItemID]; ok {
				return &ItemTakenError{OrderID: g.OrderID, ItemID: it.ItemID, SlipID: holder}
			}
		}
	}
	return nil
}

func (s *GormSlips) Update(ctx context.Context, id string, patch SlipPatch) (models.LoadingSlip, error) {
	var out models.LoadingSlip

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.LoadingSlip
		if err := s.preload(lockRow(tx)).First(&cur, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		next := cur.Clone()
		if err := patch(&next); err != nil {
			return err
		}
		prev := cur.CreatedAt
		if cur.UpdatedAt != nil {
			prev = *cur.UpdatedAt
		}
		stamped := advance(prev, s.now())
		next.ID = cur.ID
		next.CreatedAt = cur.CreatedAt
		next.Groups = cur.Groups
		next.Version = cur.Version + 1
		next.UpdatedAt = &stamped

		// Groups are fixed once a slip is submitted; only the header moves
		res := tx.Model(&models.LoadingSlip{ID: id}).
			Where("version = ?", cur.Version).
			Select("*").
			Omit("ID", "CreatedAt", clause.Associations).
			Updates(&next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		out = next
		return nil
	})
	if err != nil {
		return models.LoadingSlip{}, err
	}
	return out, nil
}

func (s *GormSlips) LoadedItems(ctx context.Context, orderID string) (map[int]string, error) {
	return loadedItems(s.db.WithContext(ctx), orderID)
}

func loadedItems(db *gorm.DB, orderID string) (map[int]string, error) {
	var rows []struct {
		ItemID int
		SlipID string
	}
	err := db.
		Table("slip_items").
		Select("slip_items.item_id AS item_id, slip_order_groups.slip_id AS slip_id").
		Joins("JOIN slip_order_groups ON slip_order_groups.id = slip_items.group_id").
		Where("slip_items.order_id = ?", orderID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	loaded := make(map[int]string, len(rows))
	for _, r := range rows {
		loaded[r.ItemID] = r.SlipID
	}
	return loaded, nil
}

// --- USERS ---

type GormUsers struct {
	db  *gorm.DB
	now Clock
}

func (s *GormUsers) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (s *GormUsers) Get(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	return u, notFound(err)
}

func (s *GormUsers) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return u, notFound(err)
}

func (s *GormUsers) Add(ctx context.Context, u models.User) (models.User, error) {
	if _, err := s.FindByUsername(ctx, u.Username); err == nil {
		return models.User{}, ErrDuplicateID
	} else if !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}
	u.ID = 0
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return models.User{}, err
	}
	return u, nil
}

// --- AUDIT ---

type GormAudit struct {
	db  *gorm.DB
	now Clock
}

func (s *GormAudit) Record(ctx context.Context, entry models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *GormAudit) List(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	var out []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}
