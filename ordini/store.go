package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taldoflemis/jollof/pacchetto/orders"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the order changed between read and update.
	ErrConflict = errors.New("order was changed by someone else")
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&userRecord{},
		&restaurantRecord{},
		&menuItemRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&orderSequenceRecord{},
	)
}

// Ping checks the underlying connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (userRecord, error) {
	var u userRecord
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return u, notFound(err)
}

func (s *GormStore) FindRestaurant(ctx context.Context, id string) (restaurantRecord, error) {
	var r restaurantRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error
	return r, notFound(err)
}

// MenuItems returns the items of restaurantID among ids, keyed by id.
func (s *GormStore) MenuItems(ctx context.Context, restaurantID string, ids []string) (map[string]menuItemRecord, error) {
	var items []menuItemRecord
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND id IN ?", restaurantID, ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]menuItemRecord, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// CreateOrder stores rec and gives it the next order number of its day.
func (s *GormStore) CreateOrder(ctx context.Context, rec *orderRecord) error {
	ctx, span := tracer.Start(ctx, "GormStore.CreateOrder")
	defer span.End()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		day := rec.CreatedAt.Format("20060102")
		n, err := nextOrderNumber(tx, day)
		if err != nil {
			return err
		}
		rec.OrderNumber = fmt.Sprintf("ORD-%s-%04d", day, n)
		return tx.Create(rec).Error
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create order", slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// nextOrderNumber bumps the day's counter. The upsert holds the counter row
// until tx ends, so concurrent creates are serialised on it.
func nextOrderNumber(tx *gorm.DB, day string) (int, error) {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{"counter": gorm.Expr("order_sequences.counter + 1")}),
	}).Create(&orderSequenceRecord{Day: day, Counter: 1}).Error
	if err != nil {
		return 0, err
	}

	var seq orderSequenceRecord
	if err := tx.Where("day = ?", day).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Counter, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	var rec orderRecord
	err := s.withItems(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		return orders.Order{}, notFound(err)
	}
	return rec.toOrder(), nil
}

// ListOrders returns the orders matching the query, newest first.
func (s *GormStore) ListOrders(ctx context.Context, query string, args ...any) ([]orders.Order, error) {
	var recs []orderRecord
	err := s.withItems(ctx).Where(query, args...).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]orders.Order, len(recs))
	for i, r := range recs {
		out[i] = r.toOrder()
	}
	return out, nil
}

// UpdateStatus writes next over the order only if it still has the status of
// prev. Accepting additionally requires that no driver holds the order.
func (s *GormStore) UpdateStatus(ctx context.Context, prev, next orders.Order) error {
	ctx, span := tracer.Start(ctx, "GormStore.UpdateStatus")
	defer span.End()

	q := s.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ? AND status = ?", prev.ID, string(prev.Status))
	if next.Status == orders.StatusAssigned {
		q = q.Where("driver_id IS NULL")
	}

	res := q.Updates(map[string]any{
		"status":      string(next.Status),
		"pickup_code": next.PickupCode,
		"driver_id":   next.DriverID,
		"updated_at":  next.UpdatedAt,
	})
	if res.Error != nil {
		slog.ErrorContext(ctx, "failed to update order status", slog.String("order_id", prev.ID), slog.Any("err", res.Error))
		span.RecordError(res.Error)
		span.SetStatus(codes.Error, res.Error.Error())
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s is no longer %s", ErrConflict, prev.ID, prev.Status)
	}
	return nil
}

func (s *GormStore) withItems(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
