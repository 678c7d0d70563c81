package main

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/orders"
)

const (
	demoPassword     = "jollof-demo"
	demoRestaurantID = "b4f0c3c6-0a43-4bfa-9d7e-8a3d1c5e0001"
)

// Seed fills an empty database with a restaurant, its menu and one user per
// role. It does nothing when users already exist.
func Seed(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&userRecord{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		slog.DebugContext(ctx, "database already seeded")
		return nil
	}

	hash, err := hashPassword(demoPassword)
	if err != nil {
		return err
	}

	restaurantID := demoRestaurantID
	restaurant := restaurantRecord{ID: restaurantID, Name: "Mama Afrika", City: "Basel"}
	menu := []menuItemRecord{
		{ID: "m-jollof", RestaurantID: restaurantID, Name: "Jollof rice", Category: "mains", Price: orders.CHF("18.50"), Available: true},
		{ID: "m-egusi", RestaurantID: restaurantID, Name: "Egusi soup", Category: "mains", Price: orders.CHF("24.00"), Available: true},
		{ID: "m-suya", RestaurantID: restaurantID, Name: "Suya skewers", Category: "starters", Price: orders.CHF("9.90"), Available: true},
		{ID: "m-plantain", RestaurantID: restaurantID, Name: "Fried plantain", Category: "sides", Price: orders.CHF("6.00"), Available: true},
		{ID: "m-bissap", RestaurantID: restaurantID, Name: "Bissap", Category: "drinks", Price: orders.CHF("4.50"), Available: true},
	}
	users := []userRecord{
		{ID: "u-owner", Email: "owner@jollof.ch", Name: "Adaeze Okafor", PasswordHash: hash, Role: string(api.RoleRestaurant), RestaurantID: &restaurantID},
		{ID: "u-driver", Email: "driver@jollof.ch", Name: "Kofi Mensah", PasswordHash: hash, Role: string(api.RoleDriver)},
		{ID: "u-customer", Email: "customer@jollof.ch", Name: "Amara Diallo", PasswordHash: hash, Role: string(api.RoleCustomer)},
		{ID: "u-admin", Email: "admin@jollof.ch", Name: "Admin", PasswordHash: hash, Role: string(api.RoleAdmin)},
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		if err := tx.Create(&menu).Error; err != nil {
			return err
		}
		return tx.Create(&users).Error
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "seeded demo data", slog.String("restaurant_id", restaurantID), slog.Int("users", len(users)))
	return nil
}
