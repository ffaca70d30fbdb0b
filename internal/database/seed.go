package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/reference"
	"go-glass-dispatch/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// Seed loads the demo users, orders and slips. Records that already exist are
// left alone, so running it twice is harmless.
func Seed(ctx context.Context, stores store.Stores) error {
	// 1. Users, with hashed passwords
	for _, du := range reference.DemoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(du.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", du.Username, err)
		}
		_, err = stores.Users.Add(ctx, models.User{
			Username:     du.Username,
			PasswordHash: string(hash),
			Name:         du.Name,
			Email:        du.Email,
			Role:         du.Role,
			Status:       models.UserActive,
		})
		if err != nil && !errors.Is(err, store.ErrDuplicateID) {
			return fmt.Errorf("seed user %s: %w", du.Username, err)
		}
	}

	// 2. Orders, oldest first so that lists come back newest first
	orders := reference.DemoOrders()
	for i := len(orders) - 1; i >= 0; i-- {
		if _, err := stores.Orders.Add(ctx, orders[i]); err != nil && !errors.Is(err, store.ErrDuplicateID) {
			return fmt.Errorf("seed order %s: %w", orders[i].ID, err)
		}
	}

	// 3. Loading slips
	slips := reference.DemoSlips()
	for i := len(slips) - 1; i >= 0; i-- {
		if _, err := stores.Slips.Add(ctx, slips[i]); err != nil && !errors.Is(err, store.ErrDuplicateID) {
			return fmt.Errorf("seed slip %s: %w", slips[i].ID, err)
		}
	}

	log.Printf("✅ Demo data ready (%d users, %d orders, %d slips)", len(reference.DemoUsers), len(orders), len(slips))
	return nil
}
