// Package seed creates the default accounts and, optionally, a demo catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"
)

type Options struct {
	AdminPassword string
	StaffPassword string
	DemoProducts  bool
}

// Run is idempotent: existing users are left alone and demo products are
// only added to an empty catalog.
func Run(ctx context.Context, store repository.Store, opts Options) error {
	if err := ensureUser(ctx, store.Users(), "admin", "Administrator", model.RoleAdmin, opts.AdminPassword); err != nil {
		return err
	}
	if err := ensureUser(ctx, store.Users(), "kasir", "Kasir", model.RoleStaff, opts.StaffPassword); err != nil {
		return err
	}
	if opts.DemoProducts {
		return seedProducts(ctx, store)
	}
	return nil
}

func ensureUser(ctx context.Context, users repository.UserRepository, username, name, role, password string) error {
	_, err := users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("seed %s: %w", username, err)
	}

	user := &model.User{Username: username, Name: name, Role: role, IsActive: true}
	user.CreatedBy = model.SystemActor.ID
	user.UpdatedBy = model.SystemActor.ID
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("seed %s: hash password: %w", username, err)
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("seed %s: %w", username, err)
	}
	log.Printf("Default user created: %s (%s)", username, role)
	return nil
}

// DemoProducts is the starter catalog.
var DemoProducts = []model.Product{
	{Name: "Marlboro Red", Category: "Rokok", SKU: "MRL001", CostPrice: 20000, SellPrice: 25000, Stock: 50, MinStock: 10},
	{Name: "Beras Premium 5kg", Category: "Sembako", SKU: "BRS001", CostPrice: 65000, SellPrice: 75000, Stock: 25, MinStock: 5},
	{Name: "Aqua 600ml", Category: "Minuman", SKU: "AQU001", CostPrice: 2500, SellPrice: 3500, Stock: 100, MinStock: 20},
	{Name: "Minyak Goreng 1L", Category: "Sembako", SKU: "MIG001", CostPrice: 14000, SellPrice: 18000, Stock: 15, MinStock: 5},
}

func seedProducts(ctx context.Context, store repository.Store) error {
	existing, err := store.Products().FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	return store.WithinTx(ctx, func(r repository.Repos) error {
		for _, p := range DemoProducts {
			p := p
			p.CreatedBy = model.SystemActor.ID
			p.UpdatedBy = model.SystemActor.ID
			if err := r.Products().Create(ctx, &p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.SKU, err)
			}
		}
		log.Printf("Demo catalog created: %d products", len(DemoProducts))
		return nil
	})
}
