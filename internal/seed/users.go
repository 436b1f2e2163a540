package seed

import (
	"context"
	"errors"
	"fmt"

	"uccdatahub/internal/store"
	"uccdatahub/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

type demoUserSeed struct {
	FirstName    string
	LastName     string
	BusinessName string
	Email        string
	Password     string
}

var demoUsers = []demoUserSeed{
	{FirstName: "Dennis", LastName: "Ward", BusinessName: "Ward Lending Group", Email: "dennis.ward+seed@example.com", Password: "demo-password-1"},
	{FirstName: "Carla", LastName: "Mendez", BusinessName: "Mendez Capital", Email: "carla.mendez+seed@example.com", Password: "demo-password-2"},
	{FirstName: "Ray", LastName: "Okafor", BusinessName: "", Email: "ray.okafor+seed@example.com", Password: "demo-password-3"},
}

// SeedDemoUsers registers the demo accounts, skipping any that already
// exist so reseeding is safe.
func SeedDemoUsers(ctx context.Context, userRepo *store.UserRepository) error {
	seeded := 0
	for _, demo := range demoUsers {
		_, err := userRepo.UserByEmail(ctx, demo.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return fmt.Errorf("failed to check demo user %s: %w", demo.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demo.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}

		user := &types.User{
			FirstName:    demo.FirstName,
			LastName:     demo.LastName,
			Email:        demo.Email,
			PasswordHash: string(hash),
		}
		if demo.BusinessName != "" {
			businessName := demo.BusinessName
			user.BusinessName = &businessName
		}

		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create demo user %s: %w", demo.Email, err)
		}
		seeded++
	}

	fmt.Printf("Demo users seeded: %d created\n", seeded)
	return nil
}
