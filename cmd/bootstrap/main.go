package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"campusdesk/internal/auth"
	"campusdesk/internal/cache"
	"campusdesk/internal/config"
	"campusdesk/internal/db"
	"campusdesk/internal/model"
	"campusdesk/internal/repository"
	"campusdesk/internal/service"
)

// bootstrap creates the first administrator. Admins are the only callers allowed to
// promote staff, so a fresh deployment needs one before the API is usable.
func main() {
	var (
		clerkID   = pflag.String("clerk-id", "", "identity provider subject of the admin (required)")
		email     = pflag.String("email", "", "admin e-mail address (required for a new user)")
		firstName = pflag.String("first-name", "Admin", "first name for a new user")
		lastName  = pflag.String("last-name", "User", "last name for a new user")
		tokenTTL  = pflag.Duration("token-ttl", 0, "also print a development session token valid for this long (needs SESSION_JWT_SECRET)")
	)
	pflag.Parse()

	if *clerkID == "" {
		fmt.Fprintln(os.Stderr, "--clerk-id is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()

	gormDB, err := db.Open(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Printf("redis unavailable at %s, a cached identity for %s stays valid for up to %s: %v",
			cfg.RedisAddr, *clerkID, cfg.IdentityCacheTTL, err)
	}

	repo := repository.NewDirectoryRepository(gormDB)
	identities := auth.NewIdentityCache(cacheClient, cfg.IdentityCacheTTL)
	user, err := ensureAdmin(ctx, repo, identities, *clerkID, *email, *firstName, *lastName)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	log.Printf("Admin ready: id=%d clerkId=%s email=%s", user.ID, user.ClerkID, user.Email)

	if *tokenTTL > 0 {
		verifier, err := auth.NewSessionVerifier(cfg.SessionSecret, cfg.SessionPublicKey, cfg.SessionIssuer)
		if err != nil {
			log.Fatalf("session verifier: %v", err)
		}
		token, err := verifier.Issue(*clerkID, *tokenTTL)
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Println(token)
	}
}

// ensureAdmin creates or elevates the admin in one transaction, then drops any cached
// identity so the new role applies to the next request.
func ensureAdmin(ctx context.Context, repo repository.DirectoryRepository, identities service.IdentityInvalidator, clerkID, email, firstName, lastName string) (*model.User, error) {
	var admin *model.User
	err := repo.WithTransaction(ctx, func(ctx context.Context, tx repository.DirectoryRepository) error {
		if _, err := tx.FindStaffByClerkID(ctx, clerkID); err == nil {
			return fmt.Errorf("%s is registered as staff", clerkID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		existing, err := tx.FindUserByClerkID(ctx, clerkID)
		switch {
		case err == nil:
			if err := tx.UpdateUserRole(ctx, existing.ID, model.UserRoleAdmin); err != nil {
				return err
			}
			existing.Role = model.UserRoleAdmin
			admin = existing
			log.Printf("Elevated existing user %d to admin", existing.ID)
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			return errors.New("--email is required when the user does not exist yet")
		}
		if _, err := tx.FindIdentity(ctx, clerkID); errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.CreateIdentity(ctx, &model.IdentityRole{ClerkID: clerkID, Kind: model.IdentityKindStudent}); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		admin = &model.User{
			ClerkID:   clerkID,
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
			Role:      model.UserRoleAdmin,
		}
		if err := tx.CreateUser(ctx, admin); err != nil {
			return err
		}
		log.Printf("Created admin user %d", admin.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	identities.Invalidate(ctx, clerkID)
	return admin, nil
}
