package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/expertteam/expert/internal/config"
	"github.com/expertteam/expert/internal/domain"
	"github.com/expertteam/expert/internal/infrastructure/credential"
	"github.com/expertteam/expert/internal/infrastructure/persistence/postgres"
)

// Defaults used when neither flags nor environment set a value.
const (
	defaultUsers     = 1_000_000
	defaultBatchSize = 10_000
	seedPassword     = "Password123"
)

// Command-line tool that bulk-loads users for nickname search benchmarking.
// Not a production tool: every seeded user shares one password.
func main() {
	users := flag.Int("users", 0, "number of users to insert (default 1,000,000)")
	batch := flag.Int("batch", 0, "users per COPY batch (default 10,000)")
	flag.Parse()

	cfg, err := config.LoadSeedConfig()
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}
	total := firstPositive(*users, cfg.Users, defaultUsers)
	batchSize := firstPositive(*batch, cfg.BatchSize, defaultBatchSize)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	// One hash for everybody; bcrypt per row would dominate the run.
	hash, err := credential.NewBcryptHasher(0).Hash(seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	start := time.Now()
	inserted, err := seed(ctx, store, total, batchSize, hash, func(done int64) {
		log.Printf("inserted %d/%d users (%s)", done, total, time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		log.Fatalf("Seeding stopped after %d users: %v", inserted, err)
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("Inserted: %d users\n", inserted)
	fmt.Printf("Batch size: %d\n", batchSize)
	fmt.Printf("Elapsed: %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Password: %s\n", seedPassword)
	fmt.Println("----------------------------------------")
}

// userCopier is the slice of the store the seeder writes through.
type userCopier interface {
	CopyUsers(ctx context.Context, users []domain.User) (int64, error)
}

// seed inserts total users in batches and reports progress after each batch.
// Nicknames are "user_<8 random hex>_<n>" so they are unique within a run.
func seed(ctx context.Context, store userCopier, total, batchSize int, passwordHash string, progress func(int64)) (int64, error) {
	run := uuid.NewString()[:8]
	users := make([]domain.User, 0, batchSize)
	var inserted int64

	for n := 1; n <= total; n++ {
		id, err := uuid.NewV7()
		if err != nil {
			return inserted, fmt.Errorf("failed to generate id: %w", err)
		}
		now := time.Now().UTC()
		users = append(users, domain.User{
			ID:           id.String(),
			Email:        fmt.Sprintf("seed_%s_%d@example.com", run, n),
			PasswordHash: passwordHash,
			Nickname:     fmt.Sprintf("user_%s_%d", uuid.NewString()[:8], n),
			Role:         domain.UserRoleUser,
			CreatedAt:    now,
			ModifiedAt:   now,
		})

		if len(users) == batchSize || n == total {
			if err := ctx.Err(); err != nil {
				return inserted, err
			}
			count, err := store.CopyUsers(ctx, users)
			if err != nil {
				return inserted, err
			}
			inserted += count
			users = users[:0]
			if progress != nil {
				progress(inserted)
			}
		}
	}
	return inserted, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
