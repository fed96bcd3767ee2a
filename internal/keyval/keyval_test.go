package keyval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/exploremaroc/companion/internal/database"
	"github.com/exploremaroc/companion/internal/keyval"
	"github.com/exploremaroc/companion/internal/migrations"
)

func sqliteStore(t *testing.T) keyval.Store {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return keyval.NewSQLiteStore(db)
}

func redisStore(t *testing.T) keyval.Store {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return keyval.NewRedisStore(client)
}

func TestStoreContract(t *testing.T) {
	backends := map[string]func(*testing.T) keyval.Store{
		"sqlite": sqliteStore,
		"redis":  redisStore,
		"memory": func(*testing.T) keyval.Store { return keyval.NewMemStore() },
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			if _, err := s.Get(ctx, "missing"); !errors.Is(err, keyval.ErrNotFound) {
				t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
			}

			if err := s.Set(ctx, "theme", "dark"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, "theme")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != "dark" {
				t.Errorf("Get = %q, want %q", got, "dark")
			}

			// Overwrite.
			if err := s.Set(ctx, "theme", "light"); err != nil {
				t.Fatalf("Set (overwrite): %v", err)
			}
			if got, _ := s.Get(ctx, "theme"); got != "light" {
				t.Errorf("Get after overwrite = %q, want %q", got, "light")
			}

			if err := s.Delete(ctx, "theme"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, "theme"); !errors.Is(err, keyval.ErrNotFound) {
				t.Errorf("Get after delete err = %v, want ErrNotFound", err)
			}

			// Deleting an absent key is not an error.
			if err := s.Delete(ctx, "theme"); err != nil {
				t.Errorf("Delete (absent): %v", err)
			}
		})
	}
}
