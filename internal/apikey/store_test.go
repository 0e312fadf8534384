package apikey

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/pose-coach/internal/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Validate touches last_used_at from a goroutine; a second connection
	// would see a fresh in-memory database.
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	return db
}

func setupTestStore(t *testing.T) *Store {
	store := NewStore(setupTestDB(t))
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return store
}

func TestStore_Migrate(t *testing.T) {
	db := setupTestDB(t)
	if err := NewStore(db).Migrate(); err != nil {
		t.Errorf("Migrate() error = %v", err)
	}
	if !db.Migrator().HasTable(&APIKey{}) {
		t.Error("expected APIKey table to exist")
	}
}

func TestStore_Create(t *testing.T) {
	store := setupTestStore(t)

	key := &APIKey{Name: "Studio tablet"}
	secret, err := store.Create(context.Background(), key)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !strings.HasPrefix(secret, "pk-coach-") {
		t.Errorf("expected secret to start with 'pk-coach-', got %q", secret[:prefixLength])
	}
	if !strings.HasPrefix(key.ID, "key_") {
		t.Errorf("expected key_ ID, got %q", key.ID)
	}
	if key.Prefix != secret[:prefixLength] {
		t.Errorf("Prefix = %q, want %q", key.Prefix, secret[:prefixLength])
	}
	if key.Role != RoleClient {
		t.Errorf("expected default client role, got %q", key.Role)
	}
	if key.SecretHash == "" || key.SecretHash == secret {
		t.Error("expected hashed secret")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.GetByID(context.Background(), "nonexistent"); err != shared.ErrNotFound {
		t.Errorf("error = %v, want %v", err, shared.ErrNotFound)
	}
}

func TestStore_List(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := store.Create(ctx, &APIKey{Name: name}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	keys, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("got %d keys, want 3", len(keys))
	}
}

func TestStore_Validate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := &APIKey{Name: "Admin", Role: RoleAdmin}
	secret, _ := store.Create(ctx, key)

	found, err := store.Validate(ctx, secret)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if found.ID != key.ID || found.Role != RoleAdmin {
		t.Errorf("unexpected key %+v", found)
	}
}

func TestStore_Validate_Rejections(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	secret, _ := store.Create(ctx, &APIKey{Name: "k"})

	expired := time.Now().Add(-time.Hour)
	expiredSecret, _ := store.Create(ctx, &APIKey{Name: "old", ExpiresAt: &expired})

	tests := []struct {
		name   string
		secret string
		want   error
	}{
		{"short", "short", shared.ErrNotFound},
		{"wrong secret", secret[:prefixLength] + "wrongsecret", shared.ErrNotFound},
		{"unknown prefix", "pk-coach-0000000deadbeef", shared.ErrNotFound},
		{"expired", expiredSecret, shared.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Validate(ctx, tt.secret); err != tt.want {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := &APIKey{Name: "k"}
	store.Create(ctx, key)

	if err := store.Delete(ctx, key.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetByID(ctx, key.ID); err != shared.ErrNotFound {
		t.Errorf("expected key to be deleted, got error = %v", err)
	}
	if err := store.Delete(ctx, key.ID); err != shared.ErrNotFound {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestGenerateSecret(t *testing.T) {
	secret, err := generateSecret()
	if err != nil {
		t.Fatalf("generateSecret() error = %v", err)
	}
	if len(secret) != len(secretPrefix)+64 {
		t.Errorf("unexpected secret length %d", len(secret))
	}

	secret2, _ := generateSecret()
	if secret == secret2 {
		t.Error("expected unique secrets")
	}
}

func TestHashSecret(t *testing.T) {
	if hashSecret("a") != hashSecret("a") {
		t.Error("same secret should produce same hash")
	}
	if hashSecret("a") == hashSecret("b") {
		t.Error("different secrets should produce different hashes")
	}
	if len(hashSecret("a")) != 64 {
		t.Errorf("hash length = %d, want 64", len(hashSecret("a")))
	}
}
