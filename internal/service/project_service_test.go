package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/divvykit/divvy/internal/auth"
	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
	"github.com/divvykit/divvy/internal/storage/sqlite"
)

// newTestEnv wires all four services over a temp sqlite store. Every
// service test file uses it.
func newTestEnv(t *testing.T) (*ProjectService, *MemberService, *BillService, *LedgerService) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "divvy-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	codec := auth.NewCodec(bcrypt.MinCost)
	tokens := auth.NewTokenManager("test-secret-with-enough-length", time.Hour)

	return NewProjectService(store, codec, tokens),
		NewMemberService(store),
		NewBillService(store),
		NewLedgerService(store)
}

func TestProjectService_Create(t *testing.T) {
	projects, _, _, _ := newTestEnv(t)
	ctx := context.Background()

	project, err := projects.Create(ctx, ProjectParams{
		Name:         "Weekend Trip",
		ContactEmail: "trip@example.org",
		Currency:     "EUR",
		PrivateCode:  "s3cr3t",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if project.ID != "weekend-trip" {
		t.Errorf("ID = %q, want derived slug weekend-trip", project.ID)
	}
	if project.CodeHash == "s3cr3t" {
		t.Error("private code stored in clear")
	}
	if project.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", project.Currency)
	}

	// The stored hash must verify against the original code.
	if _, err := projects.Authenticate(ctx, project.ID, "s3cr3t"); err != nil {
		t.Errorf("Authenticate with original code failed: %v", err)
	}
}

func TestProjectService_Create_DuplicateID(t *testing.T) {
	projects, _, _, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := projects.Create(ctx, ProjectParams{Name: "Trip", PrivateCode: "code"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := projects.Create(ctx, ProjectParams{Name: "Trip", PrivateCode: "other"})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate id, got %v", err)
	}
}

func TestProjectService_Create_ShortCode(t *testing.T) {
	projects, _, _, _ := newTestEnv(t)

	_, err := projects.Create(context.Background(), ProjectParams{Name: "Trip", PrivateCode: "ab"})
	if !errors.Is(err, models.ErrInvalidProject) {
		t.Errorf("expected ErrInvalidProject for short code, got %v", err)
	}
}

func TestProjectService_Update(t *testing.T) {
	projects, _, _, _ := newTestEnv(t)
	ctx := context.Background()

	created, err := projects.Create(ctx, ProjectParams{
		Name:        "Flat",
		Currency:    "EUR",
		PrivateCode: "oldcode",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("empty code and currency keep current values", func(t *testing.T) {
		updated, err := projects.Update(ctx, created.ID, ProjectParams{
			Name:         "Shared Flat",
			ContactEmail: "flat@example.org",
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Name != "Shared Flat" {
			t.Errorf("Name = %q, want Shared Flat", updated.Name)
		}
		if updated.Currency != "EUR" {
			t.Errorf("Currency = %q, want EUR kept", updated.Currency)
		}
		if _, err := projects.Authenticate(ctx, created.ID, "oldcode"); err != nil {
			t.Errorf("old code no longer authenticates: %v", err)
		}
	})

	t.Run("new code replaces the old one", func(t *testing.T) {
		if _, err := projects.Update(ctx, created.ID, ProjectParams{Name: "Shared Flat", PrivateCode: "newcode"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if _, err := projects.Authenticate(ctx, created.ID, "oldcode"); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("old code still accepted: %v", err)
		}
		if _, err := projects.Authenticate(ctx, created.ID, "newcode"); err != nil {
			t.Errorf("new code rejected: %v", err)
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := projects.Update(ctx, "nope", ProjectParams{Name: "X"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestProjectService_Authenticate(t *testing.T) {
	projects, _, _, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := projects.Create(ctx, ProjectParams{Name: "Trip", PrivateCode: "s3cr3t"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("wrong code", func(t *testing.T) {
		_, err := projects.Authenticate(ctx, "trip", "wrong")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown project looks like a wrong code", func(t *testing.T) {
		_, err := projects.Authenticate(ctx, "nonexistent", "s3cr3t")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestProjectService_IssueToken(t *testing.T) {
	projects, _, _, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := projects.Create(ctx, ProjectParams{Name: "Trip", PrivateCode: "s3cr3t"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	token, err := projects.IssueToken(ctx, "trip")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	_, err = projects.IssueToken(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown project, got %v", err)
	}
}

func TestProjectService_Delete(t *testing.T) {
	projects, _, _, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := projects.Create(ctx, ProjectParams{Name: "Trip", PrivateCode: "s3cr3t"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := projects.Delete(ctx, "trip"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := projects.Get(ctx, "trip")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := projects.Delete(ctx, "trip"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
