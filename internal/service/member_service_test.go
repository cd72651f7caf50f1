package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

func seedProject(t *testing.T, projects *ProjectService, name string) *models.Project {
	t.Helper()
	project, err := projects.Create(context.Background(), ProjectParams{Name: name, Currency: "EUR", PrivateCode: "s3cr3t"})
	if err != nil {
		t.Fatalf("Create project failed: %v", err)
	}
	return project
}

func seedMember(t *testing.T, members *MemberService, projectID, name, weight string) *models.Member {
	t.Helper()
	member, err := members.Add(context.Background(), projectID, name, decimal.RequireFromString(weight))
	if err != nil {
		t.Fatalf("Add member %q failed: %v", name, err)
	}
	return member
}

func TestMemberService_Add(t *testing.T) {
	projects, members, _, _ := newTestEnv(t)
	ctx := context.Background()
	project := seedProject(t, projects, "Trip")

	member, err := members.Add(ctx, project.ID, "Alice", decimal.Decimal{})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if member.ID == 0 {
		t.Error("expected assigned member id")
	}
	if !member.Weight.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Weight = %s, want default 1", member.Weight)
	}
	if !member.Activated {
		t.Error("new member should be activated")
	}

	t.Run("unknown project", func(t *testing.T) {
		_, err := members.Add(ctx, "nonexistent", "Bob", decimal.Decimal{})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate activated name", func(t *testing.T) {
		_, err := members.Add(ctx, project.ID, "Alice", decimal.Decimal{})
		if !errors.Is(err, ErrNameTaken) {
			t.Errorf("expected ErrNameTaken, got %v", err)
		}
	})
}

func TestMemberService_Add_ReactivatesDeactivated(t *testing.T) {
	projects, members, bills, _ := newTestEnv(t)
	ctx := context.Background()
	project := seedProject(t, projects, "Trip")

	alice := seedMember(t, members, project.ID, "Alice", "1")
	bob := seedMember(t, members, project.ID, "Bob", "1")

	// A bill keeps Bob alive as a deactivated member after removal.
	if _, err := bills.Add(ctx, project.ID, BillParams{
		What:    "Fuel",
		PayerID: alice.ID,
		Amount:  decimal.NewFromInt(40),
		OwerIDs: []int64{alice.ID, bob.ID},
	}); err != nil {
		t.Fatalf("Add bill failed: %v", err)
	}

	deleted, err := members.Remove(ctx, project.ID, bob.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if deleted {
		t.Fatal("member with bills should be deactivated, not deleted")
	}

	revived, err := members.Add(ctx, project.ID, "Bob", decimal.RequireFromString("2"))
	if err != nil {
		t.Fatalf("Add after deactivation failed: %v", err)
	}
	if revived.ID != bob.ID {
		t.Errorf("reactivation created a new member: id %d, want %d", revived.ID, bob.ID)
	}
	if !revived.Activated {
		t.Error("reactivated member should be activated")
	}
	if !revived.Weight.Equal(decimal.RequireFromString("2")) {
		t.Errorf("Weight = %s, want the newly given 2", revived.Weight)
	}
}

func TestMemberService_Remove_NoBills(t *testing.T) {
	projects, members, _, _ := newTestEnv(t)
	ctx := context.Background()
	project := seedProject(t, projects, "Trip")
	alice := seedMember(t, members, project.ID, "Alice", "1")

	deleted, err := members.Remove(ctx, project.ID, alice.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !deleted {
		t.Error("member without bills should be deleted outright")
	}

	_, err = members.Get(ctx, project.ID, alice.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemberService_Update(t *testing.T) {
	projects, members, _, _ := newTestEnv(t)
	ctx := context.Background()
	project := seedProject(t, projects, "Trip")
	alice := seedMember(t, members, project.ID, "Alice", "1")
	seedMember(t, members, project.ID, "Bob", "1")

	t.Run("rename and reweigh", func(t *testing.T) {
		updated, err := members.Update(ctx, project.ID, alice.ID, "Alicia", decimal.RequireFromString("1.5"), true)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Name != "Alicia" {
			t.Errorf("Name = %q, want Alicia", updated.Name)
		}
		if !updated.Weight.Equal(decimal.RequireFromString("1.5")) {
			t.Errorf("Weight = %s, want 1.5", updated.Weight)
		}
	})

	t.Run("rename onto an activated name", func(t *testing.T) {
		_, err := members.Update(ctx, project.ID, alice.ID, "Bob", decimal.NewFromInt(1), true)
		if !errors.Is(err, ErrNameTaken) {
			t.Errorf("expected ErrNameTaken, got %v", err)
		}
	})

	t.Run("weight below minimum", func(t *testing.T) {
		_, err := members.Update(ctx, project.ID, alice.ID, "Alicia", decimal.RequireFromString("0.05"), true)
		if !errors.Is(err, models.ErrInvalidMember) {
			t.Errorf("expected ErrInvalidMember, got %v", err)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := members.Update(ctx, project.ID, 99999, "Ghost", decimal.NewFromInt(1), true)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMemberService_List(t *testing.T) {
	projects, members, bills, _ := newTestEnv(t)
	ctx := context.Background()
	project := seedProject(t, projects, "Trip")

	alice := seedMember(t, members, project.ID, "Alice", "1")
	bob := seedMember(t, members, project.ID, "Bob", "1")

	if _, err := bills.Add(ctx, project.ID, BillParams{
		What:    "Fuel",
		PayerID: alice.ID,
		Amount:  decimal.NewFromInt(40),
		OwerIDs: []int64{bob.ID},
	}); err != nil {
		t.Fatalf("Add bill failed: %v", err)
	}
	if _, err := members.Remove(ctx, project.ID, alice.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	listed, err := members.List(ctx, project.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 members, got %d", len(listed))
	}
	// Activated members come first.
	if listed[0].Name != "Bob" || !listed[0].Activated {
		t.Errorf("first entry = %q activated=%v, want activated Bob", listed[0].Name, listed[0].Activated)
	}
	if listed[1].Name != "Alice" || listed[1].Activated {
		t.Errorf("second entry = %q activated=%v, want deactivated Alice", listed[1].Name, listed[1].Activated)
	}
}
