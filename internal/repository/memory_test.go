package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/identity"
)

func TestMemoryTicketRepositoryCreateAndGet(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := &domain.Ticket{
		Title:       "Printer jam",
		Description: "Tray 2",
		Department:  domain.DepartmentFinance,
		Contact:     "2507",
		Status:      domain.TicketStatusPending,
		ActivityLog: []string{"Ticket created at 2025-03-14 09:30:00"},
		Timestamp:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	id, err := repo.Create(ctx, ticket)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" || ticket.ID != id {
		t.Fatalf("expected id to be assigned, got %q / %q", id, ticket.ID)
	}

	ticket.ActivityLog[0] = "mutated"
	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ActivityLog[0] != "Ticket created at 2025-03-14 09:30:00" {
		t.Fatalf("stored ticket aliased caller slice: %v", got.ActivityLog)
	}

	got.Title = "changed"
	again, _ := repo.GetByID(ctx, id)
	if again.Title != "Printer jam" {
		t.Fatal("GetByID returned shared state")
	}
}

func TestMemoryTicketRepositoryUpdateAppends(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	id, _ := repo.Create(ctx, &domain.Ticket{Status: domain.TicketStatusPending, ActivityLog: []string{"a"}})

	status := domain.TicketStatusAssigned
	assignee := "2509"
	if err := repo.Update(ctx, id, domain.TicketPatch{Status: &status, AssignedTo: &assignee, AppendLog: []string{"b"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := repo.GetByID(ctx, id)
	if got.Status != domain.TicketStatusAssigned || got.AssignedTo != "2509" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if len(got.ActivityLog) != 2 || got.ActivityLog[1] != "b" {
		t.Fatalf("log = %v", got.ActivityLog)
	}
}

func TestMemoryTicketRepositoryMissing(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID err = %v", err)
	}
	if err := repo.Update(ctx, "nope", domain.TicketPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update err = %v", err)
	}
}

func TestMemoryTicketRepositoryListAllKeepsCreationOrder(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	for _, title := range []string{"first", "second", "third"} {
		if _, err := repo.Create(ctx, &domain.Ticket{Title: title}); err != nil {
			t.Fatal(err)
		}
	}
	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Title != "first" || all[2].Title != "third" {
		t.Fatalf("unexpected order: %+v", all)
	}
}

func TestMemoryTechnicianRepositoryUpsertKeepsHash(t *testing.T) {
	repo := NewMemoryTechnicianRepository([]domain.Technician{{ID: "2509", Name: "Bob", PasswordHash: "hash"}})
	ctx := context.Background()

	if err := repo.Upsert(ctx, &domain.Technician{ID: "2509", Name: "Robert"}); err != nil {
		t.Fatal(err)
	}
	tech, err := repo.FindByID(ctx, "2509")
	if err != nil {
		t.Fatal(err)
	}
	if tech.Name != "Robert" || tech.PasswordHash != "hash" {
		t.Fatalf("unexpected technician %+v", tech)
	}
	if _, err := repo.FindByID(ctx, "0000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryContactRepositoryTableIsCopy(t *testing.T) {
	repo := NewMemoryContactRepository(identity.Table{"2507": "linah@yahoo.co.ke"})
	ctx := context.Background()

	table, _ := repo.Table(ctx)
	table["2507"] = "other@x.com"

	if err := repo.Put(ctx, "2399", "cindy@gmail.com"); err != nil {
		t.Fatal(err)
	}
	fresh, _ := repo.Table(ctx)
	if fresh["2507"] != "linah@yahoo.co.ke" || fresh["2399"] != "cindy@gmail.com" {
		t.Fatalf("unexpected table %v", fresh)
	}
}
