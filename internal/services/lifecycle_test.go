package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vendor-match-service/internal/adapters/repositories"
	"vendor-match-service/internal/domain"
)

func lifecycleRequest(t *testing.T, store *repositories.MemoryStore, deadline time.Time) *domain.Request {
	t.Helper()

	req := &domain.Request{
		ID:         "req-1",
		CustomerID: "cust-1",
		Items: []domain.RequestItem{
			{ID: "item-1", ProductName: "rice", RequestedQuantity: 1, RequestedUnit: domain.UnitKilogram},
		},
		Deadline: deadline,
		Status:   domain.StatusCreated,
	}
	if err := store.CreateRequest(context.Background(), req); err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func TestLifecycleBeginReachesAwaitingSelection(t *testing.T) {
	store := repositories.NewMemoryStore()
	req := lifecycleRequest(t, store, time.Now().Add(time.Hour))
	lc := &Lifecycle{Store: store}

	if err := lc.Begin(context.Background(), req, 3); err != nil {
		t.Fatalf("begin: %v", err)
	}

	stored, err := store.GetRequest(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if stored.Status != domain.StatusAwaitingSelection {
		t.Fatalf("status = %s, want %s", stored.Status, domain.StatusAwaitingSelection)
	}
}

func TestLifecycleBeginExpiresWithoutCandidates(t *testing.T) {
	store := repositories.NewMemoryStore()
	req := lifecycleRequest(t, store, time.Now().Add(time.Hour))
	lc := &Lifecycle{Store: store}

	err := lc.Begin(context.Background(), req, 0)
	if !errors.Is(err, ErrNoVendorsInRange) {
		t.Fatalf("err = %v, want ErrNoVendorsInRange", err)
	}

	stored, _ := store.GetRequest(context.Background(), req.ID)
	if stored.Status != domain.StatusExpired {
		t.Fatalf("status = %s, want %s", stored.Status, domain.StatusExpired)
	}
}

func TestLifecycleAtMostOneAcceptance(t *testing.T) {
	store := repositories.NewMemoryStore()
	req := lifecycleRequest(t, store, time.Now().Add(time.Hour))
	lc := &Lifecycle{Store: store}
	if err := lc.Begin(context.Background(), req, 2); err != nil {
		t.Fatalf("begin: %v", err)
	}

	type outcome struct {
		vendorID string
		err      error
	}
	results := make([]outcome, 2)

	var wg sync.WaitGroup
	for i, vendorID := range []string{"vendor-a", "vendor-b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lc.Accept(context.Background(), req.ID, vendorID)
			results[i] = outcome{vendorID: vendorID, err: err}
		}()
	}
	wg.Wait()

	var winners, conflicts int
	var winner string
	for _, r := range results {
		switch {
		case r.err == nil:
			winners++
			winner = r.vendorID
		default:
			var conflict *SelectionConflictError
			if !errors.As(r.err, &conflict) {
				t.Fatalf("loser got %v, want SelectionConflictError", r.err)
			}
			conflicts++
		}
	}
	if winners != 1 || conflicts != 1 {
		t.Fatalf("winners = %d, conflicts = %d, want exactly one of each", winners, conflicts)
	}

	stored, _ := store.GetRequest(context.Background(), req.ID)
	if stored.Status != domain.StatusAccepted {
		t.Fatalf("status = %s, want %s", stored.Status, domain.StatusAccepted)
	}
	if stored.AcceptedVendorID != winner {
		t.Fatalf("accepted vendor = %s, want winner %s", stored.AcceptedVendorID, winner)
	}
}

func TestLifecycleRepeatAcceptNamesWinner(t *testing.T) {
	store := repositories.NewMemoryStore()
	req := lifecycleRequest(t, store, time.Now().Add(time.Hour))
	lc := &Lifecycle{Store: store}
	if err := lc.Begin(context.Background(), req, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}

	if _, err := lc.Accept(context.Background(), req.ID, "vendor-a"); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	_, err := lc.Accept(context.Background(), req.ID, "vendor-b")
	var conflict *SelectionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want SelectionConflictError", err)
	}
	if conflict.AcceptedVendorID != "vendor-a" {
		t.Fatalf("conflict names vendor %q, want vendor-a", conflict.AcceptedVendorID)
	}
}

func TestLifecycleAcceptAfterDeadlineExpires(t *testing.T) {
	store := repositories.NewMemoryStore()
	deadline := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	req := lifecycleRequest(t, store, deadline)
	lc := &Lifecycle{Store: store, Now: func() time.Time { return deadline.Add(-time.Hour) }}
	if err := lc.Begin(context.Background(), req, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}

	// Clock moves past the deadline before anyone selects.
	lc.Now = func() time.Time { return deadline.Add(time.Second) }

	_, err := lc.Accept(context.Background(), req.ID, "vendor-a")
	var conflict *SelectionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want SelectionConflictError", err)
	}

	stored, _ := store.GetRequest(context.Background(), req.ID)
	if stored.Status != domain.StatusExpired {
		t.Fatalf("status = %s, want %s", stored.Status, domain.StatusExpired)
	}
}

func TestLifecycleExpireLeavesAcceptedAlone(t *testing.T) {
	store := repositories.NewMemoryStore()
	req := lifecycleRequest(t, store, time.Now().Add(time.Hour))
	lc := &Lifecycle{Store: store}
	if err := lc.Begin(context.Background(), req, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := lc.Accept(context.Background(), req.ID, "vendor-a"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := lc.Expire(context.Background(), req.ID); err != nil {
		t.Fatalf("expire after accept: %v", err)
	}

	stored, _ := store.GetRequest(context.Background(), req.ID)
	if stored.Status != domain.StatusAccepted || stored.AcceptedVendorID != "vendor-a" {
		t.Fatalf("accepted request disturbed by expiry: %+v", stored)
	}
}

func TestLifecycleCancelNonTerminal(t *testing.T) {
	store := repositories.NewMemoryStore()
	req := lifecycleRequest(t, store, time.Now().Add(time.Hour))
	lc := &Lifecycle{Store: store}
	if err := lc.Begin(context.Background(), req, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := lc.Cancel(context.Background(), req.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stored, _ := store.GetRequest(context.Background(), req.ID)
	if stored.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want %s", stored.Status, domain.StatusCancelled)
	}

	err := lc.Cancel(context.Background(), req.ID)
	var conflict *SelectionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("cancelling a terminal request: err = %v, want SelectionConflictError", err)
	}
}
