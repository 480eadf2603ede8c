package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/ports"
)

// ErrNoVendorsInRange reports an empty candidate set; the request moves
// straight to Expired.
var ErrNoVendorsInRange = errors.New("no vendors in range")

// SelectionConflictError reports a selection attempt against a request that
// is already terminal or past its deadline. It is a well-defined outcome for
// the caller, not a server error. AcceptedVendorID names the winner when one
// exists.
type SelectionConflictError struct {
	RequestID        string
	AcceptedVendorID string
	Reason           string
}

func (e *SelectionConflictError) Error() string {
	if e.AcceptedVendorID != "" {
		return fmt.Sprintf("selection conflict on request %s: %s (accepted vendor %s)",
			e.RequestID, e.Reason, e.AcceptedVendorID)
	}
	return fmt.Sprintf("selection conflict on request %s: %s", e.RequestID, e.Reason)
}

// Lifecycle drives the request state machine. All transitions go through the
// store's conditional status update, so concurrent attempts resolve to
// exactly one winner.
type Lifecycle struct {
	Store ports.RequestStore
	Now   func() time.Time
}

func (l *Lifecycle) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Begin moves a freshly created request into AwaitingSelection, or straight
// to Expired when no vendors are in range (returning ErrNoVendorsInRange).
// Broadcasting and collecting overlap in time; the intermediate transitions
// exist to mark that solicitation has begun.
func (l *Lifecycle) Begin(ctx context.Context, req *domain.Request, candidateCount int) error {
	if candidateCount == 0 {
		if err := l.Store.TransitionStatus(ctx, req.ID, domain.StatusCreated, domain.StatusExpired, ""); err != nil {
			return fmt.Errorf("lifecycle begin: expire request %s: %w", req.ID, err)
		}
		req.Status = domain.StatusExpired
		return fmt.Errorf("lifecycle begin: request %s: %w", req.ID, ErrNoVendorsInRange)
	}

	steps := []struct{ from, to domain.Status }{
		{domain.StatusCreated, domain.StatusBroadcasting},
		{domain.StatusBroadcasting, domain.StatusCollectingOffers},
		{domain.StatusCollectingOffers, domain.StatusAwaitingSelection},
	}
	for _, s := range steps {
		if err := l.Store.TransitionStatus(ctx, req.ID, s.from, s.to, ""); err != nil {
			return fmt.Errorf("lifecycle begin: %s -> %s for request %s: %w", s.from, s.to, req.ID, err)
		}
		req.Status = s.to
	}
	return nil
}

// Accept atomically selects one vendor for the request. Exactly one
// concurrent attempt succeeds; every other attempt (duplicate, race, or a
// different vendor) receives a SelectionConflictError naming the winner.
func (l *Lifecycle) Accept(ctx context.Context, requestID, vendorID string) (*domain.Request, error) {
	req, err := l.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("lifecycle accept: get request %s: %w", requestID, err)
	}

	if req.Status.Terminal() {
		return nil, &SelectionConflictError{
			RequestID:        requestID,
			AcceptedVendorID: req.AcceptedVendorID,
			Reason:           "request is " + string(req.Status),
		}
	}

	if !l.now().Before(req.Deadline) {
		// Selection raced the deadline and lost. Expire best-effort; a
		// concurrent expiry doing the same is fine.
		_ = l.Expire(ctx, requestID)
		return nil, &SelectionConflictError{RequestID: requestID, Reason: "deadline passed"}
	}

	err = l.Store.TransitionStatus(ctx, requestID, domain.StatusAwaitingSelection, domain.StatusAccepted, vendorID)
	if errors.Is(err, ports.ErrStatusConflict) {
		current, gerr := l.Store.GetRequest(ctx, requestID)
		if gerr != nil {
			return nil, fmt.Errorf("lifecycle accept: reload request %s after conflict: %w", requestID, gerr)
		}
		return nil, &SelectionConflictError{
			RequestID:        requestID,
			AcceptedVendorID: current.AcceptedVendorID,
			Reason:           "request is " + string(current.Status),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("lifecycle accept: transition request %s: %w", requestID, err)
	}

	req.Status = domain.StatusAccepted
	req.AcceptedVendorID = vendorID
	return req, nil
}

// Expire moves an unselected request past its deadline into Expired.
// Already-terminal requests are left alone.
func (l *Lifecycle) Expire(ctx context.Context, requestID string) error {
	err := l.Store.TransitionStatus(ctx, requestID, domain.StatusAwaitingSelection, domain.StatusExpired, "")
	if errors.Is(err, ports.ErrStatusConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lifecycle expire: request %s: %w", requestID, err)
	}
	return nil
}

// Cancel aborts a request from any non-terminal state.
func (l *Lifecycle) Cancel(ctx context.Context, requestID string) error {
	// The current status can move underneath us; retry the conditional
	// update against whatever we last observed.
	for attempt := 0; attempt < 4; attempt++ {
		req, err := l.Store.GetRequest(ctx, requestID)
		if err != nil {
			return fmt.Errorf("lifecycle cancel: get request %s: %w", requestID, err)
		}
		if req.Status.Terminal() {
			return &SelectionConflictError{
				RequestID:        requestID,
				AcceptedVendorID: req.AcceptedVendorID,
				Reason:           "request is " + string(req.Status),
			}
		}

		err = l.Store.TransitionStatus(ctx, requestID, req.Status, domain.StatusCancelled, "")
		if errors.Is(err, ports.ErrStatusConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("lifecycle cancel: request %s: %w", requestID, err)
		}
		return nil
	}
	return fmt.Errorf("lifecycle cancel: request %s: too many concurrent transitions", requestID)
}
