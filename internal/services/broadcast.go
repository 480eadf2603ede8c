package services

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/ports"
)

const defaultSolicitationConcurrency = 8

// Broadcaster fans a single request out to all candidate vendors as
// independent, concurrent solicitations bounded by the request deadline.
type Broadcaster struct {
	Solicitor      ports.VendorSolicitor
	MaxConcurrency int
}

// Broadcast solicits every candidate and streams responses into the returned
// channel. The channel closes when all solicitations have finished or the
// request deadline passes, whichever comes first.
//
// A vendor failure or timeout is an empty contribution, never an error:
// one blocked vendor cannot hold up the others or the deadline. Arrival
// order is whatever the network produces; downstream aggregation does not
// depend on it.
func (b *Broadcaster) Broadcast(
	ctx context.Context,
	req *domain.Request,
	candidates []Candidate,
) <-chan *domain.VendorOffer {
	out := make(chan *domain.VendorOffer, len(candidates))

	ctx, cancel := context.WithDeadline(ctx, req.Deadline)

	limit := b.MaxConcurrency
	if limit <= 0 {
		limit = defaultSolicitationConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, c := range candidates {
		vendor := c.Vendor
		g.Go(func() error {
			offer, err := b.Solicitor.Solicit(ctx, vendor, req)
			if err != nil {
				// Non-responders are simply absent from the result set.
				log.Printf("solicit failed: request_id=%s vendor_id=%s err=%v", req.ID, vendor.ID, err)
				return nil
			}
			if offer == nil {
				return nil
			}

			select {
			case out <- offer:
			case <-ctx.Done():
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		cancel()
		close(out)
	}()

	return out
}
