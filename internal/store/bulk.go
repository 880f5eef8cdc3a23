package store

import (
	"context"
	"sync"

	"studioops/atelier-pms/internal/domain"
)

// BulkOutcome reports a bulk operation: how many items went through and how
// many failed. Per-item failures are independent for status updates; for
// delete a single failure rolls everything back.
type BulkOutcome struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// BulkUpdateBillingStatus issues one independent update per selected item.
// Successes are applied to the graph as they land; failures are only counted,
// never rolled back.
func (s *Store) BulkUpdateBillingStatus(ctx context.Context, itemIDs []string, status domain.BillingStatus) (res Result) {
	defer guard(&res)

	if !domain.ValidBillingStatus(status) {
		return fail("invalid billing status %q", status)
	}

	st := string(status)
	outcome := BulkOutcome{}
	for _, id := range itemIDs {
		b, err := s.backend.UpdateBillingItem(ctx, id, domain.UpdateBillingItemRequest{Status: &st}, s.currentTotalPrice(id))
		if err != nil {
			outcome.Failed++
			continue
		}
		outcome.Updated++
		s.mu.Lock()
		if p, i := s.findBillingItem(id); p != nil {
			p.BillingItems[i] = b
		}
		s.mu.Unlock()
	}
	return ok(outcome)
}

func (s *Store) currentTotalPrice(itemID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, i := s.findBillingItem(itemID); p != nil {
		it := p.BillingItems[i]
		return float64(it.Quantity) * it.UnitPrice
	}
	return 0
}

// BulkDeleteBillingItems is the one optimistic mutation: the selected rows
// leave the graph immediately, the deletions run concurrently, and if any of
// them fails the entire pre-operation billing slice is restored, so the user
// sees all-or-nothing even though the failures are per-item.
func (s *Store) BulkDeleteBillingItems(ctx context.Context, projectID string, itemIDs []string) (res Result) {
	defer guard(&res)

	selected := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		selected[id] = struct{}{}
	}

	s.mu.Lock()
	p, okp := s.projects[projectID]
	if !okp {
		s.mu.Unlock()
		return fail("unknown project %q", projectID)
	}
	snapshot := append([]domain.BillingItem(nil), p.BillingItems...)

	kept := p.BillingItems[:0:0]
	for _, it := range p.BillingItems {
		if _, del := selected[it.ID]; !del {
			kept = append(kept, it)
		}
	}
	p.BillingItems = kept
	s.mu.Unlock()

	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
		failed int
	)
	for _, id := range itemIDs {
		wg.Add(1)
		go func(itemID string) {
			defer wg.Done()
			if err := s.backend.DeleteBillingItem(ctx, itemID); err != nil {
				failMu.Lock()
				failed++
				failMu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if failed > 0 {
		s.mu.Lock()
		if p, okp := s.projects[projectID]; okp {
			p.BillingItems = snapshot
		}
		s.mu.Unlock()
		return Result{
			Error: "bulk delete failed, changes rolled back",
			Data:  BulkOutcome{Updated: 0, Failed: failed},
		}
	}

	return ok(BulkOutcome{Updated: len(itemIDs)})
}
