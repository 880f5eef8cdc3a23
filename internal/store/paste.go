package store

import (
	"context"
	"strings"

	"studioops/atelier-pms/internal/domain"
	"studioops/atelier-pms/internal/utils"
)

// PendingBillingRow is an unsaved billing row parsed from pasted spreadsheet
// text. Rows sit in a per-project buffer until saved or discarded.
type PendingBillingRow struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// ParsePastedRows turns tab/newline-delimited clipboard text into pending
// rows. Columns are positional: name, description, quantity, unit price.
// An invalid or missing quantity defaults to 1, price to 0.
func ParsePastedRows(text string) []PendingBillingRow {
	out := make([]PendingBillingRow, 0, 8)
	for _, line := range strings.Split(utils.NormalizeNewlines(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")

		row := PendingBillingRow{Quantity: 1}
		row.Name = strings.TrimSpace(cols[0])
		if len(cols) > 1 {
			row.Description = strings.TrimSpace(cols[1])
		}
		if len(cols) > 2 {
			row.Quantity = utils.QuantityOr(cols[2], 1)
		}
		if len(cols) > 3 {
			row.UnitPrice = utils.PriceOr(cols[3], 0)
		}
		if row.Name == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}

// PastePending parses the text and appends the rows to the project's pending
// buffer, returning how many rows were added.
func (s *Store) PastePending(projectID, text string) int {
	rows := ParsePastedRows(text)
	if len(rows) == 0 {
		return 0
	}
	s.mu.Lock()
	s.pending[projectID] = append(s.pending[projectID], rows...)
	s.mu.Unlock()
	return len(rows)
}

func (s *Store) PendingRows(projectID string) []PendingBillingRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PendingBillingRow(nil), s.pending[projectID]...)
}

func (s *Store) DiscardPending(projectID string) {
	s.mu.Lock()
	delete(s.pending, projectID)
	s.mu.Unlock()
}

// SavePendingRow persists a single buffered row by index and removes it from
// the buffer on success.
func (s *Store) SavePendingRow(ctx context.Context, projectID string, index int) (res Result) {
	defer guard(&res)

	s.mu.Lock()
	rows := s.pending[projectID]
	if index < 0 || index >= len(rows) {
		s.mu.Unlock()
		return fail("no pending row at index %d", index)
	}
	row := rows[index]
	s.mu.Unlock()

	out := s.AddBillingItem(ctx, domain.CreateBillingItemRequest{
		ProjectID:   projectID,
		Name:        row.Name,
		Description: row.Description,
		Quantity:    row.Quantity,
		UnitPrice:   row.UnitPrice,
	})
	if !out.Success {
		return out
	}

	s.mu.Lock()
	rows = s.pending[projectID]
	if index < len(rows) {
		s.pending[projectID] = append(rows[:index], rows[index+1:]...)
	}
	s.mu.Unlock()
	return out
}

// SaveAllPending persists every buffered row; rows that fail stay buffered.
func (s *Store) SaveAllPending(ctx context.Context, projectID string) (res Result) {
	defer guard(&res)

	s.mu.Lock()
	rows := append([]PendingBillingRow(nil), s.pending[projectID]...)
	s.mu.Unlock()

	outcome := BulkOutcome{}
	remaining := make([]PendingBillingRow, 0, len(rows))
	for _, row := range rows {
		out := s.AddBillingItem(ctx, domain.CreateBillingItemRequest{
			ProjectID:   projectID,
			Name:        row.Name,
			Description: row.Description,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
		})
		if out.Success {
			outcome.Updated++
		} else {
			outcome.Failed++
			remaining = append(remaining, row)
		}
	}

	s.mu.Lock()
	if len(remaining) == 0 {
		delete(s.pending, projectID)
	} else {
		s.pending[projectID] = remaining
	}
	s.mu.Unlock()

	if outcome.Failed > 0 {
		return Result{Error: "some rows failed to save", Data: outcome}
	}
	return ok(outcome)
}
