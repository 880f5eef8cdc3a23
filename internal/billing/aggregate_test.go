package billing

import (
	"testing"

	"studioops/atelier-pms/internal/domain"
)

func item(qty int, price float64, status domain.BillingStatus) domain.BillingItem {
	return domain.BillingItem{
		Quantity:   qty,
		UnitPrice:  price,
		TotalPrice: float64(qty) * price,
		Status:     status,
	}
}

func TestTotalsWithAdvance(t *testing.T) {
	p := &domain.Project{
		AdvanceAmount: 200,
		BillingItems: []domain.BillingItem{
			item(2, 500, domain.BillingCompleted),
			item(1, 300, domain.BillingPending),
		},
	}

	if got := RawTotal(p); got != 1300 {
		t.Errorf("RawTotal = %v, want 1300", got)
	}
	if got := BillingTotal(p); got != 1100 {
		t.Errorf("BillingTotal = %v, want 1100", got)
	}
	if got := SpentTotal(p); got != 800 {
		t.Errorf("SpentTotal = %v, want 800", got)
	}
	if got := RemainingTotal(p); got != 300 {
		t.Errorf("RemainingTotal = %v, want 300", got)
	}
}

func TestAdvanceExceedsCompleted(t *testing.T) {
	// advance larger than completed work: the excess eats into remaining
	p := &domain.Project{
		AdvanceAmount: 500,
		BillingItems: []domain.BillingItem{
			item(1, 200, domain.BillingCompleted),
			item(1, 400, domain.BillingInProgress),
		},
	}

	if got := SpentTotal(p); got != 0 {
		t.Errorf("SpentTotal = %v, want 0", got)
	}
	// excess advance 300 against 400 open
	if got := RemainingTotal(p); got != 100 {
		t.Errorf("RemainingTotal = %v, want 100", got)
	}
}

func TestEmptyAndNilProjects(t *testing.T) {
	empty := &domain.Project{}
	for name, got := range map[string]float64{
		"RawTotal":       RawTotal(empty),
		"BillingTotal":   BillingTotal(empty),
		"SpentTotal":     SpentTotal(empty),
		"RemainingTotal": RemainingTotal(empty),
	} {
		if got != 0 {
			t.Errorf("%s(empty) = %v, want 0", name, got)
		}
	}

	if got := BillingTotal(nil); got != 0 {
		t.Errorf("BillingTotal(nil) = %v, want 0", got)
	}
	if got := SpentTotal(nil); got != 0 {
		t.Errorf("SpentTotal(nil) = %v, want 0", got)
	}
	if got := RemainingTotal(nil); got != 0 {
		t.Errorf("RemainingTotal(nil) = %v, want 0", got)
	}
	if got := Invoice(nil); got != (InvoiceBreakdown{}) {
		t.Errorf("Invoice(nil) = %+v, want zero breakdown", got)
	}
}

func TestSubmittedCountsNowhere(t *testing.T) {
	p := &domain.Project{
		BillingItems: []domain.BillingItem{
			item(1, 100, domain.BillingSubmitted),
		},
	}
	if got := SpentTotal(p); got != 0 {
		t.Errorf("SpentTotal = %v, want 0", got)
	}
	if got := RemainingTotal(p); got != 0 {
		t.Errorf("RemainingTotal = %v, want 0", got)
	}
	if got := RawTotal(p); got != 100 {
		t.Errorf("RawTotal = %v, want 100", got)
	}
}

func TestCompanyRevenue(t *testing.T) {
	projects := []domain.Project{
		{
			CompanyID:     "c1",
			AdvanceAmount: 100,
			BillingItems:  []domain.BillingItem{item(1, 1000, domain.BillingCompleted)},
		},
		{
			CompanyID:    "c1",
			BillingItems: []domain.BillingItem{item(2, 250, domain.BillingPending)},
		},
		{
			CompanyID:    "c2",
			BillingItems: []domain.BillingItem{item(1, 9999, domain.BillingCompleted)},
		},
	}

	if got := CompanyRevenue(projects, "c1"); got != 1400 {
		t.Errorf("CompanyRevenue(c1) = %v, want 1400", got)
	}
	if got := CompanyCompletedRevenue(projects, "c1"); got != 900 {
		t.Errorf("CompanyCompletedRevenue(c1) = %v, want 900", got)
	}
	if got := CompanyRevenue(projects, "nope"); got != 0 {
		t.Errorf("CompanyRevenue(nope) = %v, want 0", got)
	}
}

func TestInvoiceBreakdown(t *testing.T) {
	p := &domain.Project{
		DiscountPercentage: 10,
		AdvanceAmount:      200,
		BillingItems: []domain.BillingItem{
			item(2, 500, domain.BillingCompleted),
			item(1, 300, domain.BillingPending),
		},
	}

	inv := Invoice(p)
	if inv.RawTotal != 1300 {
		t.Errorf("RawTotal = %v, want 1300", inv.RawTotal)
	}
	if inv.DiscountAmount != 130 {
		t.Errorf("DiscountAmount = %v, want 130", inv.DiscountAmount)
	}
	if inv.Subtotal != 1170 {
		t.Errorf("Subtotal = %v, want 1170", inv.Subtotal)
	}
	if inv.FinalTotal != 970 {
		t.Errorf("FinalTotal = %v, want 970", inv.FinalTotal)
	}
}

func TestPurity(t *testing.T) {
	p := &domain.Project{
		AdvanceAmount: 50,
		BillingItems:  []domain.BillingItem{item(3, 100, domain.BillingCompleted)},
	}

	before := *p
	first := SpentTotal(p)
	second := SpentTotal(p)
	if first != second {
		t.Errorf("SpentTotal not idempotent: %v then %v", first, second)
	}
	if p.AdvanceAmount != before.AdvanceAmount || len(p.BillingItems) != len(before.BillingItems) {
		t.Error("aggregate mutated its input")
	}
	if p.BillingItems[0] != before.BillingItems[0] {
		t.Error("aggregate mutated a billing item")
	}
}
