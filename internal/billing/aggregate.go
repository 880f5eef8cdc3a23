// Package billing computes billing, spent and remaining totals and the
// invoice-time discount breakdown from an in-memory project snapshot. Every
// function is pure: no input is mutated and repeated calls over the same
// snapshot return identical results.
//
// The advance payment is netted independently inside each of the three
// aggregates, so a single prepayment can influence all of them at once.
// Callers rely on that exact arithmetic; do not consolidate the netting.
package billing

import "studioops/atelier-pms/internal/domain"

// RawTotal is the nominal billing total, before any advance or discount.
func RawTotal(p *domain.Project) float64 {
	if p == nil {
		return 0
	}
	var sum float64
	for _, it := range p.BillingItems {
		sum += it.TotalPrice
	}
	return sum
}

// BillingTotal is the nominal total minus the advance payment.
func BillingTotal(p *domain.Project) float64 {
	if p == nil {
		return 0
	}
	return RawTotal(p) - p.AdvanceAmount
}

// completedTotal sums items whose work is done and billed.
func completedTotal(p *domain.Project) float64 {
	var sum float64
	for _, it := range p.BillingItems {
		if it.Status == domain.BillingCompleted {
			sum += it.TotalPrice
		}
	}
	return sum
}

// SpentTotal is the completed-work total with the advance applied against it
// first, floored at zero.
func SpentTotal(p *domain.Project) float64 {
	if p == nil {
		return 0
	}
	return max(0, completedTotal(p)-p.AdvanceAmount)
}

// RemainingTotal sums pending and in-progress items, reduced by whatever part
// of the advance was not consumed by completed work, floored at zero.
// Submitted items count toward neither spent nor remaining.
func RemainingTotal(p *domain.Project) float64 {
	if p == nil {
		return 0
	}
	var open float64
	for _, it := range p.BillingItems {
		if it.Status == domain.BillingPending || it.Status == domain.BillingInProgress {
			open += it.TotalPrice
		}
	}
	excessAdvance := max(0, p.AdvanceAmount-completedTotal(p))
	return max(0, open-excessAdvance)
}

// CompanyRevenue sums BillingTotal over every project of the company.
func CompanyRevenue(projects []domain.Project, companyID string) float64 {
	var sum float64
	for i := range projects {
		if projects[i].CompanyID == companyID {
			sum += BillingTotal(&projects[i])
		}
	}
	return sum
}

// CompanyCompletedRevenue sums SpentTotal over every project of the company.
func CompanyCompletedRevenue(projects []domain.Project, companyID string) float64 {
	var sum float64
	for i := range projects {
		if projects[i].CompanyID == companyID {
			sum += SpentTotal(&projects[i])
		}
	}
	return sum
}

// InvoiceBreakdown is the invoice-time view of a project's billing: the
// discount applies to the raw total, the advance is subtracted after it.
// None of these figures feed back into the three aggregates above.
type InvoiceBreakdown struct {
	RawTotal       float64 `json:"rawTotal"`
	DiscountAmount float64 `json:"discountAmount"`
	Subtotal       float64 `json:"subtotal"`
	AdvanceAmount  float64 `json:"advanceAmount"`
	FinalTotal     float64 `json:"finalTotal"`
}

func Invoice(p *domain.Project) InvoiceBreakdown {
	if p == nil {
		return InvoiceBreakdown{}
	}
	raw := RawTotal(p)
	discount := raw * p.DiscountPercentage / 100
	subtotal := raw - discount
	return InvoiceBreakdown{
		RawTotal:       raw,
		DiscountAmount: discount,
		Subtotal:       subtotal,
		AdvanceAmount:  p.AdvanceAmount,
		FinalTotal:     subtotal - p.AdvanceAmount,
	}
}
