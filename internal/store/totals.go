package store

import (
	"studioops/atelier-pms/internal/billing"
	"studioops/atelier-pms/internal/domain"
)

// Read accessors over the aggregation engine. A missing project yields 0 for
// every total; the computations themselves live in internal/billing.

func (s *Store) GetProjectBillingTotal(projectID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return billing.BillingTotal(s.projects[projectID])
}

func (s *Store) GetProjectSpentTotal(projectID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return billing.SpentTotal(s.projects[projectID])
}

func (s *Store) GetProjectRemainingTotal(projectID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return billing.RemainingTotal(s.projects[projectID])
}

func (s *Store) GetProjectInvoice(projectID string) billing.InvoiceBreakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return billing.Invoice(s.projects[projectID])
}

func (s *Store) companyProjects() []domain.Project {
	out := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *p)
	}
	return out
}

func (s *Store) GetCompanyRevenue(companyID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return billing.CompanyRevenue(s.companyProjects(), companyID)
}

func (s *Store) GetCompanyCompletedRevenue(companyID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return billing.CompanyCompletedRevenue(s.companyProjects(), companyID)
}
