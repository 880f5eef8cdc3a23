// Package storetest provides an in-memory recording fake of the store's
// Backend interface for tests: it applies mutations to a seeded project
// graph, logs every call, and can be told to fail specific operations.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"studioops/atelier-pms/internal/domain"
)

type Call struct {
	Method string
	ID     string
}

type Fake struct {
	mu        sync.Mutex
	Projects  []domain.Project
	Companies []domain.Company
	Calls     []Call

	// FailOn maps "Method" or "Method:id" to the error that call returns.
	FailOn map[string]error
}

func New() *Fake {
	return &Fake{FailOn: make(map[string]error)}
}

// Seed installs a project graph and returns the fake for chaining.
func (f *Fake) Seed(projects ...domain.Project) *Fake {
	f.Projects = append(f.Projects, projects...)
	return f
}

func (f *Fake) record(method, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: method, ID: id})
	if err, okf := f.FailOn[method+":"+id]; okf {
		return err
	}
	if err, okf := f.FailOn[method]; okf {
		return err
	}
	return nil
}

// CallCount counts recorded calls of the given method.
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *Fake) findProject(id string) *domain.Project {
	for i := range f.Projects {
		if f.Projects[i].ID == id {
			return &f.Projects[i]
		}
	}
	return nil
}

func (f *Fake) findTask(id string) *domain.Task {
	for i := range f.Projects {
		for j := range f.Projects[i].Tasks {
			if f.Projects[i].Tasks[j].ID == id {
				return &f.Projects[i].Tasks[j]
			}
		}
	}
	return nil
}

func (f *Fake) findGroup(id string) *domain.TaskGroup {
	for i := range f.Projects {
		for j := range f.Projects[i].TaskGroups {
			if f.Projects[i].TaskGroups[j].ID == id {
				return &f.Projects[i].TaskGroups[j]
			}
		}
	}
	return nil
}

func (f *Fake) findIssue(id string) *domain.Issue {
	for i := range f.Projects {
		for j := range f.Projects[i].Issues {
			if f.Projects[i].Issues[j].ID == id {
				return &f.Projects[i].Issues[j]
			}
		}
	}
	return nil
}

var errNotFound = fmt.Errorf("entity not found")

// --- projects / companies ---

func (f *Fake) ListProjects(context.Context) ([]domain.Project, error) {
	if err := f.record("ListProjects", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Project(nil), f.Projects...), nil
}

func (f *Fake) GetProject(_ context.Context, id string) (*domain.Project, error) {
	if err := f.record("GetProject", id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.findProject(id); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, errNotFound
}

func (f *Fake) CreateProject(_ context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	if err := f.record("CreateProject", ""); err != nil {
		return domain.Project{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.Project{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		CompanyID:          req.CompanyID,
		Status:             domain.ProjectPending,
		DiscountPercentage: req.DiscountPercentage,
		AdvanceAmount:      req.AdvanceAmount,
		CreatedAt:          time.Now(),
	}
	if req.Status != "" {
		p.Status = domain.ProjectStatus(req.Status)
	}
	f.Projects = append(f.Projects, p)
	return p, nil
}

func (f *Fake) UpdateProject(_ context.Context, id string, req domain.UpdateProjectRequest) (domain.Project, error) {
	if err := f.record("UpdateProject", id); err != nil {
		return domain.Project{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.findProject(id)
	if p == nil {
		return domain.Project{}, errNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Status != nil {
		p.Status = domain.ProjectStatus(*req.Status)
	}
	if req.Paid != nil {
		p.Paid = *req.Paid
	}
	if req.DiscountPercentage != nil {
		p.DiscountPercentage = *req.DiscountPercentage
	}
	if req.AdvanceAmount != nil {
		p.AdvanceAmount = *req.AdvanceAmount
	}
	return *p, nil
}

func (f *Fake) DeleteProject(_ context.Context, id string) error {
	if err := f.record("DeleteProject", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Projects {
		if f.Projects[i].ID == id {
			f.Projects = append(f.Projects[:i], f.Projects[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (f *Fake) ListCompanies(context.Context) ([]domain.Company, error) {
	if err := f.record("ListCompanies", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Company(nil), f.Companies...), nil
}

func (f *Fake) CreateCompany(_ context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	if err := f.record("CreateCompany", ""); err != nil {
		return domain.Company{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Company{ID: uuid.NewString(), Name: req.Name, Email: req.Email, IsActive: true, CreatedAt: time.Now()}
	f.Companies = append(f.Companies, c)
	return c, nil
}

func (f *Fake) UpdateCompany(_ context.Context, id string, req domain.UpdateCompanyRequest) (domain.Company, error) {
	if err := f.record("UpdateCompany", id); err != nil {
		return domain.Company{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Companies {
		if f.Companies[i].ID == id {
			if req.Name != nil {
				f.Companies[i].Name = *req.Name
			}
			if req.IsActive != nil {
				f.Companies[i].IsActive = *req.IsActive
			}
			return f.Companies[i], nil
		}
	}
	return domain.Company{}, errNotFound
}

func (f *Fake) DeleteCompany(_ context.Context, id string) error {
	if err := f.record("DeleteCompany", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Companies {
		if f.Companies[i].ID == id {
			f.Companies = append(f.Companies[:i], f.Companies[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

// --- tasks ---

func (f *Fake) CreateTask(_ context.Context, req domain.CreateTaskRequest) (domain.Task, error) {
	if err := f.record("CreateTask", ""); err != nil {
		return domain.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.findProject(req.ProjectID)
	if p == nil {
		return domain.Task{}, errNotFound
	}
	t := domain.Task{
		ID:         uuid.NewString(),
		ProjectID:  req.ProjectID,
		Title:      req.Title,
		Status:     domain.StatusTodo,
		Priority:   domain.PriorityMedium,
		AssignedTo: req.AssignedTo,
		GroupID:    req.GroupID,
		CreatedAt:  time.Now(),
	}
	if req.Status != "" {
		t.Status = domain.TaskStatus(req.Status)
	}
	if req.Priority != "" {
		t.Priority = domain.Priority(req.Priority)
	}
	p.Tasks = append(p.Tasks, t)
	return t, nil
}

func (f *Fake) UpdateTask(_ context.Context, id string, req domain.UpdateTaskRequest) (domain.Task, error) {
	if err := f.record("UpdateTask", id); err != nil {
		return domain.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.findTask(id)
	if t == nil {
		return domain.Task{}, errNotFound
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Status != nil {
		t.Status = domain.TaskStatus(*req.Status)
	}
	if req.Progress != nil {
		t.Progress = *req.Progress
	}
	if req.Priority != nil {
		t.Priority = domain.Priority(*req.Priority)
	}
	if req.AssignedTo != nil {
		t.AssignedTo = req.AssignedTo
	}
	if req.TimeSpent != nil {
		t.TimeSpent = *req.TimeSpent
	}
	if req.GroupID != nil {
		t.GroupID = req.GroupID
	}
	return *t, nil
}

func (f *Fake) DeleteTask(_ context.Context, id string) error {
	if err := f.record("DeleteTask", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Projects {
		p := &f.Projects[i]
		for j := range p.Tasks {
			if p.Tasks[j].ID == id {
				p.Tasks = append(p.Tasks[:j], p.Tasks[j+1:]...)
				return nil
			}
		}
	}
	return errNotFound
}

// --- task groups ---

func (f *Fake) CreateTaskGroup(_ context.Context, req domain.CreateTaskGroupRequest) (domain.TaskGroup, error) {
	if err := f.record("CreateTaskGroup", ""); err != nil {
		return domain.TaskGroup{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.findProject(req.ProjectID)
	if p == nil {
		return domain.TaskGroup{}, errNotFound
	}
	g := domain.TaskGroup{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Color:     req.Color,
		Status:    domain.StatusTodo,
		CreatedAt: time.Now(),
	}
	p.TaskGroups = append(p.TaskGroups, g)
	return g, nil
}

func (f *Fake) UpdateTaskGroup(_ context.Context, id string, req domain.UpdateTaskGroupRequest) (domain.TaskGroup, error) {
	if err := f.record("UpdateTaskGroup", id); err != nil {
		return domain.TaskGroup{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.findGroup(id)
	if g == nil {
		return domain.TaskGroup{}, errNotFound
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Status != nil {
		g.Status = domain.TaskStatus(*req.Status)
	}
	if req.Color != nil {
		g.Color = *req.Color
	}
	return *g, nil
}

func (f *Fake) DeleteTaskGroup(_ context.Context, id string) error {
	if err := f.record("DeleteTaskGroup", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Projects {
		p := &f.Projects[i]
		for j := range p.TaskGroups {
			if p.TaskGroups[j].ID == id {
				p.TaskGroups = append(p.TaskGroups[:j], p.TaskGroups[j+1:]...)
				for k := range p.Tasks {
					if p.Tasks[k].GroupID != nil && *p.Tasks[k].GroupID == id {
						p.Tasks[k].GroupID = nil
					}
				}
				return nil
			}
		}
	}
	return errNotFound
}

// --- billing items ---

func (f *Fake) CreateBillingItem(_ context.Context, req domain.CreateBillingItemRequest) (domain.BillingItem, error) {
	if err := f.record("CreateBillingItem", ""); err != nil {
		return domain.BillingItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.findProject(req.ProjectID)
	if p == nil {
		return domain.BillingItem{}, errNotFound
	}
	b := domain.BillingItem{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TotalPrice:  float64(req.Quantity) * req.UnitPrice,
		Status:      domain.BillingPending,
		CreatedAt:   time.Now(),
	}
	if req.Status != "" {
		b.Status = domain.BillingStatus(req.Status)
	}
	p.BillingItems = append(p.BillingItems, b)
	return b, nil
}

func (f *Fake) UpdateBillingItem(_ context.Context, id string, req domain.UpdateBillingItemRequest, totalPrice float64) (domain.BillingItem, error) {
	if err := f.record("UpdateBillingItem", id); err != nil {
		return domain.BillingItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Projects {
		p := &f.Projects[i]
		for j := range p.BillingItems {
			if p.BillingItems[j].ID != id {
				continue
			}
			b := &p.BillingItems[j]
			if req.Name != nil {
				b.Name = *req.Name
			}
			if req.Quantity != nil {
				b.Quantity = *req.Quantity
			}
			if req.UnitPrice != nil {
				b.UnitPrice = *req.UnitPrice
			}
			if req.Status != nil {
				b.Status = domain.BillingStatus(*req.Status)
			}
			b.TotalPrice = totalPrice
			return *b, nil
		}
	}
	return domain.BillingItem{}, errNotFound
}

func (f *Fake) DeleteBillingItem(_ context.Context, id string) error {
	if err := f.record("DeleteBillingItem", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Projects {
		p := &f.Projects[i]
		for j := range p.BillingItems {
			if p.BillingItems[j].ID == id {
				p.BillingItems = append(p.BillingItems[:j], p.BillingItems[j+1:]...)
				return nil
			}
		}
	}
	return errNotFound
}

// --- issues ---

func (f *Fake) CreateIssue(_ context.Context, req domain.CreateIssueRequest, reportedBy string, status domain.IssueStatus) (domain.Issue, error) {
	if err := f.record("CreateIssue", ""); err != nil {
		return domain.Issue{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.findProject(req.ProjectID)
	if p == nil {
		return domain.Issue{}, errNotFound
	}
	is := domain.Issue{
		ID:         uuid.NewString(),
		ProjectID:  req.ProjectID,
		Title:      req.Title,
		Type:       domain.IssueGeneral,
		Status:     status,
		Priority:   domain.PriorityMedium,
		ReportedBy: reportedBy,
		TaskID:     req.TaskID,
		GroupID:    req.GroupID,
		CreatedAt:  time.Now(),
	}
	if req.Type != "" {
		is.Type = domain.IssueType(req.Type)
	}
	p.Issues = append(p.Issues, is)
	return is, nil
}

func (f *Fake) UpdateIssue(_ context.Context, id string, req domain.UpdateIssueRequest) (domain.Issue, error) {
	if err := f.record("UpdateIssue", id); err != nil {
		return domain.Issue{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	is := f.findIssue(id)
	if is == nil {
		return domain.Issue{}, errNotFound
	}
	if req.Title != nil {
		is.Title = *req.Title
	}
	if req.Status != nil {
		is.Status = domain.IssueStatus(*req.Status)
	}
	if req.Priority != nil {
		is.Priority = domain.Priority(*req.Priority)
	}
	return *is, nil
}

func (f *Fake) ResolveApproval(_ context.Context, id string, approved bool, reason string, at time.Time) (domain.Issue, error) {
	if err := f.record("ResolveApproval", id); err != nil {
		return domain.Issue{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	is := f.findIssue(id)
	if is == nil {
		return domain.Issue{}, errNotFound
	}
	if approved {
		is.Status = domain.IssueApproved
		is.ApprovedAt = &at
	} else {
		is.Status = domain.IssueRejected
		is.RejectedAt = &at
		is.RejectionReason = &reason
	}
	return *is, nil
}

func (f *Fake) DeleteIssue(_ context.Context, id string) error {
	if err := f.record("DeleteIssue", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Projects {
		p := &f.Projects[i]
		for j := range p.Issues {
			if p.Issues[j].ID == id {
				p.Issues = append(p.Issues[:j], p.Issues[j+1:]...)
				return nil
			}
		}
	}
	return errNotFound
}
