// Package store is the application state store: the single in-memory source
// of truth for the denormalized project/company graph during a session. All
// mutations funnel through it; reads hand out copies so callers can never
// alias the graph.
//
// Two persistence strategies coexist deliberately (they differ in the
// source system and the split is observable behavior): status/entity
// mutations are commit-after-success, nothing local changes until the
// backend confirmed, while bulk billing delete is optimistic with a
// full-snapshot rollback (see bulk.go).
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"studioops/atelier-pms/internal/domain"
)

// ErrGroupNotFound reports a group that vanished from the graph, e.g. it was
// deleted by a concurrent session between lookup and write.
var ErrGroupNotFound = errors.New("group not found")

// Backend is the data access layer the store mediates. *dal.Repo implements
// it; tests substitute recording fakes.
type Backend interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)
	CreateProject(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error)
	UpdateProject(ctx context.Context, projectID string, req domain.UpdateProjectRequest) (domain.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	CreateTask(ctx context.Context, req domain.CreateTaskRequest) (domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, req domain.UpdateTaskRequest) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) error

	CreateTaskGroup(ctx context.Context, req domain.CreateTaskGroupRequest) (domain.TaskGroup, error)
	UpdateTaskGroup(ctx context.Context, groupID string, req domain.UpdateTaskGroupRequest) (domain.TaskGroup, error)
	DeleteTaskGroup(ctx context.Context, groupID string) error

	CreateBillingItem(ctx context.Context, req domain.CreateBillingItemRequest) (domain.BillingItem, error)
	UpdateBillingItem(ctx context.Context, itemID string, req domain.UpdateBillingItemRequest, totalPrice float64) (domain.BillingItem, error)
	DeleteBillingItem(ctx context.Context, itemID string) error

	CreateIssue(ctx context.Context, req domain.CreateIssueRequest, reportedBy string, status domain.IssueStatus) (domain.Issue, error)
	UpdateIssue(ctx context.Context, issueID string, req domain.UpdateIssueRequest) (domain.Issue, error)
	ResolveApproval(ctx context.Context, issueID string, approved bool, reason string, at time.Time) (domain.Issue, error)
	DeleteIssue(ctx context.Context, issueID string) error

	ListCompanies(ctx context.Context) ([]domain.Company, error)
	CreateCompany(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error)
	UpdateCompany(ctx context.Context, companyID string, req domain.UpdateCompanyRequest) (domain.Company, error)
	DeleteCompany(ctx context.Context, companyID string) error
}

// Result is the shape every mutator returns to the presentation layer.
// Mutators never panic outward; unexpected failures become Result errors.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(data any) Result {
	return Result{Success: true, Data: data}
}

func fail(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

type Store struct {
	mu      sync.Mutex
	backend Backend

	projects  map[string]*domain.Project
	companies map[string]*domain.Company
	users     []domain.User

	// unsaved billing rows from clipboard paste, per project
	pending map[string][]PendingBillingRow
}

// New builds an empty store; call Load to snapshot the backend. The store is
// constructed once at startup and passed to the API layer by reference.
func New(backend Backend) *Store {
	return &Store{
		backend:   backend,
		projects:  make(map[string]*domain.Project),
		companies: make(map[string]*domain.Company),
		pending:   make(map[string][]PendingBillingRow),
	}
}

// Load replaces the in-memory graph with a fresh backend snapshot.
func (s *Store) Load(ctx context.Context) error {
	projects, err := s.backend.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	companies, err := s.backend.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = make(map[string]*domain.Project, len(projects))
	for i := range projects {
		p := projects[i]
		s.projects[p.ID] = &p
	}
	s.companies = make(map[string]*domain.Company, len(companies))
	for i := range companies {
		c := companies[i]
		s.companies[c.ID] = &c
	}
	return nil
}

// SetUsers replaces the assignment-picker user list (sourced from Keycloak).
func (s *Store) SetUsers(users []domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
}

func (s *Store) ListUsers() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}

// cloneProject copies the project and its owned slices so callers cannot
// mutate the graph behind the store's back.
func cloneProject(p *domain.Project) *domain.Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tasks = append([]domain.Task(nil), p.Tasks...)
	cp.TaskGroups = append([]domain.TaskGroup(nil), p.TaskGroups...)
	cp.BillingItems = append([]domain.BillingItem(nil), p.BillingItems...)
	cp.Issues = append([]domain.Issue(nil), p.Issues...)
	cp.Team = append([]string(nil), p.Team...)
	return &cp
}

func (s *Store) GetProjectByID(projectID string) *domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProject(s.projects[projectID])
}

func (s *Store) ListProjects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) GetCompanyByID(companyID string) *domain.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, okc := s.companies[companyID]; okc {
		cp := *c
		return &cp
	}
	return nil
}

func (s *Store) ListCompanies() []domain.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// findTask locates a task in the graph. Callers must hold s.mu.
func (s *Store) findTask(taskID string) (*domain.Project, int) {
	for _, p := range s.projects {
		for i := range p.Tasks {
			if p.Tasks[i].ID == taskID {
				return p, i
			}
		}
	}
	return nil, -1
}

func (s *Store) findGroup(groupID string) (*domain.Project, int) {
	for _, p := range s.projects {
		for i := range p.TaskGroups {
			if p.TaskGroups[i].ID == groupID {
				return p, i
			}
		}
	}
	return nil, -1
}

func (s *Store) findBillingItem(itemID string) (*domain.Project, int) {
	for _, p := range s.projects {
		for i := range p.BillingItems {
			if p.BillingItems[i].ID == itemID {
				return p, i
			}
		}
	}
	return nil, -1
}

func (s *Store) findIssue(issueID string) (*domain.Project, int) {
	for _, p := range s.projects {
		for i := range p.Issues {
			if p.Issues[i].ID == issueID {
				return p, i
			}
		}
	}
	return nil, -1
}

// TaskByID returns a copy of the task and its project id.
func (s *Store) TaskByID(taskID string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findTask(taskID)
	if p == nil {
		return domain.Task{}, false
	}
	return p.Tasks[i], true
}

func (s *Store) GroupByID(groupID string) (domain.TaskGroup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findGroup(groupID)
	if p == nil {
		return domain.TaskGroup{}, false
	}
	return p.TaskGroups[i], true
}

// TasksInGroup returns copies of the tasks whose groupId matches.
func (s *Store) TasksInGroup(groupID string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.findGroup(groupID)
	if p == nil {
		return nil
	}
	out := make([]domain.Task, 0, 8)
	for _, t := range p.Tasks {
		if t.GroupID != nil && *t.GroupID == groupID {
			out = append(out, t)
		}
	}
	return out
}

// CommitTaskStatus persists a status/progress change and applies it locally
// only after the backend confirmed (commit-after-success). On failure the
// in-memory task is untouched.
func (s *Store) CommitTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus, progress int) (domain.Task, error) {
	st := string(status)
	updated, err := s.backend.UpdateTask(ctx, taskID, domain.UpdateTaskRequest{
		Status:   &st,
		Progress: &progress,
	})
	if err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, i := s.findTask(taskID); p != nil {
		p.Tasks[i] = updated
	}
	return updated, nil
}

// CommitGroupStatus is the group counterpart: status only, no progress field.
func (s *Store) CommitGroupStatus(ctx context.Context, groupID string, status domain.TaskStatus) (domain.TaskGroup, error) {
	st := string(status)
	updated, err := s.backend.UpdateTaskGroup(ctx, groupID, domain.UpdateTaskGroupRequest{
		Status: &st,
	})
	if err != nil {
		return domain.TaskGroup{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, i := s.findGroup(groupID); p != nil {
		p.TaskGroups[i] = updated
	}
	return updated, nil
}
