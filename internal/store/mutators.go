package store

import (
	"context"
	"strings"
	"time"

	"studioops/atelier-pms/internal/domain"
)

// guard converts an unexpected panic into a failed Result so no mutator ever
// throws across the presentation boundary.
func guard(res *Result) {
	if v := recover(); v != nil {
		*res = fail("internal error: %v", v)
	}
}

// canTouchTask enforces the designer write restriction before any backend
// call: a 3d-designer may only act on tasks assigned to them.
func canTouchTask(actor domain.Actor, t domain.Task) bool {
	if actor.Role != domain.RoleDesigner {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == actor.ID
}

// --- projects ---

func (s *Store) AddProject(ctx context.Context, req domain.CreateProjectRequest) (res Result) {
	defer guard(&res)

	if strings.TrimSpace(req.Name) == "" {
		return fail("project name is required")
	}

	s.mu.Lock()
	_, known := s.companies[req.CompanyID]
	s.mu.Unlock()
	if !known {
		return fail("unknown company %q", req.CompanyID)
	}

	p, err := s.backend.CreateProject(ctx, req)
	if err != nil {
		return fail("create project: %v", err)
	}

	s.mu.Lock()
	s.projects[p.ID] = &p
	s.mu.Unlock()
	return ok(cloneProject(&p))
}

func (s *Store) UpdateProject(ctx context.Context, projectID string, req domain.UpdateProjectRequest) (res Result) {
	defer guard(&res)

	if req.DiscountPercentage != nil && (*req.DiscountPercentage < 0 || *req.DiscountPercentage > 100) {
		return fail("discount percentage must be between 0 and 100")
	}
	if req.AdvanceAmount != nil && *req.AdvanceAmount < 0 {
		return fail("advance amount cannot be negative")
	}

	updated, err := s.backend.UpdateProject(ctx, projectID, req)
	if err != nil {
		return fail("update project: %v", err)
	}

	s.mu.Lock()
	if p, okp := s.projects[projectID]; okp {
		// keep the owned collections, refresh the scalar fields
		updated.Tasks = p.Tasks
		updated.TaskGroups = p.TaskGroups
		updated.BillingItems = p.BillingItems
		updated.Issues = p.Issues
		*p = updated
	}
	s.mu.Unlock()
	return ok(nil)
}

// DeleteProject cascades: tasks, groups, billing items and issues go with it
// on the backend and the whole node is dropped from the graph.
func (s *Store) DeleteProject(ctx context.Context, projectID string) (res Result) {
	defer guard(&res)

	if err := s.backend.DeleteProject(ctx, projectID); err != nil {
		return fail("delete project: %v", err)
	}

	s.mu.Lock()
	delete(s.projects, projectID)
	delete(s.pending, projectID)
	s.mu.Unlock()
	return ok(nil)
}

// --- companies ---

func (s *Store) AddCompany(ctx context.Context, req domain.CreateCompanyRequest) (res Result) {
	defer guard(&res)

	if strings.TrimSpace(req.Name) == "" {
		return fail("company name is required")
	}

	c, err := s.backend.CreateCompany(ctx, req)
	if err != nil {
		return fail("create company: %v", err)
	}

	s.mu.Lock()
	s.companies[c.ID] = &c
	s.mu.Unlock()
	return ok(c)
}

func (s *Store) UpdateCompany(ctx context.Context, companyID string, req domain.UpdateCompanyRequest) (res Result) {
	defer guard(&res)

	c, err := s.backend.UpdateCompany(ctx, companyID, req)
	if err != nil {
		return fail("update company: %v", err)
	}

	s.mu.Lock()
	s.companies[companyID] = &c
	s.mu.Unlock()
	return ok(c)
}

func (s *Store) DeleteCompany(ctx context.Context, companyID string) (res Result) {
	defer guard(&res)

	s.mu.Lock()
	for _, p := range s.projects {
		if p.CompanyID == companyID {
			s.mu.Unlock()
			return fail("company still has projects")
		}
	}
	s.mu.Unlock()

	if err := s.backend.DeleteCompany(ctx, companyID); err != nil {
		return fail("delete company: %v", err)
	}

	s.mu.Lock()
	delete(s.companies, companyID)
	s.mu.Unlock()
	return ok(nil)
}

// --- tasks ---

func (s *Store) AddTask(ctx context.Context, req domain.CreateTaskRequest) (res Result) {
	defer guard(&res)

	if strings.TrimSpace(req.Title) == "" {
		return fail("task title is required")
	}

	s.mu.Lock()
	_, known := s.projects[req.ProjectID]
	s.mu.Unlock()
	if !known {
		return fail("unknown project %q", req.ProjectID)
	}

	t, err := s.backend.CreateTask(ctx, req)
	if err != nil {
		return fail("create task: %v", err)
	}

	s.mu.Lock()
	if p, okp := s.projects[t.ProjectID]; okp {
		p.Tasks = append(p.Tasks, t)
	}
	s.mu.Unlock()
	return ok(t)
}

func (s *Store) UpdateTask(ctx context.Context, actor domain.Actor, taskID string, req domain.UpdateTaskRequest) (res Result) {
	defer guard(&res)

	cur, found := s.TaskByID(taskID)
	if !found {
		return fail("task %q not found", taskID)
	}
	if !canTouchTask(actor, cur) {
		return fail("permission denied: task is not assigned to you")
	}

	updated, err := s.backend.UpdateTask(ctx, taskID, req)
	if err != nil {
		return fail("update task: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findTask(taskID); p != nil {
		p.Tasks[i] = updated
	}
	s.mu.Unlock()
	return ok(updated)
}

func (s *Store) DeleteTask(ctx context.Context, actor domain.Actor, taskID string) (res Result) {
	defer guard(&res)

	cur, found := s.TaskByID(taskID)
	if !found {
		return fail("task %q not found", taskID)
	}
	if !canTouchTask(actor, cur) {
		return fail("permission denied: task is not assigned to you")
	}

	if err := s.backend.DeleteTask(ctx, taskID); err != nil {
		return fail("delete task: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findTask(taskID); p != nil {
		p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
	}
	s.mu.Unlock()
	return ok(nil)
}

// --- task groups ---

func (s *Store) AddTaskGroup(ctx context.Context, req domain.CreateTaskGroupRequest) (res Result) {
	defer guard(&res)

	if strings.TrimSpace(req.Name) == "" {
		return fail("group name is required")
	}

	s.mu.Lock()
	_, known := s.projects[req.ProjectID]
	s.mu.Unlock()
	if !known {
		return fail("unknown project %q", req.ProjectID)
	}

	g, err := s.backend.CreateTaskGroup(ctx, req)
	if err != nil {
		return fail("create group: %v", err)
	}

	s.mu.Lock()
	if p, okp := s.projects[g.ProjectID]; okp {
		p.TaskGroups = append(p.TaskGroups, g)
	}
	s.mu.Unlock()
	return ok(g)
}

func (s *Store) UpdateTaskGroup(ctx context.Context, groupID string, req domain.UpdateTaskGroupRequest) (res Result) {
	defer guard(&res)

	g, err := s.backend.UpdateTaskGroup(ctx, groupID, req)
	if err != nil {
		return fail("update group: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findGroup(groupID); p != nil {
		p.TaskGroups[i] = g
	}
	s.mu.Unlock()
	return ok(g)
}

// DeleteTaskGroup detaches member tasks locally the same way the backend
// does, so the graph and the DB stay in step.
func (s *Store) DeleteTaskGroup(ctx context.Context, groupID string) (res Result) {
	defer guard(&res)

	if err := s.backend.DeleteTaskGroup(ctx, groupID); err != nil {
		return fail("delete group: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findGroup(groupID); p != nil {
		p.TaskGroups = append(p.TaskGroups[:i], p.TaskGroups[i+1:]...)
		for j := range p.Tasks {
			if p.Tasks[j].GroupID != nil && *p.Tasks[j].GroupID == groupID {
				p.Tasks[j].GroupID = nil
			}
		}
	}
	s.mu.Unlock()
	return ok(nil)
}

// --- billing items ---

func (s *Store) AddBillingItem(ctx context.Context, req domain.CreateBillingItemRequest) (res Result) {
	defer guard(&res)

	if strings.TrimSpace(req.Name) == "" {
		return fail("billing item name is required")
	}
	if req.Quantity < 1 {
		return fail("quantity must be at least 1")
	}
	if req.UnitPrice < 0 {
		return fail("unit price cannot be negative")
	}

	s.mu.Lock()
	_, known := s.projects[req.ProjectID]
	s.mu.Unlock()
	if !known {
		return fail("unknown project %q", req.ProjectID)
	}

	b, err := s.backend.CreateBillingItem(ctx, req)
	if err != nil {
		return fail("create billing item: %v", err)
	}

	s.mu.Lock()
	if p, okp := s.projects[b.ProjectID]; okp {
		p.BillingItems = append(p.BillingItems, b)
	}
	s.mu.Unlock()
	return ok(b)
}

// UpdateBillingItem recomputes totalPrice from the merged quantity and unit
// price on every edit, so the stored figure can never drift from q x p.
func (s *Store) UpdateBillingItem(ctx context.Context, itemID string, req domain.UpdateBillingItemRequest) (res Result) {
	defer guard(&res)

	if req.Quantity != nil && *req.Quantity < 1 {
		return fail("quantity must be at least 1")
	}
	if req.UnitPrice != nil && *req.UnitPrice < 0 {
		return fail("unit price cannot be negative")
	}

	s.mu.Lock()
	p, i := s.findBillingItem(itemID)
	if p == nil {
		s.mu.Unlock()
		return fail("billing item %q not found", itemID)
	}
	qty := p.BillingItems[i].Quantity
	price := p.BillingItems[i].UnitPrice
	s.mu.Unlock()

	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}

	b, err := s.backend.UpdateBillingItem(ctx, itemID, req, float64(qty)*price)
	if err != nil {
		return fail("update billing item: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findBillingItem(itemID); p != nil {
		p.BillingItems[i] = b
	}
	s.mu.Unlock()
	return ok(b)
}

func (s *Store) DeleteBillingItem(ctx context.Context, itemID string) (res Result) {
	defer guard(&res)

	if err := s.backend.DeleteBillingItem(ctx, itemID); err != nil {
		return fail("delete billing item: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findBillingItem(itemID); p != nil {
		p.BillingItems = append(p.BillingItems[:i], p.BillingItems[i+1:]...)
	}
	s.mu.Unlock()
	return ok(nil)
}

// --- issues ---

// AddIssue opens the issue, except change requests which enter the approval
// queue as pending-approval.
func (s *Store) AddIssue(ctx context.Context, actor domain.Actor, req domain.CreateIssueRequest) (res Result) {
	defer guard(&res)

	if strings.TrimSpace(req.Title) == "" {
		return fail("issue title is required")
	}

	s.mu.Lock()
	_, known := s.projects[req.ProjectID]
	s.mu.Unlock()
	if !known {
		return fail("unknown project %q", req.ProjectID)
	}

	status := domain.IssueOpen
	if domain.IssueType(req.Type) == domain.IssueChangeRequest {
		status = domain.IssuePendingApproval
	}

	is, err := s.backend.CreateIssue(ctx, req, actor.Username, status)
	if err != nil {
		return fail("create issue: %v", err)
	}

	s.mu.Lock()
	if p, okp := s.projects[is.ProjectID]; okp {
		p.Issues = append(p.Issues, is)
	}
	s.mu.Unlock()
	return ok(is)
}

func (s *Store) UpdateIssue(ctx context.Context, issueID string, req domain.UpdateIssueRequest) (res Result) {
	defer guard(&res)

	is, err := s.backend.UpdateIssue(ctx, issueID, req)
	if err != nil {
		return fail("update issue: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findIssue(issueID); p != nil {
		p.Issues[i] = is
	}
	s.mu.Unlock()
	return ok(is)
}

// ApproveIssue resolves a pending change request; admin/manager only.
func (s *Store) ApproveIssue(ctx context.Context, actor domain.Actor, issueID string) (res Result) {
	return s.resolveApproval(ctx, actor, issueID, true, "")
}

// RejectIssue rejects a pending change request with a reason; admin/manager only.
func (s *Store) RejectIssue(ctx context.Context, actor domain.Actor, issueID, reason string) (res Result) {
	return s.resolveApproval(ctx, actor, issueID, false, reason)
}

func (s *Store) resolveApproval(ctx context.Context, actor domain.Actor, issueID string, approved bool, reason string) (res Result) {
	defer guard(&res)

	if !actor.Role.CanManage() {
		return fail("permission denied: approvals require admin or manager role")
	}

	s.mu.Lock()
	p, i := s.findIssue(issueID)
	if p == nil {
		s.mu.Unlock()
		return fail("issue %q not found", issueID)
	}
	if p.Issues[i].Status != domain.IssuePendingApproval {
		s.mu.Unlock()
		return fail("issue is not awaiting approval")
	}
	s.mu.Unlock()

	is, err := s.backend.ResolveApproval(ctx, issueID, approved, reason, time.Now().UTC())
	if err != nil {
		return fail("resolve approval: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findIssue(issueID); p != nil {
		p.Issues[i] = is
	}
	s.mu.Unlock()
	return ok(is)
}

func (s *Store) DeleteIssue(ctx context.Context, issueID string) (res Result) {
	defer guard(&res)

	if err := s.backend.DeleteIssue(ctx, issueID); err != nil {
		return fail("delete issue: %v", err)
	}

	s.mu.Lock()
	if p, i := s.findIssue(issueID); p != nil {
		p.Issues = append(p.Issues[:i], p.Issues[i+1:]...)
	}
	s.mu.Unlock()
	return ok(nil)
}
