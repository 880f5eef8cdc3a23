package board

import (
	"studioops/atelier-pms/internal/domain"
	"studioops/atelier-pms/internal/utils"
)

// Scope is the drill-down view state: zero value is the top-level board
// (ungrouped tasks plus group cards), entering a group re-scopes the columns
// to its member tasks and hides the group cards. Pure view state, never
// persisted.
type Scope struct {
	groupID *string
}

func (s Scope) Enter(groupID string) Scope {
	return Scope{groupID: &groupID}
}

func (s Scope) Leave() Scope {
	return Scope{}
}

// InGroup returns the drilled-into group id, if any.
func (s Scope) InGroup() (string, bool) {
	if s.groupID == nil {
		return "", false
	}
	return *s.groupID, true
}

// visibleTask mirrors the write restriction on the read side: non-privileged
// roles only see tasks assigned to them.
func visibleTask(actor domain.Actor, t domain.Task) bool {
	if actor.Role.CanManage() {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == actor.ID
}

// VisibleTasks filters a project's tasks down to what the actor may see.
func VisibleTasks(actor domain.Actor, tasks []domain.Task) []domain.Task {
	return utils.Filter(tasks, func(t domain.Task) bool {
		return visibleTask(actor, t)
	})
}

// VisibleGroups keeps groups that contain at least one visible task;
// privileged roles see every group.
func VisibleGroups(actor domain.Actor, groups []domain.TaskGroup, tasks []domain.Task) []domain.TaskGroup {
	if actor.Role.CanManage() {
		return append([]domain.TaskGroup(nil), groups...)
	}

	withVisible := make(map[string]bool)
	for _, t := range tasks {
		if t.GroupID != nil && visibleTask(actor, t) {
			withVisible[*t.GroupID] = true
		}
	}

	out := make([]domain.TaskGroup, 0, len(groups))
	for _, g := range groups {
		if withVisible[g.ID] {
			out = append(out, g)
		}
	}
	return out
}

// ColumnView is one board column: the tasks and group cards it holds under
// the current actor and scope.
type ColumnView struct {
	Status domain.TaskStatus  `json:"status"`
	Tasks  []domain.Task      `json:"tasks"`
	Groups []domain.TaskGroup `json:"groups"`
}

// View materializes the four columns for a project under the actor's
// visibility and the drill-down scope.
func (b *Board) View(actor domain.Actor, projectID string, scope Scope) []ColumnView {
	p := b.store.GetProjectByID(projectID)
	if p == nil {
		return nil
	}

	tasks := VisibleTasks(actor, p.Tasks)

	cols := make([]ColumnView, len(Columns))
	for i, status := range Columns {
		cols[i] = ColumnView{
			Status: status,
			Tasks:  []domain.Task{},
			Groups: []domain.TaskGroup{},
		}
	}
	byStatus := func(s domain.TaskStatus) *ColumnView {
		for i := range cols {
			if cols[i].Status == s {
				return &cols[i]
			}
		}
		return &cols[0]
	}

	if groupID, drilled := scope.InGroup(); drilled {
		for _, t := range tasks {
			if t.GroupID != nil && *t.GroupID == groupID {
				c := byStatus(t.Status)
				c.Tasks = append(c.Tasks, t)
			}
		}
		return cols
	}

	for _, t := range tasks {
		if t.GroupID == nil {
			c := byStatus(t.Status)
			c.Tasks = append(c.Tasks, t)
		}
	}
	for _, g := range VisibleGroups(actor, p.TaskGroups, p.Tasks) {
		c := byStatus(g.Status)
		c.Groups = append(c.Groups, g)
	}
	return cols
}
