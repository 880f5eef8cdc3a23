package board

import (
	"testing"

	"studioops/atelier-pms/internal/domain"
)

func colByStatus(t *testing.T, cols []ColumnView, s domain.TaskStatus) ColumnView {
	t.Helper()
	for _, c := range cols {
		if c.Status == s {
			return c
		}
	}
	t.Fatalf("no column %s", s)
	return ColumnView{}
}

func TestTopLevelViewShowsUngroupedAndGroupCards(t *testing.T) {
	b, _, _ := seedBoard(t)

	cols := b.View(admin, "p1", Scope{})
	if len(cols) != 4 {
		t.Fatalf("got %d columns, want 4", len(cols))
	}

	todo := colByStatus(t, cols, domain.StatusTodo)
	if len(todo.Tasks) != 1 || todo.Tasks[0].ID != "t4" {
		t.Errorf("todo column tasks = %v, want only ungrouped t4", todo.Tasks)
	}
	if len(todo.Groups) != 1 || todo.Groups[0].ID != "g1" {
		t.Errorf("todo column groups = %v, want g1", todo.Groups)
	}

	review := colByStatus(t, cols, domain.StatusReview)
	if len(review.Groups) != 1 || review.Groups[0].ID != "g2" {
		t.Errorf("review column groups = %v, want g2", review.Groups)
	}
}

func TestDrillDownScopesToMemberTasks(t *testing.T) {
	b, _, _ := seedBoard(t)

	scope := Scope{}.Enter("g1")
	cols := b.View(admin, "p1", scope)

	total := 0
	for _, c := range cols {
		total += len(c.Tasks)
		if len(c.Groups) != 0 {
			t.Errorf("drill-down column %s still shows group cards", c.Status)
		}
	}
	if total != 3 {
		t.Errorf("drill-down shows %d tasks, want 3 members of g1", total)
	}

	if _, in := scope.Leave().InGroup(); in {
		t.Error("Leave did not return to the top-level scope")
	}
}

func TestDesignerVisibility(t *testing.T) {
	b, _, _ := seedBoard(t)
	designer := domain.Actor{ID: "d1", Username: "kim", Role: domain.RoleDesigner}

	cols := b.View(designer, "p1", Scope{})

	for _, c := range cols {
		for _, task := range c.Tasks {
			if task.AssignedTo == nil || *task.AssignedTo != "d1" {
				t.Errorf("designer sees foreign task %s", task.ID)
			}
		}
	}

	// g1 holds d1's tasks so its card stays visible; g2 has none
	var groupIDs []string
	for _, c := range cols {
		for _, g := range c.Groups {
			groupIDs = append(groupIDs, g.ID)
		}
	}
	if len(groupIDs) != 1 || groupIDs[0] != "g1" {
		t.Errorf("designer group cards = %v, want [g1]", groupIDs)
	}
}

func TestViewUnknownProject(t *testing.T) {
	b, _, _ := seedBoard(t)
	if cols := b.View(admin, "nope", Scope{}); cols != nil {
		t.Errorf("unknown project view = %v, want nil", cols)
	}
}

func TestVisibleGroupsForManager(t *testing.T) {
	_, st, _ := seedBoard(t)
	manager := domain.Actor{ID: "m1", Username: "mo", Role: domain.RoleManager}

	p := st.GetProjectByID("p1")
	groups := VisibleGroups(manager, p.TaskGroups, p.Tasks)
	if len(groups) != 2 {
		t.Errorf("manager sees %d groups, want 2", len(groups))
	}
}
