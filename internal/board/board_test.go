package board

import (
	"context"
	"errors"
	"testing"

	"studioops/atelier-pms/internal/domain"
	"studioops/atelier-pms/internal/store"
	"studioops/atelier-pms/internal/store/storetest"
)

func strp(s string) *string { return &s }

func seedBoard(t *testing.T) (*Board, *store.Store, *storetest.Fake) {
	t.Helper()

	fake := storetest.New().Seed(domain.Project{
		ID:   "p1",
		Name: "Showroom",
		TaskGroups: []domain.TaskGroup{
			{ID: "g1", ProjectID: "p1", Name: "Modeling", Status: domain.StatusTodo},
			{ID: "g2", ProjectID: "p1", Name: "Renders", Status: domain.StatusReview},
		},
		Tasks: []domain.Task{
			{ID: "t1", ProjectID: "p1", Title: "Block out", Status: domain.StatusCompleted, Progress: 100, GroupID: strp("g1"), AssignedTo: strp("d1")},
			{ID: "t2", ProjectID: "p1", Title: "Detailing", Status: domain.StatusCompleted, Progress: 100, GroupID: strp("g1"), AssignedTo: strp("d1")},
			{ID: "t3", ProjectID: "p1", Title: "Texturing", Status: domain.StatusTodo, Progress: 0, GroupID: strp("g1"), AssignedTo: strp("d2")},
			{ID: "t4", ProjectID: "p1", Title: "Client call", Status: domain.StatusTodo, Progress: 0},
		},
	})

	st := store.New(fake)
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return New(st), st, fake
}

var admin = domain.Actor{ID: "a1", Username: "admin", Role: domain.RoleAdmin}

func TestProgressMappingIsTotalAndExact(t *testing.T) {
	cases := []struct {
		dest domain.TaskStatus
		want int
	}{
		{domain.StatusTodo, 0},
		{domain.StatusInProgress, 50},
		{domain.StatusReview, 80},
		{domain.StatusCompleted, 100},
	}

	for _, tc := range cases {
		t.Run(string(tc.dest), func(t *testing.T) {
			b, st, _ := seedBoard(t)

			// t4 starts with a manually distinct progress via direct edit
			res := b.HandleDragEnd(context.Background(), admin, DragEnd{
				Source: domain.StatusTodo, Dest: tc.dest, ItemID: "t4", Kind: KindTask,
			})
			if tc.dest == domain.StatusTodo {
				// same column: ordering only
				if !res.Success {
					t.Fatalf("same-column drag should succeed: %+v", res)
				}
				return
			}
			if !res.Success {
				t.Fatalf("drag failed: %+v", res)
			}
			got, _ := st.TaskByID("t4")
			if got.Status != tc.dest || got.Progress != tc.want {
				t.Errorf("task = %s/%d, want %s/%d", got.Status, got.Progress, tc.dest, tc.want)
			}
		})
	}
}

func TestSameColumnDragIsNoOp(t *testing.T) {
	b, _, fake := seedBoard(t)

	res := b.HandleDragEnd(context.Background(), admin, DragEnd{
		Source: domain.StatusTodo, Dest: domain.StatusTodo, ItemID: "t4", Kind: KindTask,
	})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if n := fake.CallCount("UpdateTask"); n != 0 {
		t.Errorf("same-column drag issued %d UpdateTask calls, want 0", n)
	}
}

func TestDesignerCannotMoveForeignTask(t *testing.T) {
	b, st, fake := seedBoard(t)
	designer := domain.Actor{ID: "d2", Username: "dana", Role: domain.RoleDesigner}

	// t1 is assigned to d1
	res := b.HandleDragEnd(context.Background(), designer, DragEnd{
		Source: domain.StatusCompleted, Dest: domain.StatusReview, ItemID: "t1", Kind: KindTask,
	})
	if res.Success {
		t.Fatal("expected permission rejection")
	}
	if n := fake.CallCount("UpdateTask"); n != 0 {
		t.Errorf("rejected move reached the backend: %d UpdateTask calls", n)
	}
	got, _ := st.TaskByID("t1")
	if got.Status != domain.StatusCompleted {
		t.Errorf("task status changed to %s on a rejected move", got.Status)
	}
}

func TestDesignerMovesOwnTask(t *testing.T) {
	b, st, _ := seedBoard(t)
	designer := domain.Actor{ID: "d2", Username: "dana", Role: domain.RoleDesigner}

	res := b.HandleDragEnd(context.Background(), designer, DragEnd{
		Source: domain.StatusTodo, Dest: domain.StatusInProgress, ItemID: "t3", Kind: KindTask,
	})
	if !res.Success {
		t.Fatalf("designer should move own task: %+v", res)
	}
	got, _ := st.TaskByID("t3")
	if got.Status != domain.StatusInProgress || got.Progress != 50 {
		t.Errorf("task = %s/%d, want in-progress/50", got.Status, got.Progress)
	}
}

func TestFailedPersistLeavesStateUntouched(t *testing.T) {
	b, st, fake := seedBoard(t)
	fake.FailOn["UpdateTask"] = errors.New("backend unreachable")

	res := b.HandleDragEnd(context.Background(), admin, DragEnd{
		Source: domain.StatusTodo, Dest: domain.StatusCompleted, ItemID: "t4", Kind: KindTask,
	})
	if res.Success {
		t.Fatal("expected failure")
	}
	got, _ := st.TaskByID("t4")
	if got.Status != domain.StatusTodo || got.Progress != 0 {
		t.Errorf("commit-after-success violated: task = %s/%d", got.Status, got.Progress)
	}
}

func TestDeriveGroupStatus(t *testing.T) {
	c := func(s domain.TaskStatus) domain.Task { return domain.Task{Status: s} }

	cases := []struct {
		name  string
		tasks []domain.Task
		want  domain.TaskStatus
		okTo  bool
	}{
		{"empty preserves", nil, "", false},
		{"two done one todo", []domain.Task{c(domain.StatusCompleted), c(domain.StatusCompleted), c(domain.StatusTodo)}, domain.StatusInProgress, true},
		{"all done", []domain.Task{c(domain.StatusCompleted), c(domain.StatusCompleted), c(domain.StatusCompleted)}, domain.StatusCompleted, true},
		{"none done", []domain.Task{c(domain.StatusTodo), c(domain.StatusReview)}, domain.StatusTodo, true},
		{"review never derived", []domain.Task{c(domain.StatusReview), c(domain.StatusReview)}, domain.StatusTodo, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, okd := DeriveGroupStatus(tc.tasks)
			if okd != tc.okTo || (okd && got != tc.want) {
				t.Errorf("DeriveGroupStatus = %q/%v, want %q/%v", got, okd, tc.want, tc.okTo)
			}
		})
	}
}

func TestDragCascadesGroupStatus(t *testing.T) {
	b, st, _ := seedBoard(t)

	// g1: t1 completed, t2 completed, t3 todo -> moving t3 to completed
	// must flip the group to completed
	res := b.HandleDragEnd(context.Background(), admin, DragEnd{
		Source: domain.StatusTodo, Dest: domain.StatusCompleted, ItemID: "t3", Kind: KindTask,
	})
	if !res.Success {
		t.Fatalf("drag failed: %+v", res)
	}
	g, _ := st.GroupByID("g1")
	if g.Status != domain.StatusCompleted {
		t.Errorf("group status = %s, want completed", g.Status)
	}
}

func TestPartialGroupIsInProgress(t *testing.T) {
	b, st, _ := seedBoard(t)

	// g1 currently [completed, completed, todo]
	if changed, err := b.UpdateGroupStatus(context.Background(), "g1"); err != nil || !changed {
		t.Fatalf("UpdateGroupStatus = %v, %v; want changed", changed, err)
	}
	g, _ := st.GroupByID("g1")
	if g.Status != domain.StatusInProgress {
		t.Errorf("group status = %s, want in-progress", g.Status)
	}
}

func TestGroupRecomputeIdempotent(t *testing.T) {
	b, _, fake := seedBoard(t)

	if _, err := b.UpdateGroupStatus(context.Background(), "g1"); err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	changed, err := b.UpdateGroupStatus(context.Background(), "g1")
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if changed {
		t.Error("second recompute reported a change")
	}
	if n := fake.CallCount("UpdateTaskGroup"); n != 1 {
		t.Errorf("recompute issued %d writes, want 1", n)
	}
}

func TestEmptyGroupKeepsStatus(t *testing.T) {
	b, st, fake := seedBoard(t)

	// g2 has no member tasks and sits in review
	changed, err := b.UpdateGroupStatus(context.Background(), "g2")
	if err != nil || changed {
		t.Fatalf("empty group recompute = %v, %v; want no-op", changed, err)
	}
	g, _ := st.GroupByID("g2")
	if g.Status != domain.StatusReview {
		t.Errorf("empty group status = %s, want review preserved", g.Status)
	}
	if n := fake.CallCount("UpdateTaskGroup"); n != 0 {
		t.Errorf("empty group recompute wrote %d times", n)
	}
}

func TestGroupCardDrag(t *testing.T) {
	b, st, _ := seedBoard(t)

	res := b.HandleDragEnd(context.Background(), admin, DragEnd{
		Source: domain.StatusTodo, Dest: domain.StatusReview, ItemID: "g1", Kind: KindGroup,
	})
	if !res.Success {
		t.Fatalf("group drag failed: %+v", res)
	}
	g, _ := st.GroupByID("g1")
	if g.Status != domain.StatusReview {
		t.Errorf("group status = %s, want review", g.Status)
	}
}

func TestGroupProgressRollUp(t *testing.T) {
	tasks := []domain.Task{{Progress: 100}, {Progress: 50}, {Progress: 0}}
	if got := GroupProgress(tasks); got != 50 {
		t.Errorf("GroupProgress = %d, want 50", got)
	}
	if got := GroupProgress(nil); got != 0 {
		t.Errorf("GroupProgress(empty) = %d, want 0", got)
	}
}
