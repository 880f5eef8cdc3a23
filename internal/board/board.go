// Package board implements the kanban state machine over tasks and task
// groups: the four columns are the statuses, dragging between them is the
// only transition trigger, and every transition is legal in both directions.
//
// Task moves are commit-after-success: the graph only changes once the
// backend confirmed, so a failed call reverts the drag visually with no
// local residue.
package board

import (
	"context"
	"log"

	"studioops/atelier-pms/internal/domain"
	"studioops/atelier-pms/internal/store"
)

type ItemKind string

const (
	KindTask  ItemKind = "task"
	KindGroup ItemKind = "group"
)

// Columns in board order.
var Columns = []domain.TaskStatus{
	domain.StatusTodo,
	domain.StatusInProgress,
	domain.StatusReview,
	domain.StatusCompleted,
}

// ProgressForStatus is the fixed column-to-progress mapping applied on every
// cross-column task move. It overwrites any manually edited progress.
func ProgressForStatus(s domain.TaskStatus) int {
	switch s {
	case domain.StatusInProgress:
		return 50
	case domain.StatusReview:
		return 80
	case domain.StatusCompleted:
		return 100
	default:
		return 0
	}
}

type Board struct {
	store *store.Store
}

func New(st *store.Store) *Board {
	return &Board{store: st}
}

// DragEnd describes a completed drag-and-drop gesture.
type DragEnd struct {
	Source domain.TaskStatus `json:"source"`
	Dest   domain.TaskStatus `json:"dest"`
	ItemID string            `json:"itemId"`
	Kind   ItemKind          `json:"kind"`
}

// CanMoveTask is the local write restriction: a 3d-designer may only move
// tasks assigned to them. Checked before any backend call.
func CanMoveTask(actor domain.Actor, t domain.Task) bool {
	if actor.Role != domain.RoleDesigner {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == actor.ID
}

// HandleDragEnd performs the state-machine transition for a drag gesture.
// It always resolves to a Result, never panics or errors out, so the
// drag-and-drop layer can always settle the gesture.
func (b *Board) HandleDragEnd(ctx context.Context, actor domain.Actor, d DragEnd) store.Result {
	if !domain.ValidTaskStatus(d.Dest) {
		return store.Result{Error: "invalid destination column"}
	}
	if d.Source == d.Dest {
		// same-column reorder: pure ordering, no status change
		return store.Result{Success: true}
	}

	switch d.Kind {
	case KindTask:
		return b.moveTask(ctx, actor, d.ItemID, d.Dest)
	case KindGroup:
		return b.moveGroup(ctx, d.ItemID, d.Dest)
	default:
		return store.Result{Error: "unknown item kind"}
	}
}

func (b *Board) moveTask(ctx context.Context, actor domain.Actor, taskID string, dest domain.TaskStatus) store.Result {
	t, found := b.store.TaskByID(taskID)
	if !found {
		return store.Result{Error: "task not found"}
	}
	if !CanMoveTask(actor, t) {
		return store.Result{Error: "permission denied: task is not assigned to you"}
	}

	updated, err := b.store.CommitTaskStatus(ctx, taskID, dest, ProgressForStatus(dest))
	if err != nil {
		return store.Result{Error: err.Error()}
	}

	if updated.GroupID != nil {
		if _, err := b.UpdateGroupStatus(ctx, *updated.GroupID); err != nil {
			// the task move itself persisted; the roll-up will catch up on
			// the next change
			log.Printf("group status recompute failed for %s: %v", *updated.GroupID, err)
		}
	}

	return store.Result{Success: true, Data: updated}
}

// moveGroup sets the group status directly: no progress field, no roll-up.
func (b *Board) moveGroup(ctx context.Context, groupID string, dest domain.TaskStatus) store.Result {
	if _, found := b.store.GroupByID(groupID); !found {
		return store.Result{Error: "group not found"}
	}

	updated, err := b.store.CommitGroupStatus(ctx, groupID, dest)
	if err != nil {
		return store.Result{Error: err.Error()}
	}
	return store.Result{Success: true, Data: updated}
}

// DeriveGroupStatus computes a group's status from its member tasks. It never
// yields review: that column is only reachable by dragging the group card.
func DeriveGroupStatus(tasks []domain.Task) (domain.TaskStatus, bool) {
	if len(tasks) == 0 {
		return "", false
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			completed++
		}
	}
	switch {
	case completed == len(tasks):
		return domain.StatusCompleted, true
	case completed > 0:
		return domain.StatusInProgress, true
	default:
		return domain.StatusTodo, true
	}
}

// UpdateGroupStatus recomputes the group status from its member tasks and
// persists it only when it differs from the stored one: calling it twice
// with no intervening task change issues at most one write. An empty group
// keeps whatever status it has.
func (b *Board) UpdateGroupStatus(ctx context.Context, groupID string) (bool, error) {
	derived, okd := DeriveGroupStatus(b.store.TasksInGroup(groupID))
	if !okd {
		return false, nil
	}

	g, found := b.store.GroupByID(groupID)
	if !found {
		return false, store.ErrGroupNotFound
	}
	if g.Status == derived {
		return false, nil
	}

	if _, err := b.store.CommitGroupStatus(ctx, groupID, derived); err != nil {
		return false, err
	}
	return true, nil
}

// GroupProgress is the task roll-up shown on a group card: the mean of the
// member tasks' progress values, 0 for an empty group.
func GroupProgress(tasks []domain.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	sum := 0
	for _, t := range tasks {
		sum += t.Progress
	}
	return sum / len(tasks)
}
