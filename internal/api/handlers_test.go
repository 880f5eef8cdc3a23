package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"studioops/atelier-pms/internal/board"
	"studioops/atelier-pms/internal/domain"
	"studioops/atelier-pms/internal/store"
	"studioops/atelier-pms/internal/store/storetest"
)

func strPtr(s string) *string { return &s }

// newTestRouter wires the handlers against a fake backend and a middleware
// that injects the given actor, standing in for the Keycloak layer.
func newTestRouter(t *testing.T, actor domain.Actor) (*gin.Engine, *storetest.Fake) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := storetest.New().Seed(domain.Project{
		ID:            "p1",
		Name:          "lobby redesign",
		CompanyID:     "c1",
		Status:        domain.ProjectOngoing,
		AdvanceAmount: 200,
		BillingItems: []domain.BillingItem{
			{ID: "b1", ProjectID: "p1", Name: "renders", Quantity: 2, UnitPrice: 500, TotalPrice: 1000, Status: domain.BillingCompleted},
			{ID: "b2", ProjectID: "p1", Name: "sketches", Quantity: 1, UnitPrice: 300, TotalPrice: 300, Status: domain.BillingPending},
		},
		Tasks: []domain.Task{
			{ID: "t1", ProjectID: "p1", Title: "model hall", Status: domain.StatusTodo, AssignedTo: strPtr("d1")},
		},
	})

	appStore = store.New(fake)
	if err := appStore.Load(context.Background()); err != nil {
		t.Fatalf("load store: %v", err)
	}
	appBoard = board.New(appStore)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("kc.actor", actor) })
	r.GET("/projects/:id", handleGetProject)
	r.GET("/projects/:id/totals", handleProjectTotals)
	r.GET("/projects/:id/board", handleProjectBoard)
	r.POST("/board/drag", handleDragEnd)
	r.PUT("/tasks/:id", handleTaskUpdate)
	r.POST("/billing/paste", handleBillingPaste)
	r.GET("/billing/pending", handleBillingPending)
	return r, fake
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProjectTotalsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, domain.Actor{ID: "m1", Username: "maria", Role: domain.RoleManager})

	w := doJSON(t, r, http.MethodGet, "/projects/p1/totals", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got map[string]float64
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["billingTotal"] != 1100 {
		t.Errorf("billingTotal = %v, want 1100", got["billingTotal"])
	}
	if got["spentTotal"] != 800 {
		t.Errorf("spentTotal = %v, want 800", got["spentTotal"])
	}
	if got["remainingTotal"] != 300 {
		t.Errorf("remainingTotal = %v, want 300", got["remainingTotal"])
	}

	if w := doJSON(t, r, http.MethodGet, "/projects/nope/totals", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown project status = %d, want 404", w.Code)
	}
}

func TestDragEndpointMovesTask(t *testing.T) {
	r, _ := newTestRouter(t, domain.Actor{ID: "m1", Username: "maria", Role: domain.RoleManager})

	w := doJSON(t, r, http.MethodPost, "/board/drag",
		`{"source":"todo","dest":"in-progress","itemId":"t1","kind":"task"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	task, okt := appStore.TaskByID("t1")
	if !okt {
		t.Fatal("task t1 missing after drag")
	}
	if task.Status != domain.StatusInProgress || task.Progress != 50 {
		t.Errorf("task = %s/%d, want in-progress/50", task.Status, task.Progress)
	}
}

func TestDesignerTaskUpdateForbidden(t *testing.T) {
	r, fake := newTestRouter(t, domain.Actor{ID: "d2", Username: "nikos", Role: domain.RoleDesigner})

	w := doJSON(t, r, http.MethodPut, "/tasks/t1", `{"title":"steal it"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
	if n := fake.CallCount("UpdateTask"); n != 0 {
		t.Errorf("backend UpdateTask calls = %d, want 0", n)
	}
}

func TestDesignerBoardViewScoped(t *testing.T) {
	r, _ := newTestRouter(t, domain.Actor{ID: "other", Username: "guest", Role: domain.RoleDesigner})

	w := doJSON(t, r, http.MethodGet, "/projects/p1/board", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got struct {
		Columns []board.ColumnView `json:"columns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, col := range got.Columns {
		if len(col.Tasks) != 0 {
			t.Errorf("column %s shows %d tasks to an unassigned designer", col.Status, len(col.Tasks))
		}
	}
}

func TestPasteAndPendingEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, domain.Actor{ID: "m1", Username: "maria", Role: domain.RoleManager})

	w := doJSON(t, r, http.MethodPost, "/billing/paste",
		`{"projectId":"p1","text":"chairs\twalnut\t4\t120.5\nlamp\n"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("paste status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/billing/pending?projectId=p1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("pending status = %d", w.Code)
	}
	var got struct {
		Items []store.PendingBillingRow `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("pending rows = %d, want 2", len(got.Items))
	}
	if got.Items[0].Quantity != 4 || got.Items[0].UnitPrice != 120.5 {
		t.Errorf("row 0 = %+v, want qty 4 price 120.5", got.Items[0])
	}

	if w := doJSON(t, r, http.MethodGet, "/billing/pending", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing projectId status = %d, want 400", w.Code)
	}
}
