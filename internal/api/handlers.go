package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studioops/atelier-pms/internal/authmw"
	"studioops/atelier-pms/internal/board"
	"studioops/atelier-pms/internal/domain"
	"studioops/atelier-pms/internal/store"
)

// respond maps a mutator Result onto an HTTP status. Expected failures never
// surface as 5xx: the store already folded them into the Result shape.
func respond(c *gin.Context, res store.Result) {
	if res.Success {
		c.JSON(http.StatusOK, res)
		return
	}

	status := http.StatusBadRequest
	switch {
	case strings.Contains(res.Error, "permission denied"):
		status = http.StatusForbidden
	case strings.Contains(res.Error, "not found"):
		status = http.StatusNotFound
	}
	c.JSON(status, res)
}

func actorFrom(c *gin.Context) domain.Actor {
	actor, okc := authmw.CurrentActor(c)
	if !okc {
		// RequireRoles always sets the actor; an empty one only shows up in
		// misconfigured route groups
		log.Printf("missing actor on %s", c.FullPath())
	}
	return actor
}

// --- projects ---

func handleListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": appStore.ListProjects()})
}

func handleGetProject(c *gin.Context) {
	p := appStore.GetProjectByID(c.Param("id"))
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func handleProjectTotals(c *gin.Context) {
	id := c.Param("id")
	if appStore.GetProjectByID(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"billingTotal":   appStore.GetProjectBillingTotal(id),
		"spentTotal":     appStore.GetProjectSpentTotal(id),
		"remainingTotal": appStore.GetProjectRemainingTotal(id),
	})
}

func handleProjectInvoice(c *gin.Context) {
	id := c.Param("id")
	if appStore.GetProjectByID(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, appStore.GetProjectInvoice(id))
}

func handleProjectBoard(c *gin.Context) {
	scope := board.Scope{}
	if groupID := c.Query("group"); groupID != "" {
		scope = scope.Enter(groupID)
	}

	cols := appBoard.View(actorFrom(c), c.Param("id"), scope)
	if cols == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": cols})
}

func handleProjectCreate(c *gin.Context) {
	var req domain.CreateProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.AddProject(c.Request.Context(), req))
}

func handleProjectUpdate(c *gin.Context) {
	var req domain.UpdateProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.UpdateProject(c.Request.Context(), c.Param("id"), req))
}

func handleProjectDelete(c *gin.Context) {
	respond(c, appStore.DeleteProject(c.Request.Context(), c.Param("id")))
}

// --- companies ---

func handleListCompanies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": appStore.ListCompanies()})
}

func handleCompanyRevenue(c *gin.Context) {
	id := c.Param("id")
	if appStore.GetCompanyByID(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"revenue":          appStore.GetCompanyRevenue(id),
		"completedRevenue": appStore.GetCompanyCompletedRevenue(id),
	})
}

func handleCompanyCreate(c *gin.Context) {
	var req domain.CreateCompanyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.AddCompany(c.Request.Context(), req))
}

func handleCompanyUpdate(c *gin.Context) {
	var req domain.UpdateCompanyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.UpdateCompany(c.Request.Context(), c.Param("id"), req))
}

func handleCompanyDelete(c *gin.Context) {
	respond(c, appStore.DeleteCompany(c.Request.Context(), c.Param("id")))
}

// --- board ---

func handleDragEnd(c *gin.Context) {
	var d board.DragEnd
	if err := c.ShouldBind(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appBoard.HandleDragEnd(c.Request.Context(), actorFrom(c), d))
}

// --- tasks ---

func handleTaskCreate(c *gin.Context) {
	var req domain.CreateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.AddTask(c.Request.Context(), req))
}

func handleTaskUpdate(c *gin.Context) {
	var req domain.UpdateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.UpdateTask(c.Request.Context(), actorFrom(c), c.Param("id"), req))
}

func handleTaskDelete(c *gin.Context) {
	respond(c, appStore.DeleteTask(c.Request.Context(), actorFrom(c), c.Param("id")))
}

// --- task groups ---

func handleGroupCreate(c *gin.Context) {
	var req domain.CreateTaskGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.AddTaskGroup(c.Request.Context(), req))
}

func handleGroupUpdate(c *gin.Context) {
	var req domain.UpdateTaskGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.UpdateTaskGroup(c.Request.Context(), c.Param("id"), req))
}

func handleGroupDelete(c *gin.Context) {
	respond(c, appStore.DeleteTaskGroup(c.Request.Context(), c.Param("id")))
}

// --- billing ---

func handleBillingCreate(c *gin.Context) {
	var req domain.CreateBillingItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.AddBillingItem(c.Request.Context(), req))
}

func handleBillingUpdate(c *gin.Context) {
	var req domain.UpdateBillingItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.UpdateBillingItem(c.Request.Context(), c.Param("id"), req))
}

func handleBillingDelete(c *gin.Context) {
	respond(c, appStore.DeleteBillingItem(c.Request.Context(), c.Param("id")))
}

type bulkStatusRequest struct {
	ItemIDs []string `json:"itemIds" binding:"required,min=1"`
	Status  string   `json:"status" binding:"required,oneof=pending in-progress submitted completed"`
}

func handleBillingBulkStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.BulkUpdateBillingStatus(c.Request.Context(), req.ItemIDs, domain.BillingStatus(req.Status)))
}

type bulkDeleteRequest struct {
	ProjectID string   `json:"projectId" binding:"required"`
	ItemIDs   []string `json:"itemIds" binding:"required,min=1"`
}

func handleBillingBulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.BulkDeleteBillingItems(c.Request.Context(), req.ProjectID, req.ItemIDs))
}

type pasteRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

func handleBillingPaste(c *gin.Context) {
	var req pasteRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	n := appStore.PastePending(req.ProjectID, req.Text)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "parsed": n})
}

func handleBillingPending(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": appStore.PendingRows(projectID)})
}

type savePendingRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Index     *int   `json:"index"` // nil means save all
}

func handleBillingSavePending(c *gin.Context) {
	var req savePendingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if req.Index != nil {
		respond(c, appStore.SavePendingRow(c.Request.Context(), req.ProjectID, *req.Index))
		return
	}
	respond(c, appStore.SaveAllPending(c.Request.Context(), req.ProjectID))
}

func handleBillingDiscardPending(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId required"})
		return
	}
	appStore.DiscardPending(projectID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- issues ---

func handleIssueCreate(c *gin.Context) {
	var req domain.CreateIssueRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.AddIssue(c.Request.Context(), actorFrom(c), req))
}

func handleIssueUpdate(c *gin.Context) {
	var req domain.UpdateIssueRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.UpdateIssue(c.Request.Context(), c.Param("id"), req))
}

func handleIssueDelete(c *gin.Context) {
	respond(c, appStore.DeleteIssue(c.Request.Context(), c.Param("id")))
}

func handleIssueApprove(c *gin.Context) {
	respond(c, appStore.ApproveIssue(c.Request.Context(), actorFrom(c), c.Param("id")))
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

func handleIssueReject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	respond(c, appStore.RejectIssue(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason))
}

// --- users ---

func handleListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": appStore.ListUsers()})
}

type createUserRequest struct {
	Username  string `json:"username" binding:"required,min=2,max=128"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Firstname string `json:"firstname" binding:"max=100"`
	Lastname  string `json:"lastname" binding:"max=100"`
}

func handleAdminCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	id, err := kcService.CreateUser(c.Request.Context(), req.Username, req.Email, req.Password, req.Firstname, req.Lastname)
	if err != nil {
		log.Printf("failed to create user: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "user creation failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok", "userId": id})
}

func handleAdminDeleteUser(c *gin.Context) {
	if err := kcService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		log.Printf("failed to delete user: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "user deletion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAdminRefreshUsers re-pulls the realm users into the picker list.
func handleAdminRefreshUsers(c *gin.Context) {
	users, err := kcService.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("failed to list users: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "user listing failed"})
		return
	}
	appStore.SetUsers(users)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(users)})
}
