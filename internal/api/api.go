// Package api is the HTTP surface over the application state store and the
// board state machine: gin routes, role enforcement, graceful shutdown.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"studioops/atelier-pms/internal/authmw"
	"studioops/atelier-pms/internal/board"
	"studioops/atelier-pms/internal/dal"
	"studioops/atelier-pms/internal/domain"
	"studioops/atelier-pms/internal/kcadmin"
	"studioops/atelier-pms/internal/store"
)

var (
	config    Config
	engine    *gin.Engine
	repo      *dal.Repo
	appStore  *store.Store
	appBoard  *board.Board
	kcService *kcadmin.Service
)

func setCors() {
	corsconfig := cors.DefaultConfig()
	corsconfig.AllowOrigins = config.AllowedOrigins
	corsconfig.AllowMethods = config.AllowedMethods
	corsconfig.AllowHeaders = config.AllowedHeaders
	engine.Use(cors.New(corsconfig))
}

func mustInitKcAuth() *authmw.KeycloakAuth {
	issuer := fmt.Sprintf("http://%s/realms/%s", config.AuthAddress, config.Realm)
	jwksURL := fmt.Sprintf("http://%s/realms/%s/protocol/openid-connect/certs", config.AuthAddress, config.Realm)

	a, err := authmw.NewKeycloakAuth(jwksURL, issuer, config.Audience, config.ClientID)
	if err != nil {
		panic(err)
	}
	return a
}

func setRoutes() {
	root := engine.Group("/")
	{
		root.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "alive"})
		})
	}

	kcAuth := mustInitKcAuth()

	allRoles := []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleDesigner, domain.RoleClient}
	staff := []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleDesigner}

	// read side for every authenticated role
	auth := root.Group("/auth")
	auth.Use(kcAuth.RequireRoles(allRoles...))
	{
		auth.GET("/projects", handleListProjects)
		auth.GET("/projects/:id", handleGetProject)
		auth.GET("/projects/:id/totals", handleProjectTotals)
		auth.GET("/projects/:id/invoice", handleProjectInvoice)
		auth.GET("/projects/:id/board", handleProjectBoard)
		auth.GET("/companies", handleListCompanies)
		auth.GET("/companies/:id/revenue", handleCompanyRevenue)
		auth.GET("/users", handleListUsers)

		auth.POST("/issues", handleIssueCreate)
	}

	// board moves and task edits: designers included, ownership enforced
	// inside the core before any backend call
	staffGrp := root.Group("/staff")
	staffGrp.Use(kcAuth.RequireRoles(staff...))
	{
		staffGrp.POST("/board/drag", handleDragEnd)
		staffGrp.PUT("/tasks/:id", handleTaskUpdate)
		staffGrp.DELETE("/tasks/:id", handleTaskDelete)
	}

	// structural mutations: managers and admins
	manage := root.Group("/manage")
	manage.Use(kcAuth.RequireRoles(domain.RoleAdmin, domain.RoleManager))
	{
		manage.POST("/projects", handleProjectCreate)
		manage.PUT("/projects/:id", handleProjectUpdate)
		manage.DELETE("/projects/:id", handleProjectDelete)

		manage.POST("/companies", handleCompanyCreate)
		manage.PUT("/companies/:id", handleCompanyUpdate)
		manage.DELETE("/companies/:id", handleCompanyDelete)

		manage.POST("/tasks", handleTaskCreate)
		manage.POST("/groups", handleGroupCreate)
		manage.PUT("/groups/:id", handleGroupUpdate)
		manage.DELETE("/groups/:id", handleGroupDelete)

		manage.POST("/billing", handleBillingCreate)
		manage.PUT("/billing/:id", handleBillingUpdate)
		manage.DELETE("/billing/:id", handleBillingDelete)
		manage.POST("/billing/bulk-status", handleBillingBulkStatus)
		manage.POST("/billing/bulk-delete", handleBillingBulkDelete)
		manage.POST("/billing/paste", handleBillingPaste)
		manage.GET("/billing/pending", handleBillingPending)
		manage.POST("/billing/pending/save", handleBillingSavePending)
		manage.DELETE("/billing/pending", handleBillingDiscardPending)

		manage.PUT("/issues/:id", handleIssueUpdate)
		manage.DELETE("/issues/:id", handleIssueDelete)
		manage.POST("/issues/:id/approve", handleIssueApprove)
		manage.POST("/issues/:id/reject", handleIssueReject)
	}

	admin := root.Group("/admin")
	admin.Use(kcAuth.RequireRoles(domain.RoleAdmin))
	{
		admin.POST("/users", handleAdminCreateUser)
		admin.DELETE("/users/:id", handleAdminDeleteUser)
		admin.POST("/users/refresh", handleAdminRefreshUsers)
	}
}

// InitAndServe wires config, database, keycloak, the store snapshot and the
// HTTP server, then blocks until shutdown.
func InitAndServe(confPath string) {
	config = loadConfig(confPath)

	engine = gin.Default()
	setGinMode(config.ApiGinMode)

	setCors()
	setRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	repo, err = dal.Connect(ctx, config.DBUser, config.DBPassword, config.DBAddress, config.DBName, config.InitSQLPath)
	if err != nil {
		log.Fatalf("dal: %v", err)
	}

	kcService, err = kcadmin.NewService(config.AuthAddress, config.Realm, config.ClientID, config.ClientSecret)
	if err != nil {
		log.Fatalf("keycloak: %v", err)
	}

	appStore = store.New(repo)
	if err := appStore.Load(ctx); err != nil {
		log.Fatalf("store snapshot: %v", err)
	}
	appBoard = board.New(appStore)

	if users, err := kcService.ListUsers(ctx); err != nil {
		log.Printf("user list unavailable: %v", err)
	} else {
		appStore.SetUsers(users)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port),
		Handler:           engine,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-ctx.Done()

	stop()
	log.Println("shutting down gracefully, press Ctrl+C again to force")

	repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}

func setGinMode(mode string) {
	switch strings.ToLower(mode) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
