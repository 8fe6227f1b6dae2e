package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio/internal/config"
	"folio/internal/constants"
	"folio/internal/gitdb"
	"folio/internal/handlers"
	"folio/internal/models"
	"folio/internal/offline"
	"folio/internal/services"
	"folio/internal/tasks"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	var store gitdb.Store
	if cfg.HasRemote() {
		store = gitdb.NewClient(gitdb.Config{
			Owner:   cfg.GithubOwner,
			Repo:    cfg.GithubRepo,
			Branch:  cfg.GithubBranch,
			Path:    cfg.DataPath,
			Token:   cfg.GithubToken,
			Timeout: cfg.RequestTimeout,
		})
	} else {
		log.Println("no document-store repository configured, running against the in-memory store")
		store = gitdb.NewMemStore()
	}
	cache := gitdb.NewCache(cfg.CacheTTL)

	// Entity services over the document store.
	postService := services.NewPostService(store, cache)
	pageService := services.NewPageService(store, cache)
	commentService := services.NewCommentService(store, cache)
	likeService := services.NewLikeService(store, cache)
	subscriberService := services.NewSubscriberService(store, cache)
	settingService := services.NewSettingService(store, cache)
	sessionService := services.NewSessionService(store, cache)
	authService := services.NewAuthService(settingService, sessionService)
	backupService := services.NewBackupService(store)

	widgets := services.NewCollection(store, cache, constants.CollectionWidgets,
		func(w models.Widget) string { return w.ID })
	domains := services.NewCollection(store, cache, constants.CollectionDomains,
		func(d models.Domain) string { return d.ID })
	notifications := services.NewCollection(store, cache, constants.CollectionNotifications,
		func(n models.Notification) string { return n.ID })
	users := services.NewCollection(store, cache, constants.CollectionUsers,
		func(u models.User) string { return u.ID })

	// Local offline tier and its reconciler.
	localStore, err := offline.Open(cfg.OfflineDir)
	if err != nil {
		log.Fatal("opening offline store:", err)
	}
	localDB := offline.NewDB(localStore)
	defer localDB.Close()

	applier := services.NewSyncApplier(postService, commentService, likeService)
	reconciler := offline.NewReconciler(localDB, applier)

	scheduler := tasks.NewScheduler(cfg, reconciler, sessionService, backupService)
	scheduler.Start()
	defer scheduler.Stop()

	blogHandler := handlers.NewBlogHandler(postService, pageService, commentService,
		likeService, subscriberService, widgets, domains, notifications, localDB)
	adminHandler := handlers.NewAdminHandler(postService, pageService, widgets, domains,
		notifications, settingService, subscriberService, backupService, reconciler,
		localDB, cfg.BackupPassword)
	authHandler := handlers.NewAuthHandler(authService)

	r := gin.Default()

	visitorStore := cookie.NewStore([]byte(cfg.SessionSecret))
	visitorStore.Options(sessions.Options{
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   3600 * 24 * 365,
	})
	r.Use(sessions.Sessions("folio_visitor", visitorStore))
	r.Use(handlers.VisitorMiddleware())

	api := r.Group("/api")
	{
		api.GET("/posts", blogHandler.ListPosts)
		api.GET("/posts/:id", blogHandler.GetPost)
		api.GET("/posts/:id/comments", blogHandler.ListComments)
		api.POST("/posts/:id/comments", blogHandler.AddComment)
		api.POST("/posts/:id/like", blogHandler.Like)
		api.DELETE("/posts/:id/like", blogHandler.Unlike)
		api.GET("/posts/:id/liked", blogHandler.Liked)
		api.POST("/posts/:id/share", blogHandler.Share)
		api.POST("/subscribe", blogHandler.Subscribe)
		api.GET("/pages/:slug", blogHandler.GetPage)
		api.GET("/widgets", blogHandler.ListWidgets)
		api.GET("/domains", blogHandler.ListDomains)
		api.GET("/notifications", blogHandler.ListNotifications)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/login-pin", authHandler.LoginPin)
			auth.POST("/logout", authHandler.Logout)
		}
		authAdmin := auth.Group("")
		authAdmin.Use(handlers.AuthMiddleware(sessionService))
		{
			authAdmin.POST("/update-password", authHandler.UpdatePassword)
			authAdmin.POST("/update-pin", authHandler.UpdatePin)
			authAdmin.POST("/update-recovery-emails", authHandler.UpdateRecoveryEmails)
		}
	}

	admin := r.Group("/api/admin")
	admin.Use(handlers.AuthMiddleware(sessionService))
	{
		admin.GET("/posts", adminHandler.ListPosts)
		admin.POST("/posts", adminHandler.CreatePost)
		admin.PUT("/posts/:id", adminHandler.UpdatePost)
		admin.DELETE("/posts/:id", adminHandler.DeletePost)

		admin.GET("/pages", adminHandler.ListPages)
		admin.POST("/pages", adminHandler.CreatePage)
		admin.PUT("/pages/:id", adminHandler.UpdatePage)
		admin.DELETE("/pages/:id", adminHandler.DeletePage)

		handlers.RegisterCRUD(admin, "/widgets", widgets,
			func(w *models.Widget) { handlers.EnsureID(&w.ID) })
		handlers.RegisterCRUD(admin, "/domains", domains,
			func(d *models.Domain) { handlers.EnsureID(&d.ID) })
		handlers.RegisterCRUD(admin, "/notifications", notifications, func(n *models.Notification) {
			handlers.EnsureID(&n.ID)
			if n.Date == "" {
				n.Date = time.Now().UTC().Format(time.RFC3339)
			}
		})
		handlers.RegisterCRUD(admin, "/users", users,
			func(u *models.User) { handlers.EnsureID(&u.ID) })

		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings", adminHandler.UpdateSettings)
		admin.POST("/refresh", adminHandler.Refresh)
		admin.POST("/sync", adminHandler.Sync)
		admin.GET("/sync/status", adminHandler.SyncStatus)
		admin.POST("/backup", adminHandler.Backup)
		admin.GET("/subscribers", adminHandler.ListSubscribers)
		admin.GET("/sync/dead-letter", adminHandler.ListDeadLetter)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
