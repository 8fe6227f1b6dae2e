package handlers

import (
	"errors"
	"net/http"

	"folio/internal/gitdb"
	"folio/internal/models"
	"folio/internal/offline"
	"folio/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves the content-management API behind AuthMiddleware.
type AdminHandler struct {
	posts         *services.PostService
	pages         *services.PageService
	widgets       *services.Collection[models.Widget]
	domains       *services.Collection[models.Domain]
	notifications *services.Collection[models.Notification]
	settings      *services.SettingService
	subscribers   *services.SubscriberService
	backup        *services.BackupService
	reconciler    *offline.Reconciler
	local         *offline.DB
	backupPass    string
}

func NewAdminHandler(
	posts *services.PostService,
	pages *services.PageService,
	widgets *services.Collection[models.Widget],
	domains *services.Collection[models.Domain],
	notifications *services.Collection[models.Notification],
	settings *services.SettingService,
	subscribers *services.SubscriberService,
	backup *services.BackupService,
	reconciler *offline.Reconciler,
	local *offline.DB,
	backupPass string,
) *AdminHandler {
	return &AdminHandler{
		posts:         posts,
		pages:         pages,
		widgets:       widgets,
		domains:       domains,
		notifications: notifications,
		settings:      settings,
		subscribers:   subscribers,
		backup:        backup,
		reconciler:    reconciler,
		local:         local,
		backupPass:    backupPass,
	}
}

// RegisterCRUD wires the standard collection CRUD routes for one record
// type. prepare runs before create to fill server-assigned fields.
func RegisterCRUD[T any](group *gin.RouterGroup, path string, col *services.Collection[T], prepare func(*T)) {
	g := group.Group(path)

	g.GET("", func(c *gin.Context) {
		items, err := col.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	})

	g.GET("/:id", func(c *gin.Context) {
		item, err := col.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		if item == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.POST("", func(c *gin.Context) {
		var item T
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if prepare != nil {
			prepare(&item)
		}
		if err := col.Create(c.Request.Context(), item); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})

	g.PUT("/:id", func(c *gin.Context) {
		var item T
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := col.Update(c.Request.Context(), item); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		if err := col.Delete(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})
}

// EnsureID is the prepare hook for records whose only server-assigned field
// is the id.
func EnsureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (h *AdminHandler) ListPosts(c *gin.Context) {
	posts, err := h.posts.Refresh(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// CreatePost writes the post to the document store, or queues it locally
// when the store is unreachable so the draft is not lost.
func (h *AdminHandler) CreatePost(c *gin.Context) {
	var post models.Post
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.posts.Create(c.Request.Context(), &post); err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, gitdb.ErrConflict) {
			fail(c, err)
			return
		}
		if queueErr := h.local.QueuePost(post); queueErr != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued", "post": post})
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *AdminHandler) UpdatePost(c *gin.Context) {
	var post models.Post
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post.ID = c.Param("id")
	if err := h.posts.Update(c.Request.Context(), post); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminHandler) ListPages(c *gin.Context) {
	pages, err := h.pages.Refresh(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

func (h *AdminHandler) CreatePage(c *gin.Context) {
	var page models.Page
	if err := c.ShouldBindJSON(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.pages.Create(c.Request.Context(), &page); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, page)
}

func (h *AdminHandler) UpdatePage(c *gin.Context) {
	var page models.Page
	if err := c.ShouldBindJSON(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page.ID = c.Param("id")
	if err := h.pages.Update(c.Request.Context(), page); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) DeletePage(c *gin.Context) {
	if err := h.pages.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	// Never hand the password hash to the dashboard.
	settings.AdminPassword = ""
	settings.AdminPin = ""
	c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Credentials change through the auth endpoints only.
	settings.AdminPassword = ""
	settings.AdminPin = ""
	if err := h.settings.Update(c.Request.Context(), settings); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Refresh reloads every collection past the cache, for the dashboard's
// refresh button.
func (h *AdminHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.posts.Refresh(ctx); err != nil {
		fail(c, err)
		return
	}
	if _, err := h.pages.Refresh(ctx); err != nil {
		fail(c, err)
		return
	}
	for _, refresh := range []func() error{
		func() error { _, err := h.widgets.Refresh(ctx); return err },
		func() error { _, err := h.domains.Refresh(ctx); return err },
		func() error { _, err := h.notifications.Refresh(ctx); return err },
		func() error { _, err := h.settings.Refresh(ctx); return err },
	} {
		if err := refresh(); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// Sync drains the offline queue on demand.
func (h *AdminHandler) Sync(c *gin.Context) {
	applied, err := h.reconciler.Drain(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

func (h *AdminHandler) ListSubscribers(c *gin.Context) {
	subscribers, err := h.subscribers.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subscribers})
}

// SyncStatus reports the queue depth and when the last drain applied
// anything, for the dashboard's sync indicator.
func (h *AdminHandler) SyncStatus(c *gin.Context) {
	queue, err := h.local.Queue()
	if err != nil {
		fail(c, err)
		return
	}
	lastSync, err := h.local.LastSync()
	if err != nil {
		fail(c, err)
		return
	}
	status := gin.H{"pending": len(queue)}
	if !lastSync.IsZero() {
		status["lastSync"] = lastSync.UTC()
	}
	c.JSON(http.StatusOK, status)
}

func (h *AdminHandler) ListDeadLetter(c *gin.Context) {
	items, err := h.local.DeadLetter()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type backupRequest struct {
	Password string `json:"password"`
}

// Backup exports every collection document as an encrypted zip download.
func (h *AdminHandler) Backup(c *gin.Context) {
	var req backupRequest
	_ = c.ShouldBindJSON(&req)
	password := req.Password
	if password == "" {
		password = h.backupPass
	}

	data, name, err := h.backup.Export(c.Request.Context(), password)
	if errors.Is(err, services.ErrBackupNoChange) {
		c.JSON(http.StatusOK, gin.H{"status": "no changes since last backup"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, "application/zip", data)
}
