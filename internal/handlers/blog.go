package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"folio/internal/models"
	"folio/internal/offline"
	"folio/internal/services"
	"folio/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BlogHandler serves the visitor-facing API. Likes and comments are
// local-first: they land in the offline store immediately and the
// reconciler pushes them to the document store afterwards.
type BlogHandler struct {
	posts         *services.PostService
	pages         *services.PageService
	comments      *services.CommentService
	likes         *services.LikeService
	subscribers   *services.SubscriberService
	widgets       *services.Collection[models.Widget]
	domains       *services.Collection[models.Domain]
	notifications *services.Collection[models.Notification]
	local         *offline.DB
}

func NewBlogHandler(
	posts *services.PostService,
	pages *services.PageService,
	comments *services.CommentService,
	likes *services.LikeService,
	subscribers *services.SubscriberService,
	widgets *services.Collection[models.Widget],
	domains *services.Collection[models.Domain],
	notifications *services.Collection[models.Notification],
	local *offline.DB,
) *BlogHandler {
	return &BlogHandler{
		posts:         posts,
		pages:         pages,
		comments:      comments,
		likes:         likes,
		subscribers:   subscribers,
		widgets:       widgets,
		domains:       domains,
		notifications: notifications,
		local:         local,
	}
}

func (h *BlogHandler) ListPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		// Serve the local snapshot when the remote store is unreachable.
		cached, localErr := h.local.Posts()
		if localErr != nil {
			fail(c, err)
			return
		}
		log.Printf("serving posts from offline snapshot: %v", err)
		posts = cached
	} else if err := h.local.SavePosts(posts); err != nil {
		log.Printf("refreshing offline posts snapshot: %v", err)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	pagePosts, info := utils.Paginate(posts, page, pageSize)
	c.JSON(http.StatusOK, gin.H{"posts": pagePosts, "pagination": info})
}

func (h *BlogHandler) GetPost(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListComments merges the durable comments with local ones still waiting in
// the sync queue, so a visitor always sees their own comment immediately.
func (h *BlogHandler) ListComments(c *gin.Context) {
	postID := c.Param("id")
	remote, err := h.comments.ListByPost(c.Request.Context(), postID)
	if err != nil {
		log.Printf("loading comments for %s: %v", postID, err)
		remote = nil
	}

	local, err := h.local.CommentsByPost(postID)
	if err != nil {
		log.Printf("loading local comments for %s: %v", postID, err)
	}

	seen := make(map[string]bool, len(remote))
	merged := remote
	for _, comment := range remote {
		seen[comment.ID] = true
	}
	for _, comment := range local {
		if !seen[comment.ID] {
			merged = append(merged, comment)
		}
	}
	if merged == nil {
		merged = []models.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": merged})
}

type commentRequest struct {
	UserName  string `json:"userName" binding:"required"`
	UserEmail string `json:"userEmail" binding:"required,email"`
	Content   string `json:"content" binding:"required"`
}

func (h *BlogHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		PostID:    c.Param("id"),
		UserID:    visitorID(c),
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Content:   req.Content,
		Date:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.local.AddComment(comment); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *BlogHandler) Like(c *gin.Context) {
	already, err := h.local.Like(c.Param("id"), visitorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true, "alreadyLiked": already})
}

func (h *BlogHandler) Unlike(c *gin.Context) {
	if _, err := h.local.Unlike(c.Param("id"), visitorID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false})
}

func (h *BlogHandler) Liked(c *gin.Context) {
	postID, userID := c.Param("id"), visitorID(c)
	liked, err := h.local.IsLiked(postID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	if !liked {
		remote, err := h.likes.IsLiked(c.Request.Context(), postID, userID)
		if err != nil {
			log.Printf("checking remote like state: %v", err)
		}
		liked = remote
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *BlogHandler) Share(c *gin.Context) {
	shares, err := h.posts.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *BlogHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.subscribers.Subscribe(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "subscribed"})
}

func (h *BlogHandler) GetPage(c *gin.Context) {
	page, err := h.pages.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	if page == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}
	rendered, err := utils.RenderMarkdown(page.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "html": rendered})
}

func (h *BlogHandler) ListWidgets(c *gin.Context) {
	widgets, err := h.widgets.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	active := []models.Widget{}
	for _, widget := range widgets {
		if widget.IsActive {
			active = append(active, widget)
		}
	}
	c.JSON(http.StatusOK, gin.H{"widgets": active})
}

func (h *BlogHandler) ListDomains(c *gin.Context) {
	domains, err := h.domains.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	active := []models.Domain{}
	for _, domain := range domains {
		if domain.IsActive {
			active = append(active, domain)
		}
	}
	c.JSON(http.StatusOK, gin.H{"domains": active})
}

func (h *BlogHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.notifications.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
