package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"viewswap/internal/entity"
	"viewswap/internal/repo/persistent"
	"viewswap/internal/usecase"
	"viewswap/pkg/jwt"
	"viewswap/pkg/queue"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials is the single admin account for the panel, loaded from
// configuration. PasswordHash is a bcrypt hash.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// InboxReader surfaces the recent-notification history kept by the delivery
// consumer.
type InboxReader interface {
	Recent(ctx context.Context, chatID int64, limit int) ([]queue.Notification, error)
}

type AdminHandler struct {
	userUseCase        usecase.UserUseCase
	enforcementUseCase usecase.EnforcementUseCase
	matcher            usecase.Matcher
	logRepo            persistent.LogRepository
	inbox              InboxReader
	jwtService         *jwt.Service
	credentials        AdminCredentials
}

func NewAdminHandler(
	userUseCase usecase.UserUseCase,
	enforcementUseCase usecase.EnforcementUseCase,
	matcher usecase.Matcher,
	logRepo persistent.LogRepository,
	inbox InboxReader,
	jwtService *jwt.Service,
	credentials AdminCredentials,
) *AdminHandler {
	return &AdminHandler{
		userUseCase:        userUseCase,
		enforcementUseCase: enforcementUseCase,
		matcher:            matcher,
		logRepo:            logRepo,
		inbox:              inbox,
		jwtService:         jwtService,
		credentials:        credentials,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Username != h.credentials.Username ||
		bcrypt.CompareHashAndPassword([]byte(h.credentials.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.jwtService.GenerateToken(h.credentials.Username, "admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (h *AdminHandler) GetStrikableUsers(c *gin.Context) {
	minStrikes := 1
	if raw := c.Query("min_strikes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_strikes must be a non-negative integer"})
			return
		}
		minStrikes = parsed
	}

	users, err := h.enforcementUseCase.ListStrikable(minStrikes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	status, err := h.userUseCase.Status(c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          status.User,
		"active_videos": status.ActiveVideos,
		"videos":        status.Videos,
		"banned":        h.enforcementUseCase.IsBanned(status.User),
	})
}

// GetUserInbox returns the most recent notifications delivered to a user,
// newest first.
func (h *AdminHandler) GetUserInbox(c *gin.Context) {
	status, err := h.userUseCase.Status(c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-50"})
			return
		}
		limit = parsed
	}

	notifications, err := h.inbox.Recent(c.Request.Context(), status.User.TelegramID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inbox"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

func (h *AdminHandler) AddStrike(c *gin.Context) {
	strikes, err := h.enforcementUseCase.Strike(c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add strike"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"strikes": strikes})
}

func (h *AdminHandler) RemoveStrike(c *gin.Context) {
	strikes, err := h.enforcementUseCase.Unstrike(c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove strike"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"strikes": strikes})
}

// GetNextVideo previews what the matcher would assign to a user right now,
// without creating a task.
func (h *AdminHandler) GetNextVideo(c *gin.Context) {
	candidate, err := h.matcher.NextVideoFor(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate candidates"})
		return
	}
	if candidate == nil {
		c.JSON(http.StatusOK, gin.H{"video": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video":           candidate.Video,
		"completed_views": candidate.CompletedViews,
	})
}

func (h *AdminHandler) GetLogs(c *gin.Context) {
	limit := 50
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-500"})
			return
		}
		limit = parsed
	}
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		offset = parsed
	}

	entries, err := h.logRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries, "count": len(entries)})
}
