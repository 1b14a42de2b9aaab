package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"habit-server/internal/auth"
	"habit-server/internal/domain"
	"habit-server/internal/repository"
	"habit-server/internal/service"
	"habit-server/internal/storage"
)

const dateLayout = "2006-01-02"

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth    service.AuthService
	users   service.UserService
	habits  service.HabitService
	storage storage.Service
	tokens  *auth.TokenCodec
	repo    repository.UserRepository
	logger  *logrus.Logger
}

func NewHandler(authSvc service.AuthService, users service.UserService, habits service.HabitService, store storage.Service, tokens *auth.TokenCodec, repo repository.UserRepository, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		auth:    authSvc,
		users:   users,
		habits:  habits,
		storage: store,
		tokens:  tokens,
		repo:    repo,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(AuthRequired(AuthConfig{
		Tokens: h.tokens,
		Users:  h.repo,
		PublicPaths: []string{
			"/api/auth/login",
			"/api/auth/register",
			"/api/health",
		},
	}))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", h.login)
			authGroup.POST("/register", h.register)
		}

		// "me" is accepted wherever :id appears and resolves to the
		// authenticated user; gin's router cannot mix a static /me with
		// a wildcard sibling.
		users := api.Group("/users")
		{
			users.GET("/:id", h.getUser)
			users.PATCH("/:id", h.updateUser)
			users.DELETE("/:id", h.deleteUser)
			users.POST("/:id/avatar", h.uploadAvatar)
		}

		habits := api.Group("/habits")
		{
			habits.POST("", h.createHabit)
			habits.GET("", h.listHabits)
			habits.GET("/:id", h.getHabit)
			habits.DELETE("/:id", h.deleteHabit)
			habits.POST("/:id/complete", h.completeHabit)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeServiceError(c, err, "USER_NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: session.Token, Username: session.Username})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := service.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth, expected YYYY-MM-DD"})
			return
		}
		params.DateOfBirth = &dob
	}

	session, err := h.auth.Register(c.Request.Context(), params)
	if err != nil {
		h.writeServiceError(c, err, "USER_NOT_FOUND")
		return
	}

	c.JSON(http.StatusCreated, authResponse{Token: session.Token, Username: session.Username})
}

func (h *Handler) getUser(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}
	id, ok := parseTargetID(c, principal)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err, "USER_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, h.userResponse(c, user))
}

func (h *Handler) updateUser(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}
	id, ok := parseTargetID(c, principal)
	if !ok {
		return
	}
	h.applyProfilePatch(c, principal, id)
}

func (h *Handler) deleteUser(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}
	id, ok := parseTargetID(c, principal)
	if !ok {
		return
	}
	var avatarKey string
	if h.storage != nil {
		if target, err := h.users.Get(c.Request.Context(), id); err == nil {
			avatarKey, _ = storage.ObjectKey(target.AvatarURL)
		}
	}

	if err := h.users.Delete(c.Request.Context(), principal, id); err != nil {
		h.writeServiceError(c, err, "USER_NOT_FOUND")
		return
	}

	// The account is gone; its avatar object must not outlive it.
	if avatarKey != "" {
		if err := h.storage.Delete(c.Request.Context(), avatarKey); err != nil {
			h.logger.WithError(err).Warn("remove avatar of deleted user")
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type profilePatchRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

func (h *Handler) applyProfilePatch(c *gin.Context, principal *domain.User, targetID int64) {
	var req profilePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := domain.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth, expected YYYY-MM-DD"})
			return
		}
		patch.DateOfBirth = &dob
	}

	user, err := h.users.Update(c.Request.Context(), principal, targetID, patch)
	if err != nil {
		h.writeServiceError(c, err, "USER_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, h.userResponse(c, user))
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}
	targetID, ok := parseTargetID(c, principal)
	if !ok {
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "STORAGE_NOT_CONFIGURED"})
		return
	}

	// Policy is settled before any object is written: a forbidden request
	// must leave nothing behind in the bucket.
	target, err := h.users.GetFor(c.Request.Context(), principal, targetID)
	if err != nil {
		h.writeServiceError(c, err, "USER_NOT_FOUND")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("avatars/%d/%s%s", target.ID, uuid.NewString(), filepath.Ext(file.Filename))
	location, err := h.storage.Upload(c.Request.Context(), key, file.Header.Get("Content-Type"), src)
	if err != nil {
		h.logger.WithError(err).Error("avatar upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	user, err := h.users.Update(c.Request.Context(), principal, target.ID, domain.ProfilePatch{AvatarURL: &location})
	if err != nil {
		h.writeServiceError(c, err, "USER_NOT_FOUND")
		return
	}

	// Best-effort removal of the object the new avatar replaced.
	if old, ok := storage.ObjectKey(target.AvatarURL); ok {
		if err := h.storage.Delete(c.Request.Context(), old); err != nil {
			h.logger.WithError(err).Warn("remove replaced avatar object")
		}
	}
	c.JSON(http.StatusOK, h.userResponse(c, user))
}

type createHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) createHabit(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.habits.Create(c.Request.Context(), principal, req.Name, req.Description)
	if err != nil {
		h.writeServiceError(c, err, "HABIT_NOT_FOUND")
		return
	}
	c.JSON(http.StatusCreated, habitToResponse(*habit))
}

func (h *Handler) listHabits(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}

	habits, err := h.habits.ListOwn(c.Request.Context(), principal)
	if err != nil {
		h.writeServiceError(c, err, "HABIT_NOT_FOUND")
		return
	}

	resp := make([]HabitResponse, len(habits))
	for i := range habits {
		resp[i] = habitToResponse(habits[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getHabit(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	habit, err := h.habits.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.writeServiceError(c, err, "HABIT_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, habitToResponse(*habit))
}

func (h *Handler) deleteHabit(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.habits.Delete(c.Request.Context(), principal, id); err != nil {
		h.writeServiceError(c, err, "HABIT_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type completeHabitRequest struct {
	CompletedAt string `json:"completed_at"`
}

func (h *Handler) completeHabit(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		rejectUnauthorized(c)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req completeHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var completedAt time.Time
	if req.CompletedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid completed_at, expected RFC3339"})
			return
		}
		completedAt = parsed
	}

	habit, err := h.habits.Complete(c.Request.Context(), principal, id, completedAt)
	if err != nil {
		h.writeServiceError(c, err, "HABIT_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, habitToResponse(*habit))
}

// writeServiceError translates service-layer outcomes into transport
// responses. notFoundCode names the resource for 404s; everything
// unexpected is a generic 500 with no internals leaked.
func (h *Handler) writeServiceError(c *gin.Context, err error, notFoundCode string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "INVALID_CREDENTIALS"})
	case errors.Is(err, service.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "DUPLICATE_USERNAME"})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "DUPLICATE_EMAIL"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "PERMISSION_DENIED"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundCode})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// parseTargetID resolves the :id path parameter on user routes, where the
// literal "me" targets the authenticated principal.
func parseTargetID(c *gin.Context, principal *domain.User) (int64, bool) {
	if c.Param("id") == "me" {
		return principal.ID, true
	}
	return parseID(c)
}

type UserResponse struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	IsAdmin     bool    `json:"is_admin"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

// userResponse converts a user for the wire. A stored object location is
// swapped for a short-lived presigned URL, so clients never see raw s3://
// locations they cannot dereference.
func (h *Handler) userResponse(c *gin.Context, user *domain.User) UserResponse {
	resp := userToResponse(user)
	if h.storage == nil {
		return resp
	}
	key, ok := storage.ObjectKey(resp.AvatarURL)
	if !ok {
		return resp
	}
	url, err := h.storage.GetObjectURL(c.Request.Context(), key, 0)
	if err != nil {
		h.logger.WithError(err).Warn("presign avatar url")
		return resp
	}
	resp.AvatarURL = url
	return resp
}

func userToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsAdmin,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
	if user.DateOfBirth != nil {
		v := user.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &v
	}
	if user.LastLoginAt != nil {
		v := user.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &v
	}
	return resp
}

type HabitResponse struct {
	ID          int64    `json:"id"`
	PublicID    string   `json:"public_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Streak      int      `json:"streak"`
	Completions []string `json:"completions"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func habitToResponse(habit domain.Habit) HabitResponse {
	resp := HabitResponse{
		ID:          habit.ID,
		PublicID:    habit.PublicID,
		Name:        habit.Name,
		Description: habit.Description,
		Streak:      habit.CurrentStreak(time.Now().UTC()),
		Completions: make([]string, len(habit.Completions)),
		CreatedAt:   habit.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   habit.UpdatedAt.Format(time.RFC3339),
	}
	for i := range habit.Completions {
		resp.Completions[i] = habit.Completions[i].CompletedAt.Format(time.RFC3339)
	}
	return resp
}
