package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/auth"
	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.GET("/logout", h.logout)
	rg.GET("/me", h.me)
	rg.GET("/results", h.results)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}
	if errors.Is(err, ErrDuplicateEmail) {
		respond.Error(c, http.StatusConflict, "email_taken", "email already registered", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	user, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}
	token, err := auth.SignJWT(auth.Claims{Sub: user.ID, Email: user.Email, Name: user.Username})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"skills":   user.Skills,
		},
	})
}

// logout exists for client symmetry. Tokens are stateless, the client drops its copy.
func (h *Handler) logout(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"status": "logged_out"})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" || strings.HasPrefix(userID, "guest:") {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	user, err := h.Svc.Get(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"skills":   user.Skills,
	})
}

func (h *Handler) results(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}
	records, err := h.Svc.Results(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load results", nil)
		return
	}
	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, gin.H{
			"question":       rec.Question,
			"answer":         rec.Answer,
			"questionNumber": rec.QuestionNumber,
			"result":         rawJSON(rec.Result),
			"createdAt":      rec.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, gin.H{"results": out})
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("{}")
	}
	return json.RawMessage(b)
}
