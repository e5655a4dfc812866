package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/logger"
	"alcyxob/fitness-content/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,oneof=admin editor producer"`
}

// EditorResponse excludes the password hash.
type EditorResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token  string         `json:"token"`
	Editor EditorResponse `json:"editor"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Create an editor account
// @Description Admins create accounts for editors and producers.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param editor body RegisterRequest true "Account details"
// @Success 201 {object} EditorResponse "Editor created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	editor, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEditorAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidRole):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("Registration failed", "email", req.Email, "error", err)
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapEditorToResponse(editor))
}

// Login godoc
// @Summary Log in an editor
// @Description Authenticates an editor and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, editor, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else {
			h.log.Error("Login failed", "email", req.Email, "error", err)
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:  token,
		Editor: MapEditorToResponse(editor),
	})
}

// Me returns the identity carried by the token.
func (h *AuthHandler) Me(c *gin.Context) {
	editorID, err := getEditorIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get editor ID from token")
		return
	}
	role, _ := getEditorRoleFromContext(c)
	c.JSON(http.StatusOK, gin.H{"editorId": editorID, "role": role})
}

// MapEditorToResponse converts a domain Editor to an EditorResponse DTO.
func MapEditorToResponse(editor *domain.Editor) EditorResponse {
	if editor == nil {
		return EditorResponse{}
	}
	return EditorResponse{
		ID:        editor.ID.Hex(),
		Name:      editor.Name,
		Email:     editor.Email,
		Role:      editor.Role,
		CreatedAt: editor.CreatedAt,
	}
}
