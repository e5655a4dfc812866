package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrEditorAlreadyExists  = errors.New("editor with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidRole          = errors.New("invalid role")
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.Editor, error)
	Login(ctx context.Context, email, password string) (token string, editor *domain.Editor, err error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	editorRepo    repository.EditorRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(editorRepo repository.EditorRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		editorRepo:    editorRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates a new editor account.
func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.Editor, error) {
	// 1. Basic input validation
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" || role == "" {
		return nil, errors.New("name, email, password, and role cannot be empty")
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	// 2. Check if the email is already taken
	_, err := s.editorRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEditorAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err // Propagate unexpected repository errors
	}

	// 3. Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	// 4. Build the editor; ID and timestamps are set by the repository
	editor := &domain.Editor{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	// 5. Save
	editorID, err := s.editorRepo.Create(ctx, editor)
	if err != nil {
		// The unique index catches a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEditorAlreadyExists
		}
		return nil, err
	}
	editor.ID = editorID
	editor.PasswordHash = "" // Never hand the hash back
	return editor, nil
}

// Login authenticates an editor and issues a JWT.
func (s *authService) Login(ctx context.Context, email, password string) (token string, editor *domain.Editor, err error) {
	// 1. Basic input validation
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	// 2. Fetch the editor by email
	editor, err = s.editorRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed // Unknown email looks like a wrong password
		}
		return "", nil, err
	}

	// 3. Compare the password with the stored hash
	if err = bcrypt.CompareHashAndPassword([]byte(editor.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	// 4. Issue the token
	token, err = s.generateJWT(editor)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	editor.PasswordHash = ""
	return token, editor, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload. AuthMiddleware parses
// the same shape.
type jwtClaims struct {
	EditorID string      `json:"uid"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(editor *domain.Editor) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		EditorID: editor.ID.Hex(),
		Role:     editor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   editor.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "fitness-content",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
