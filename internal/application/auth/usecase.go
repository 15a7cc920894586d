package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
	"github.com/jhoicas/sweetshop-api/pkg/jwt"
	"golang.org/x/text/cases"
)

const (
	minPasswordLen = 6
	// bcrypt sólo admite hasta 72 bytes.
	maxPasswordLen = 72
)

// TokenIssuer emite tokens para un subject (implementado por *jwt.Service).
type TokenIssuer interface {
	Issue(subject string) (jwt.Token, error)
}

// Config configuración de registro. AdminEmails se inyecta al construir;
// el caso de uso nunca lee el entorno.
type Config struct {
	AdminEmails []string
}

// AuthUseCase casos de uso de autenticación: registro, login y resolución del principal.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	admins    map[string]struct{}
	dummyHash string
	now       func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, cfg Config) (*AuthUseCase, error) {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if n := NormalizeEmail(e); n != "" {
			admins[n] = struct{}{}
		}
	}
	// Hash de relleno para que un email inexistente cueste lo mismo que un password incorrecto.
	dummy, err := hasher.Hash("sweetshop-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("hash de relleno: %w", err)
	}
	return &AuthUseCase{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		admins:    admins,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// NormalizeEmail recorta y pliega mayúsculas para usar el email como identidad.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// IsAdminEmail decide el rol a partir de la lista configurada (función pura de email + config).
func (uc *AuthUseCase) IsAdminEmail(email string) bool {
	_, ok := uc.admins[NormalizeEmail(email)]
	return ok
}

// Register crea la cuenta, fija IsAdmin según la lista y devuelve token + usuario.
// ErrDuplicateIdentity si el email ya existe.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := NormalizeEmail(in.Email)
	if !strings.Contains(email, "@") || len(in.Password) < minPasswordLen || len(in.Password) > maxPasswordLen {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateIdentity
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	now := uc.now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsAdmin:      uc.IsAdminEmail(email),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// El índice único cubre la carrera entre el GetByEmail y el Create.
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return uc.authResponse(user)
}

// Login verifica email/password y devuelve token + usuario.
// Email inexistente y password incorrecto devuelven el mismo ErrInvalidCredential.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = uc.hasher.Verify(uc.dummyHash, in.Password)
		return nil, domain.ErrInvalidCredential
	}
	if err := uc.hasher.Verify(user.PasswordHash, in.Password); err != nil {
		return nil, domain.ErrInvalidCredential
	}
	return uc.authResponse(user)
}

// ResolvePrincipal obtiene la cuenta del subject de un token ya verificado (sin hash).
// ErrPrincipalNotFound si la cuenta ya no existe.
func (uc *AuthUseCase) ResolvePrincipal(ctx context.Context, subject string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrPrincipalNotFound
	}
	return user.Public(), nil
}

func (uc *AuthUseCase) authResponse(user *entity.User) (*dto.AuthResponse, error) {
	tok, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("emitir token: %w", err)
	}
	return &dto.AuthResponse{
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt,
		User:      ToUserResponse(user),
	}, nil
}

// ToUserResponse mapea la cuenta a su forma pública.
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
