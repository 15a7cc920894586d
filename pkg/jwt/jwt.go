package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jhoicas/sweetshop-api/internal/domain"
)

// Config configuración del emisor de tokens.
type Config struct {
	Secret   string
	Lifetime time.Duration
	Issuer   string
}

// Token es un bearer token firmado junto con sus instantes de emisión y expiración.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims incluye los claims estándar JWT. El subject es el ID de la cuenta;
// no se guarda rol ni estado: el middleware resuelve la cuenta en cada petición.
type Claims struct {
	jwt.RegisteredClaims
}

// Service emite y verifica tokens HS256 autocontenidos (sin tabla de sesiones).
// Verify es puro: firma + reloj, sin consultar almacenamiento.
type Service struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	now      func() time.Time
}

// Option ajusta el Service en construcción.
type Option func(*Service)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService valida la configuración y construye el servicio.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("jwt: duración inválida %s", cfg.Lifetime)
	}
	s := &Service{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		issuer:   cfg.Issuer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue genera un token para subject con la duración configurada.
func (s *Service) Issue(subject string) (Token, error) {
	return s.IssueWithLifetime(subject, s.lifetime)
}

// IssueWithLifetime genera un token con una duración explícita.
// El jti es el instante de emisión en nanosegundos: dos tokens del mismo subject
// sólo coinciden si se emiten en el mismo instante con la misma clave.
func (s *Service) IssueWithLifetime(subject string, lifetime time.Duration) (Token, error) {
	if subject == "" {
		return Token{}, fmt.Errorf("jwt: subject vacío")
	}
	now := s.now()
	exp := now.Add(lifetime)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.FormatInt(now.UnixNano(), 10),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("jwt: firmar token: %w", err)
	}
	return Token{Value: signed, IssuedAt: claims.IssuedAt.Time, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify valida firma, formato y expiración (inválido desde el instante exp) y devuelve el subject.
// Cualquier fallo envuelve domain.ErrInvalidToken.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject vacío", domain.ErrInvalidToken)
	}
	return claims.Subject, nil
}

// IsExpired indica si el error de Verify se debe a expiración.
func IsExpired(err error) bool {
	return errors.Is(err, domain.ErrInvalidToken) && errors.Is(err, jwt.ErrTokenExpired)
}
