package jwt_test

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop-api/internal/domain"
	pkgjwt "github.com/jhoicas/sweetshop-api/pkg/jwt"
)

const (
	testSecret  = "test-secret-key-for-unit-tests"
	testSubject = "00000000-0000-0000-0000-000000000001"
)

// fakeClock reloj controlable para los tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newService(t *testing.T, secret string, clock *fakeClock) *pkgjwt.Service {
	t.Helper()
	svc, err := pkgjwt.NewService(pkgjwt.Config{
		Secret:   secret,
		Lifetime: time.Hour,
		Issuer:   "sweetshop-test",
	}, pkgjwt.WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

func TestNewService_ConfigInvalida(t *testing.T) {
	_, err := pkgjwt.NewService(pkgjwt.Config{Secret: "", Lifetime: time.Hour})
	assert.Error(t, err, "secret vacío debe rechazarse")

	_, err = pkgjwt.NewService(pkgjwt.Config{Secret: testSecret, Lifetime: 0})
	assert.Error(t, err, "duración cero debe rechazarse")
}

func TestIssueAndVerify_AntesDeExpirar(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService(t, testSecret, clock)

	tok, err := svc.Issue(testSubject)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	assert.Equal(t, clock.t.Add(time.Hour), tok.ExpiresAt)

	clock.Advance(59 * time.Minute)
	subject, err := svc.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, testSubject, subject)
}

func TestVerify_RechazaEnExpiracionYDespues(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService(t, testSecret, clock)

	tok, err := svc.Issue(testSubject)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.Verify(tok.Value)
	require.Error(t, err, "en el instante exp el token ya no es válido")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.True(t, pkgjwt.IsExpired(err))

	clock.Advance(time.Minute)
	_, err = svc.Verify(tok.Value)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_SecretDistinto(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	tok, err := newService(t, testSecret, clock).Issue(testSubject)
	require.NoError(t, err)

	_, err = newService(t, "otro-secret-completamente-distinto", clock).Verify(tok.Value)
	assert.ErrorIs(t, err, domain.ErrInvalidToken, "rotar el secret invalida los tokens emitidos")
	assert.False(t, pkgjwt.IsExpired(err))
}

func TestVerify_Malformado(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newService(t, testSecret, clock)

	for _, raw := range []string{"", "token.invalido.aqui", "abc"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", raw)
	}
}

func TestVerify_AlgoritmoNone(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService(t, testSecret, clock)

	claims := gojwt.RegisteredClaims{
		Subject:   testSubject,
		ExpiresAt: gojwt.NewNumericDate(clock.t.Add(time.Hour)),
	}
	raw, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_SinExpiracion(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService(t, testSecret, clock)

	raw, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{Subject: testSubject}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestIssue_DeterministaPorInstante(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService(t, testSecret, clock)

	a, err := svc.Issue(testSubject)
	require.NoError(t, err)
	b, err := svc.Issue(testSubject)
	require.NoError(t, err)
	assert.Equal(t, a.Value, b.Value, "misma clave, subject e instante producen el mismo token")

	clock.Advance(time.Millisecond)
	c, err := svc.Issue(testSubject)
	require.NoError(t, err)
	assert.NotEqual(t, a.Value, c.Value, "instantes distintos producen tokens distinguibles")
}

func TestIssueWithLifetime_Override(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService(t, testSecret, clock)

	tok, err := svc.IssueWithLifetime(testSubject, 5*time.Minute)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	_, err = svc.Verify(tok.Value)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestIssue_SubjectVacio(t *testing.T) {
	svc := newService(t, testSecret, &fakeClock{t: time.Now()})
	_, err := svc.Issue("")
	assert.Error(t, err)
}
