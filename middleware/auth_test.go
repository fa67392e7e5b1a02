package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-draw/models"
	"github.com/Dosada05/championship-draw/services"
)

type stubParser struct {
	claims *services.Claims
	err    error
	got    string
}

func (s *stubParser) ParseToken(token string) (*services.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func protected(parser TokenParser, roles ...models.UserRole) http.Handler {
	return Authenticate(parser)(Authorize(roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(claims.Subject))
	})))
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	protected(&stubParser{}, models.RoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	parser := &stubParser{err: errors.New("expired")}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def")

	rec := httptest.NewRecorder()
	protected(parser, models.RoleAdmin).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "abc.def", parser.got)
}

func TestAuthorize_RoleMismatch(t *testing.T) {
	claims := &services.Claims{Role: models.RoleStudent}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer t")

	rec := httptest.NewRecorder()
	protected(&stubParser{claims: claims}, models.RoleAdmin).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthorize_Admin(t *testing.T) {
	claims := &services.Claims{Role: models.RoleAdmin}
	claims.Subject = "draws@college.test"
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "bearer t")

	rec := httptest.NewRecorder()
	protected(&stubParser{claims: claims}, models.RoleAdmin).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "draws@college.test", rec.Body.String())
}
