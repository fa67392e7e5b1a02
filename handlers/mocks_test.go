package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/Dosada05/championship-draw/draw"
	"github.com/Dosada05/championship-draw/models"
	"github.com/Dosada05/championship-draw/services"
)

type mockDrawService struct {
	mock.Mock
}

func (m *mockDrawService) session(args mock.Arguments) (draw.Session, error) {
	s, _ := args.Get(0).(draw.Session)
	return s, args.Error(1)
}

func (m *mockDrawService) Open(ctx context.Context, id string) (draw.Session, error) {
	return m.session(m.Called(ctx, id))
}

func (m *mockDrawService) Start(ctx context.Context, id string) (draw.Session, error) {
	return m.session(m.Called(ctx, id))
}

func (m *mockDrawService) Redraw(ctx context.Context, id string) (draw.Session, error) {
	return m.session(m.Called(ctx, id))
}

func (m *mockDrawService) Save(ctx context.Context, id string) (*services.SaveResult, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*services.SaveResult)
	return res, args.Error(1)
}

func (m *mockDrawService) Close(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDrawService) Session(ctx context.Context, id string) (*draw.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*draw.Session)
	return s, args.Error(1)
}

// WithSession hands fn the *draw.Session the expectation returns, if any.
func (m *mockDrawService) WithSession(ctx context.Context, id string, fn func(draw.Session)) error {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*draw.Session); ok && s != nil {
		fn(*s)
	}
	return args.Error(1)
}

func (m *mockDrawService) Bracket(ctx context.Context, id string) (*services.BracketView, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*services.BracketView)
	return b, args.Error(1)
}

func (m *mockDrawService) IsOpen(id string) bool {
	return m.Called(id).Bool(0)
}

func (m *mockDrawService) Shutdown(ctx context.Context) {
	m.Called(ctx)
}

type mockMatchService struct {
	mock.Mock
}

func (m *mockMatchService) Generate(ctx context.Context, id string) (*services.GenerateResult, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*services.GenerateResult)
	return res, args.Error(1)
}

func (m *mockMatchService) List(ctx context.Context, id string) ([]models.ScheduledMatch, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).([]models.ScheduledMatch)
	return res, args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, in models.Credentials) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) ParseToken(token string) (*services.Claims, error) {
	args := m.Called(token)
	c, _ := args.Get(0).(*services.Claims)
	return c, args.Error(1)
}

// serve routes a single request through chi so URL params resolve.
func serve(method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type mockTeamService struct {
	mock.Mock
}

func (m *mockTeamService) Register(ctx context.Context, tournamentID, name string) (*models.Team, error) {
	args := m.Called(ctx, tournamentID, name)
	team, _ := args.Get(0).(*models.Team)
	return team, args.Error(1)
}

func (m *mockTeamService) SetStatus(ctx context.Context, teamID string, status models.TeamStatus) error {
	return m.Called(ctx, teamID, status).Error(0)
}
