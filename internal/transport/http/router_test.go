package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"lifebridge/internal/audit"
	auditstore "lifebridge/internal/audit/store"
	"lifebridge/internal/matching"
	matchinghandler "lifebridge/internal/matching/handler"
	"lifebridge/internal/privacy"
	registryhandler "lifebridge/internal/registry/handler"
	registryservice "lifebridge/internal/registry/service"
	registrystore "lifebridge/internal/registry/store"
	"lifebridge/internal/requests"
	"lifebridge/pkg/platform/middleware/auth"
)

const signingKey = "router-test-key"

type RouterSuite struct {
	suite.Suite
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	profiles := registrystore.NewInMemory()

	engine, err := matching.NewEngine(matching.DefaultEngineConfig())
	s.Require().NoError(err)
	filter, err := privacy.NewFilter(privacy.DefaultConfig())
	s.Require().NoError(err)
	matchSvc, err := matching.NewService(profiles, engine, filter)
	s.Require().NoError(err)
	requestSvc, err := requests.NewService(requests.NewInMemoryStore(), profiles)
	s.Require().NoError(err)
	registrySvc, err := registryservice.NewService(profiles)
	s.Require().NoError(err)

	publisher := audit.NewPublisher(auditstore.NewInMemory())

	s.router = NewRouter(Deps{
		Verifier: auth.NewVerifier(signingKey),
		Matching: matchinghandler.NewHandler(matchSvc, filter, publisher),
		Registry: registryhandler.NewHandler(registrySvc, nil),
		Requests: requests.NewHandler(requestSvc, nil),
	})
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dr-jones",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(signingKey))
	require.NoError(t, err)
	return signed
}

func (s *RouterSuite) request(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestOperationalEndpointsAreOpen() {
	rec := s.request(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestAPIRequiresAuth() {
	for _, target := range []string{"/matches/r-1", "/matches/allocations", "/profiles/r-1", "/matches/requests"} {
		rec := s.request(http.MethodGet, target, "")
		s.Equal(http.StatusUnauthorized, rec.Code, target)
	}
}

func (s *RouterSuite) TestAuthenticatedRoutesReachHandlers() {
	token := signToken(s.T(), "clinician")

	// Unknown recipient proves the matching handler was reached.
	rec := s.request(http.MethodGet, "/matches/ghost", token)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.request(http.MethodGet, "/matches/allocations", token)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/matches/requests", token)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/profiles?role=donor", token)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestRequestIDHeaderIsStamped() {
	rec := s.request(http.MethodGet, "/healthz", "")
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestHealthReportsDependencyFailure() {
	s.router = NewRouter(Deps{
		Verifier: auth.NewVerifier(signingKey),
		Matching: &matchinghandler.Handler{},
		Registry: &registryhandler.Handler{},
		Requests: &requests.Handler{},
		Health:   map[string]HealthChecker{"redis": failingCheck{}},
	})

	rec := s.request(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

type failingCheck struct{}

func (failingCheck) Health(context.Context) error {
	return context.DeadlineExceeded
}
