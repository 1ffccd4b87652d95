package handler_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/handler"
	"littlelemon/internal/infra/token"
	"littlelemon/internal/repository"
	reqvalidator "littlelemon/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

// トークン検証用の固定ユーザー
const (
	customerID int64 = 1
	managerID  int64 = 2
	crewID     int64 = 3
	adminID    int64 = 4
)

type identity struct {
	users map[int64]*model.User
	roles map[int64][]model.Role
}

var (
	_ repository.UserRepository = (*identity)(nil)
	_ repository.RoleRepository = (*identity)(nil)
)

func newIdentity() *identity {
	id := &identity{users: map[int64]*model.User{}, roles: map[int64][]model.Role{}}
	for _, u := range []struct {
		id   int64
		name string
		role model.Role
	}{
		{customerID, "customer", ""},
		{managerID, "manager", model.RoleManager},
		{crewID, "crew", model.RoleDeliveryCrew},
		{adminID, "admin", model.RoleAdmin},
	} {
		id.users[u.id] = &model.User{ID: u.id, Username: u.name, IsActive: true}
		if u.role != "" {
			id.roles[u.id] = []model.Role{u.role}
		}
	}
	return id
}

func (i *identity) Create(ctx context.Context, user *model.User) error { return nil }

func (i *identity) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	u, ok := i.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (i *identity) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range i.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (i *identity) IncrementTokenVersion(ctx context.Context, userID int64) error { return nil }

func (i *identity) ListRoles(ctx context.Context, userID int64) ([]model.Role, error) {
	return i.roles[userID], nil
}

func (i *identity) HasRole(ctx context.Context, userID int64, role model.Role) (bool, error) {
	for _, r := range i.roles[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func (i *identity) AddRole(ctx context.Context, userID int64, role model.Role) error    { return nil }
func (i *identity) RemoveRole(ctx context.Context, userID int64, role model.Role) error { return nil }

func (i *identity) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	return nil, nil
}

type testServer struct {
	e      *echo.Echo
	guards handler.Guards
	issuer *token.JWTIssuer
}

func newTestServer() *testServer {
	e := echo.New()
	e.Validator = reqvalidator.New()

	issuer := token.NewJWTIssuer(testSecret, time.Minute)
	ident := newIdentity()

	return &testServer{
		e:      e,
		issuer: issuer,
		guards: handler.Guards{Tokens: issuer, Users: ident, Roles: ident},
	}
}

// userIDが0なら匿名
func (s *testServer) do(t *testing.T, method string, path string, body string, userID int64, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID > 0 {
		raw, _, err := s.issuer.Issue(userID, 0, time.Now())
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+raw)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
