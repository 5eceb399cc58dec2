package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobboard/internal/auth"
	apperrors "jobboard/internal/errors"
	"jobboard/internal/handler"
	"jobboard/internal/model"
	"jobboard/internal/router"
	"jobboard/internal/service"
)

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, input service.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) CreateUserWithRole(ctx context.Context, input service.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uuid.UUID, input service.UpdateUserInput) (*model.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// newContext builds an echo context for path params names/values. A non-nil claims is
// stored the way the JWT middleware would.
func newContext(method, body string, claims *auth.Claims, names, values []string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = router.NewValidator()

	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if claims != nil {
		c.Set("user", &jwt.Token{Claims: claims, Valid: true})
	}
	return c, rec
}

func claimsFor(id uuid.UUID, role model.Role) *auth.Claims {
	return &auth.Claims{UserID: id, Role: role, TokenType: auth.TokenTypeAccess}
}

func assertHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, status, he.Code)
	resp, ok := he.Message.(apperrors.ErrorResponse)
	require.True(t, ok, "message is %T", he.Message)
	assert.Equal(t, code, resp.Code)
}

func TestUserHandler_CreateUser(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockUserService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "with company",
			body: `{"email":"a@x.com","password":"longenough1","companyName":"Acme","role":"ADMIN"}`,
			setupMock: func(m *MockUserService) {
				m.On("CreateUser", mock.Anything, service.CreateUserInput{
					Email:       "a@x.com",
					Password:    "longenough1",
					Role:        model.RoleAdmin,
					CompanyName: "Acme",
				}).Return(&model.User{ID: uuid.New(), Email: "a@x.com", Role: model.RoleUser, CompanyID: &companyID, PasswordHash: "secret-hash"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			setupMock:  func(*MockUserService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "malformed email",
			body:       `{"email":"not-an-email","password":"longenough1"}`,
			setupMock:  func(*MockUserService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "short password",
			body:       `{"email":"a@x.com","password":"short"}`,
			setupMock:  func(*MockUserService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "password over bcrypt limit",
			body:       `{"email":"long@x.com","password":"` + strings.Repeat("a", 80) + `"}`,
			setupMock:  func(*MockUserService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "unknown role",
			body:       `{"email":"a@x.com","password":"longenough1","role":"ROOT"}`,
			setupMock:  func(*MockUserService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "duplicate email",
			body: `{"email":"dup@x.com","password":"longenough1"}`,
			setupMock: func(m *MockUserService) {
				m.On("CreateUser", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEmailAlreadyExists)
			},
			wantStatus: http.StatusConflict,
			wantCode:   "EMAIL_ALREADY_EXISTS",
		},
		{
			name: "transaction failure",
			body: `{"email":"c@x.com","password":"longenough1","companyName":"Broken"}`,
			setupMock: func(m *MockUserService) {
				m.On("CreateUser", mock.Anything, mock.Anything).Return(nil, errors.New("create user: create company: boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			tt.setupMock(svc)
			h := handler.NewUserHandler(svc)

			c, rec := newContext(http.MethodPost, tt.body, nil, nil, nil)
			err := h.CreateUser(c)

			if tt.wantCode != "" {
				assertHTTPError(t, err, tt.wantStatus, tt.wantCode)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, rec.Code)
				assert.NotContains(t, rec.Body.String(), "secret-hash")

				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, companyID.String(), body["companyId"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestUserHandler_GetUser(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("GetUser", mock.Anything, id).Return(&model.User{ID: id, Email: "a@x.com"}, nil)

		c, rec := newContext(http.MethodGet, "", nil, []string{"id"}, []string{id.String()})
		require.NoError(t, handler.NewUserHandler(svc).GetUser(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), id.String())
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("GetUser", mock.Anything, id).Return(nil, apperrors.ErrUserNotFound)

		c, _ := newContext(http.MethodGet, "", nil, []string{"id"}, []string{id.String()})
		assertHTTPError(t, handler.NewUserHandler(svc).GetUser(c), http.StatusNotFound, "USER_NOT_FOUND")
	})

	t.Run("malformed id", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "", nil, []string{"id"}, []string{"42"})
		assertHTTPError(t, handler.NewUserHandler(new(MockUserService)).GetUser(c), http.StatusBadRequest, "INVALID_REQUEST")
	})
}

func TestUserHandler_UpdateUser(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	tests := []struct {
		name       string
		target     uuid.UUID
		claims     *auth.Claims
		body       string
		setupMock  func(*MockUserService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "self rename",
			target: self,
			claims: claimsFor(self, model.RoleUser),
			body:   `{"name":"New Name"}`,
			setupMock: func(m *MockUserService) {
				m.On("UpdateUser", mock.Anything, self, mock.MatchedBy(func(in service.UpdateUserInput) bool {
					return in.Name != nil && *in.Name == "New Name" && in.Email == nil && in.Role == nil
				})).Return(&model.User{ID: self, Name: "New Name"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "other user as USER",
			target:     other,
			claims:     claimsFor(self, model.RoleUser),
			body:       `{"name":"x"}`,
			setupMock:  func(*MockUserService) {},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "self role change",
			target:     self,
			claims:     claimsFor(self, model.RoleUser),
			body:       `{"role":"ADMIN"}`,
			setupMock:  func(*MockUserService) {},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:   "admin role change",
			target: other,
			claims: claimsFor(self, model.RoleAdmin),
			body:   `{"role":"RECRUITER"}`,
			setupMock: func(m *MockUserService) {
				m.On("UpdateUser", mock.Anything, other, mock.Anything).Return(&model.User{ID: other, Role: model.RoleRecruiter}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "admin on missing user",
			target: other,
			claims: claimsFor(self, model.RoleAdmin),
			body:   `{"name":"x"}`,
			setupMock: func(m *MockUserService) {
				m.On("UpdateUser", mock.Anything, other, mock.Anything).Return(nil, apperrors.ErrUserNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "USER_NOT_FOUND",
		},
		{
			name:       "invalid email",
			target:     self,
			claims:     claimsFor(self, model.RoleUser),
			body:       `{"email":"nope"}`,
			setupMock:  func(*MockUserService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			tt.setupMock(svc)

			c, rec := newContext(http.MethodPatch, tt.body, tt.claims, []string{"id"}, []string{tt.target.String()})
			err := handler.NewUserHandler(svc).UpdateUser(c)

			if tt.wantCode != "" {
				assertHTTPError(t, err, tt.wantStatus, tt.wantCode)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, rec.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestUserHandler_DeleteUser(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	t.Run("self delete", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("DeleteUser", mock.Anything, self).Return(&model.User{ID: self}, nil)

		c, rec := newContext(http.MethodDelete, "", claimsFor(self, model.RoleUser), []string{"id"}, []string{self.String()})
		require.NoError(t, handler.NewUserHandler(svc).DeleteUser(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin deletes missing user", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("DeleteUser", mock.Anything, other).Return(nil, apperrors.ErrUserNotFound)

		c, _ := newContext(http.MethodDelete, "", claimsFor(self, model.RoleAdmin), []string{"id"}, []string{other.String()})
		assertHTTPError(t, handler.NewUserHandler(svc).DeleteUser(c), http.StatusNotFound, "USER_NOT_FOUND")
	})

	t.Run("user deletes someone else", func(t *testing.T) {
		svc := new(MockUserService)
		c, _ := newContext(http.MethodDelete, "", claimsFor(self, model.RoleUser), []string{"id"}, []string{other.String()})
		assertHTTPError(t, handler.NewUserHandler(svc).DeleteUser(c), http.StatusForbidden, "FORBIDDEN")
		svc.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})
}
