package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sweetshop/internal/model"
	"sweetshop/internal/repository"
	"sweetshop/pkg/apierror"
)

const testSecret = "test-secret"

func newTestAuthService(t *testing.T, accounts *repository.MockAccountRepository, now time.Time) *AuthService {
	t.Helper()

	svc, err := NewAuthService(accounts, testSecret, 30*time.Minute, "sweetshop")
	require.NoError(t, err)
	svc.bcryptCost = bcrypt.MinCost
	svc.now = func() time.Time { return now }
	return svc
}

func hashFor(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func requireAPIError(t *testing.T, err error, code string, status int) *apierror.APIError {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, code, apiErr.Code)
	require.Equal(t, status, apiErr.HTTPStatus)
	return apiErr
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewAuthService(&repository.MockAccountRepository{}, "  ", time.Minute, "")
	require.Error(t, err)

	_, err = NewAuthService(&repository.MockAccountRepository{}, "s", 0, "")
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates a USER by default with a bcrypt hash", func(t *testing.T) {
		accounts := &repository.MockAccountRepository{}
		svc := newTestAuthService(t, accounts, now)

		accounts.On("Create", ctx, "jane@example.com", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cretpass")) == nil
		}), model.RoleUser).Return(model.Account{ID: 1, Email: "jane@example.com", Role: model.RoleUser, CreatedAt: now}, nil)

		view, err := svc.Register(ctx, model.RegisterRequest{Email: " jane@example.com ", Password: "s3cretpass"})
		require.NoError(t, err)
		require.Equal(t, model.AccountView{ID: 1, Email: "jane@example.com", Role: model.RoleUser, CreatedAt: now}, view)
		accounts.AssertExpectations(t)
	})

	t.Run("accepts a lower-case admin role", func(t *testing.T) {
		accounts := &repository.MockAccountRepository{}
		svc := newTestAuthService(t, accounts, now)

		accounts.On("Create", ctx, "boss@example.com", mock.Anything, model.RoleAdmin).
			Return(model.Account{ID: 2, Email: "boss@example.com", Role: model.RoleAdmin}, nil)

		view, err := svc.Register(ctx, model.RegisterRequest{Email: "boss@example.com", Password: "s3cretpass", Role: "admin"})
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, view.Role)
	})

	t.Run("duplicate email is rejected with 400", func(t *testing.T) {
		accounts := &repository.MockAccountRepository{}
		svc := newTestAuthService(t, accounts, now)

		accounts.On("Create", ctx, "jane@example.com", mock.Anything, model.RoleUser).
			Return(model.Account{}, model.ErrEmailTaken)

		_, err := svc.Register(ctx, model.RegisterRequest{Email: "jane@example.com", Password: "s3cretpass"})
		apiErr := requireAPIError(t, err, apierror.CodeAlreadyExists, http.StatusBadRequest)
		require.Equal(t, "Email already registered", apiErr.Message)
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		cases := map[string]model.RegisterRequest{
			"malformed email":  {Email: "not-an-email", Password: "s3cretpass"},
			"missing password": {Email: "jane@example.com"},
			"short password":   {Email: "jane@example.com", Password: "short"},
			"unknown role":     {Email: "jane@example.com", Password: "s3cretpass", Role: "OWNER"},
		}

		for name, req := range cases {
			t.Run(name, func(t *testing.T) {
				accounts := &repository.MockAccountRepository{}
				svc := newTestAuthService(t, accounts, now)

				_, err := svc.Register(ctx, req)
				requireAPIError(t, err, apierror.CodeValidation, http.StatusBadRequest)
				accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})
}

func TestLoginAndVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	account := model.Account{ID: 42, Email: "jane@example.com", PasswordHash: hashFor(t, "s3cretpass"), Role: model.RoleAdmin}

	t.Run("token decodes to the same account and role", func(t *testing.T) {
		accounts := &repository.MockAccountRepository{}
		svc := newTestAuthService(t, accounts, now)
		accounts.On("FindByEmail", ctx, "jane@example.com").Return(account, nil)

		result, err := svc.Login(ctx, model.LoginRequest{Email: "jane@example.com", Password: "s3cretpass"})
		require.NoError(t, err)
		require.Equal(t, "bearer", result.TokenType)
		require.EqualValues(t, 1800, result.ExpiresIn)
		require.Equal(t, account.Public(), result.User)

		claims, err := svc.Verify(result.AccessToken)
		require.NoError(t, err)
		require.EqualValues(t, 42, claims.AccountID)
		require.Equal(t, model.RoleAdmin, claims.Role)
		require.Equal(t, "jane@example.com", claims.Email)
		require.NotEmpty(t, claims.TokenID)
		require.Equal(t, now.Add(30*time.Minute), claims.ExpiresAt.UTC())
	})

	t.Run("wrong password and unknown email are both 401", func(t *testing.T) {
		accounts := &repository.MockAccountRepository{}
		svc := newTestAuthService(t, accounts, now)
		accounts.On("FindByEmail", ctx, "jane@example.com").Return(account, nil)
		accounts.On("FindByEmail", ctx, "ghost@example.com").Return(model.Account{}, model.ErrAccountNotFound)

		_, err := svc.Login(ctx, model.LoginRequest{Email: "jane@example.com", Password: "wrong-pass"})
		requireAPIError(t, err, apierror.CodeUnauthorized, http.StatusUnauthorized)

		_, err = svc.Login(ctx, model.LoginRequest{Email: "ghost@example.com", Password: "s3cretpass"})
		requireAPIError(t, err, apierror.CodeUnauthorized, http.StatusUnauthorized)
	})

	t.Run("token expires after the access ttl", func(t *testing.T) {
		accounts := &repository.MockAccountRepository{}
		svc := newTestAuthService(t, accounts, now)
		accounts.On("FindByEmail", ctx, "jane@example.com").Return(account, nil)

		result, err := svc.Login(ctx, model.LoginRequest{Email: "jane@example.com", Password: "s3cretpass"})
		require.NoError(t, err)

		svc.now = func() time.Time { return now.Add(29 * time.Minute) }
		_, err = svc.Verify(result.AccessToken)
		require.NoError(t, err)

		svc.now = func() time.Time { return now.Add(31 * time.Minute) }
		_, err = svc.Verify(result.AccessToken)
		apiErr := requireAPIError(t, err, apierror.CodeUnauthorized, http.StatusUnauthorized)
		require.Equal(t, "token has expired", apiErr.Message)
	})
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := newTestAuthService(t, &repository.MockAccountRepository{}, now)

	claims := tokenClaims{
		Email: "jane@example.com",
		Role:  "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "sweetshop",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-else"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry := claims
	noExpiry.ExpiresAt = nil
	missingExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noExpiry).SignedString([]byte(testSecret))
	require.NoError(t, err)

	badRole := claims
	badRole.Role = "ROOT"
	unknownRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, badRole).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not.a.token",
		"other secret": otherSecret,
		"hs512":        wrongAlg,
		"alg none":     unsigned,
		"no expiry":    missingExp,
		"unknown role": unknownRole,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			requireAPIError(t, err, apierror.CodeUnauthorized, http.StatusUnauthorized)
		})
	}
}

func TestCurrentAccount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	accounts := &repository.MockAccountRepository{}
	svc := newTestAuthService(t, accounts, time.Now())

	accounts.On("FindByID", ctx, int64(5)).Return(model.Account{ID: 5, Email: "a@example.com", Role: model.RoleUser}, nil)
	accounts.On("FindByID", ctx, int64(6)).Return(model.Account{}, model.ErrAccountNotFound)

	view, err := svc.CurrentAccount(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", view.Email)

	_, err = svc.CurrentAccount(ctx, 6)
	requireAPIError(t, err, apierror.CodeNotFound, http.StatusNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("existing account is left alone", func(t *testing.T) {
		accounts := &repository.MockAccountRepository{}
		svc := newTestAuthService(t, accounts, time.Now())
		accounts.On("FindByEmail", ctx, "root@example.com").Return(model.Account{ID: 1, Role: model.RoleUser}, nil)

		require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "rootpassword"))
		accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing account is created as ADMIN", func(t *testing.T) {
		accounts := &repository.MockAccountRepository{}
		svc := newTestAuthService(t, accounts, time.Now())
		accounts.On("FindByEmail", ctx, "root@example.com").Return(model.Account{}, model.ErrAccountNotFound)
		accounts.On("Create", ctx, "root@example.com", mock.Anything, model.RoleAdmin).
			Return(model.Account{ID: 1, Email: "root@example.com", Role: model.RoleAdmin}, nil)

		require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "rootpassword"))
		accounts.AssertExpectations(t)
	})
}
