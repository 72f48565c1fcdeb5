package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sweetshop/internal/metrics"
	"sweetshop/internal/model"
	"sweetshop/pkg/apierror"
)

const tokenType = "bearer"

type accountStore interface {
	Create(ctx context.Context, email string, passwordHash string, role model.Role) (model.Account, error)
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	FindByID(ctx context.Context, id int64) (model.Account, error)
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	accounts   accountStore
	jwtSecret  []byte
	accessTTL  time.Duration
	issuer     string
	bcryptCost int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(accounts accountStore, jwtSecret string, accessTTL time.Duration, issuer string) (*AuthService, error) {
	if strings.TrimSpace(jwtSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}

	return &AuthService{
		accounts:   accounts,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		issuer:     issuer,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AccountView, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req); err != nil {
		return model.AccountView{}, err
	}

	role, ok := model.ParseRole(req.Role)
	if !ok {
		return model.AccountView{}, validationError("role must be one of: USER ADMIN", "role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.AccountView{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, req.Email, string(hash), role)
	if errors.Is(err, model.ErrEmailTaken) {
		return model.AccountView{}, apierror.New(apierror.CodeAlreadyExists, "Email already registered", req.Email, http.StatusBadRequest)
	}
	if err != nil {
		return model.AccountView{}, err
	}

	slog.Info("account registered", "account_id", account.ID, "role", account.Role)
	return account.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	result, err := s.login(ctx, req)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
		return model.LoginResult{}, err
	}
	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	return result, nil
}

func (s *AuthService) login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	if err := validateStruct(req); err != nil {
		return model.LoginResult{}, err
	}

	invalid := apierror.New(apierror.CodeUnauthorized, "Incorrect email or password", "", http.StatusUnauthorized)

	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, model.ErrAccountNotFound) {
		// Unknown emails still pay for one bcrypt comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(req.Password))
		return model.LoginResult{}, invalid
	}
	if err != nil {
		return model.LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return model.LoginResult{}, invalid
	}

	token, err := s.issueToken(account)
	if err != nil {
		return model.LoginResult{}, err
	}

	return model.LoginResult{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User:        account.Public(),
	}, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// embedded identity. It does not touch the account store.
func (s *AuthService) Verify(tokenString string) (*model.AuthClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apierror.New(apierror.CodeUnauthorized, "token has expired", "", http.StatusUnauthorized)
	}
	if err != nil {
		return nil, apierror.New(apierror.CodeUnauthorized, "Could not validate credentials", "", http.StatusUnauthorized)
	}

	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return nil, apierror.New(apierror.CodeUnauthorized, "invalid token subject", "", http.StatusUnauthorized)
	}

	role, ok := model.ParseRole(claims.Role)
	if !ok || claims.Role == "" {
		return nil, apierror.New(apierror.CodeUnauthorized, "invalid token role", "", http.StatusUnauthorized)
	}

	return &model.AuthClaims{
		AccountID: accountID,
		Email:     claims.Email,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) CurrentAccount(ctx context.Context, accountID int64) (model.AccountView, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if errors.Is(err, model.ErrAccountNotFound) {
		return model.AccountView{}, apierror.New(apierror.CodeNotFound, "account not found", strconv.FormatInt(accountID, 10), http.StatusNotFound)
	}
	if err != nil {
		return model.AccountView{}, err
	}
	return account.Public(), nil
}

// EnsureAdmin creates an ADMIN account for email unless one already exists.
// An existing account with that email is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, email string, password string) error {
	_, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	_, err = s.Register(ctx, model.RegisterRequest{Email: email, Password: password, Role: string(model.RoleAdmin)})
	if apierror.CodeOf(err) == apierror.CodeAlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	slog.Info("bootstrap admin created", "email", strings.TrimSpace(email))
	return nil
}

func (s *AuthService) issueToken(account model.Account) (string, error) {
	now := s.now().UTC()
	claims := tokenClaims{
		Email: account.Email,
		Role:  string(account.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(account.ID, 10),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.bcryptCost)
	})
	return s.dummyHash
}
