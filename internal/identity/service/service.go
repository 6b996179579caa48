package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"civicdesk/internal/identity/metrics"
	"civicdesk/internal/identity/models"
	"civicdesk/internal/identity/password"
	"civicdesk/internal/identity/store"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, a *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

type TokenIssuer interface {
	Generate(accountID, email string) (string, error)
}

// Service creates staff accounts and exchanges credentials for tokens.
type Service struct {
	store   Store
	tokens  TokenIssuer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{store: store, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount returns the new account id.
func (s *Service) CreateAccount(ctx context.Context, req *models.CredentialsRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		if _, ok := dErrors.As(err); ok {
			return "", err
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return "", dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account: "+err.Error())
	}

	s.metrics.IncrementSignups()
	s.logger.InfoContext(ctx, "account created", "account_id", account.ID)
	return account.ID, nil
}

// IssueToken does not distinguish an unknown email from a wrong password.
func (s *Service) IssueToken(ctx context.Context, req *models.CredentialsRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	account, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.IncrementSignin("rejected")
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign in")
	}

	if err := password.Verify(req.Password, account.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.metrics.IncrementSignin("rejected")
			return "", err
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign in")
	}

	tok, err := s.tokens.Generate(account.ID, account.Email)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	s.metrics.IncrementSignin("issued")
	return tok, nil
}
