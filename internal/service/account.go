package service

import (
	"context"

	"github.com/jobhive/jobhive/internal/data"
	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/nanoid"
	"github.com/jobhive/jobhive/internal/security/jwt"
	"github.com/jobhive/jobhive/internal/validation/validator"
)

// SignupInput carries the fields needed to create an account.
type SignupInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Session is a signed token plus the identity it carries.
type Session struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
}

// AccountService creates accounts and mints session tokens. Credential
// verification itself belongs to the upstream identity provider; this
// service only materializes the account record and its session.
type AccountService struct {
	accounts repository.AccountRepository
	tokens   *jwt.TokenManager
	logger   *logger.Logger
}

// NewAccountService creates a new account service instance.
func NewAccountService(accounts repository.AccountRepository, tokens *jwt.TokenManager, log *logger.Logger) *AccountService {
	return &AccountService{accounts: accounts, tokens: tokens, logger: log}
}

// Signup creates an account with an immutable role and returns a session.
func (s *AccountService) Signup(ctx context.Context, in *SignupInput) (*Session, error) {
	if !validator.IsEmail(in.Email) {
		return nil, ecode.Validation("a valid email is required")
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, ecode.Validation("role must be employer or job_seeker")
	}

	a := &domain.Account{
		ID:       nanoid.PrimaryKey(),
		Email:    in.Email,
		FullName: in.FullName,
		Role:     role,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if data.IsUniqueViolation(err) {
			return nil, ecode.Validation("an account with this email already exists")
		}
		return nil, ecode.Internal(err, "failed to create account")
	}

	s.logger.Info(ctx, "account created", "account_id", a.ID, "role", a.Role)
	return s.session(a)
}

// SessionFor issues a session token for an existing account, identified by
// email after the upstream identity provider has verified it.
func (s *AccountService) SessionFor(ctx context.Context, email string) (*Session, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, ecode.NotFound("no account for %s", email)
	}
	return s.session(a)
}

// Get returns the caller's own account record.
func (s *AccountService) Get(ctx context.Context, caller domain.Caller) (*domain.Account, error) {
	a, err := s.accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, ecode.NotFound("account not found")
	}
	return a, nil
}

func (s *AccountService) session(a *domain.Account) (*Session, error) {
	token, err := s.tokens.GenerateSessionToken(nanoid.Must(), jwt.SessionPayload{
		AccountID: a.ID,
		Email:     a.Email,
		Role:      string(a.Role),
	})
	if err != nil {
		return nil, ecode.Internal(err, "failed to sign session token")
	}
	return &Session{Token: token, Account: a}, nil
}
