package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccountServiceImpl implements ports.AccountService. Account creation
// provisions the three per-user records the engine depends on: the user
// directory entry, an empty wallet, and an unset PIN record.
type AccountServiceImpl struct {
	userRepo   ports.UserRepository
	walletRepo ports.WalletRepository
	pinSvc     ports.PinService
	log        zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	pinSvc ports.PinService,
	log zerolog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		pinSvc:     pinSvc,
		log:        log,
	}
}

// CreateAccount creates a user with an empty wallet and an unset PIN
// entry. Usernames are unique; wallet and PIN creation are idempotent.
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, username string) (*domain.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	if _, err := s.walletRepo.Create(ctx, domain.NewWallet(user.ID, now)); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	if _, err := s.pinSvc.CreateEntry(ctx, user.ID); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("username", username).
		Msg("account created")
	return user, nil
}

// ResolveUsername looks up a user by username.
func (s *AccountServiceImpl) ResolveUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve username: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}

// GetUser looks up a user by id.
func (s *AccountServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}
