package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// pinPattern matches 4 to 6 decimal digits.
var pinPattern = regexp.MustCompile(`^[0-9]{4,6}$`)

// PinServiceImpl implements ports.PinService. It owns the per-user PIN
// record lifecycle: Unset -> Active -> ResetPending -> Active. Every
// verification attempt is audited; the accept/reject decision itself is
// computed synchronously before the caller mutates anything.
type PinServiceImpl struct {
	pinRepo  ports.PinRepository
	hashSvc  ports.HashService
	notifier ports.NotificationSink
	auditSvc ports.AuditService
	log      zerolog.Logger
}

// NewPinService creates a new PinServiceImpl.
func NewPinService(
	pinRepo ports.PinRepository,
	hashSvc ports.HashService,
	notifier ports.NotificationSink,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *PinServiceImpl {
	return &PinServiceImpl{
		pinRepo:  pinRepo,
		hashSvc:  hashSvc,
		notifier: notifier,
		auditSvc: auditSvc,
		log:      log,
	}
}

// CreateEntry initializes the record in the unset state. Called once at
// account creation; creating an existing entry returns it untouched.
func (s *PinServiceImpl) CreateEntry(ctx context.Context, userID uuid.UUID) (*domain.PinRecord, error) {
	now := time.Now().UTC()
	rec, err := s.pinRepo.Create(ctx, &domain.PinRecord{
		UserID:      userID,
		PinHash:     nil,
		MustSetPin:  true,
		CreatedAt:   now,
		LastUpdated: now,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create pin entry: %w", err))
	}
	return rec, nil
}

// SetPin validates, hashes, and stores the PIN, clearing the must-set flag.
func (s *PinServiceImpl) SetPin(ctx context.Context, userID uuid.UUID, pin string) error {
	if !pinPattern.MatchString(pin) {
		return apperror.ErrInvalidPinFormat()
	}

	rec, err := s.pinRepo.GetByUserID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get pin record: %w", err))
	}
	if rec == nil {
		return apperror.ErrPinSetupRequired()
	}

	hash, err := s.hashSvc.Hash(pin)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash pin: %w", err))
	}

	rec.PinHash = &hash
	rec.MustSetPin = false
	rec.ResetBy = nil
	rec.LastUpdated = time.Now().UTC()
	if err := s.pinRepo.Update(ctx, rec); err != nil {
		return apperror.InternalError(fmt.Errorf("store pin: %w", err))
	}

	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		Action:       domain.AuditActionPinSet,
		ResourceType: "pin",
		ResourceID:   userID.String(),
		CreatedAt:    rec.LastUpdated,
	})
	s.notifier.Notify(ctx, userID, domain.EventPinChanged, map[string]any{
		"changed_at": rec.LastUpdated.Format(time.RFC3339),
	})

	s.log.Info().Str("user_id", userID.String()).Msg("transfer PIN set")
	return nil
}

// Verify compares the supplied PIN against the stored hash. A match is
// read-only; a mismatch is audited and emits a security notification.
func (s *PinServiceImpl) Verify(ctx context.Context, userID uuid.UUID, pin string) error {
	rec, err := s.pinRepo.GetByUserID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get pin record: %w", err))
	}
	if rec == nil || !rec.IsConfigured() {
		return apperror.ErrPinNotSet()
	}

	ok, err := s.hashSvc.Verify(pin, *rec.PinHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify pin: %w", err))
	}

	now := time.Now().UTC()
	action := domain.AuditActionPinVerifyOK
	if !ok {
		action = domain.AuditActionPinVerifyFailed
	}
	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		Action:       action,
		ResourceType: "pin",
		ResourceID:   userID.String(),
		CreatedAt:    now,
	})

	if !ok {
		s.notifier.Notify(ctx, userID, domain.EventPinFailed, map[string]any{
			"attempted_at": now.Format(time.RFC3339),
		})
		s.log.Warn().Str("user_id", userID.String()).Msg("failed PIN attempt")
		return apperror.ErrInvalidPin()
	}
	return nil
}

// Reset is the administrator path back to the unset state. The affected
// user must set a new PIN before the gate accepts anything again.
func (s *PinServiceImpl) Reset(ctx context.Context, userID uuid.UUID, adminID uuid.UUID) error {
	rec, err := s.pinRepo.GetByUserID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get pin record: %w", err))
	}
	if rec == nil {
		return apperror.ErrNotFound("pin record")
	}

	adminStr := adminID.String()
	rec.PinHash = nil
	rec.MustSetPin = true
	rec.ResetBy = &adminStr
	rec.LastUpdated = time.Now().UTC()
	if err := s.pinRepo.Update(ctx, rec); err != nil {
		return apperror.InternalError(fmt.Errorf("reset pin: %w", err))
	}

	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		Action:       domain.AuditActionPinReset,
		ResourceType: "pin",
		ResourceID:   userID.String(),
		Details:      fmt.Sprintf(`{"admin_id":%q}`, adminStr),
		CreatedAt:    rec.LastUpdated,
	})
	s.notifier.Notify(ctx, userID, domain.EventPinChanged, map[string]any{
		"reset_by":   adminStr,
		"changed_at": rec.LastUpdated.Format(time.RFC3339),
	})

	s.log.Info().
		Str("user_id", userID.String()).
		Str("admin_id", adminStr).
		Msg("transfer PIN reset by administrator")
	return nil
}

// IsConfigured reports whether a usable PIN is stored.
func (s *PinServiceImpl) IsConfigured(ctx context.Context, userID uuid.UUID) (bool, error) {
	rec, err := s.pinRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("get pin record: %w", err))
	}
	return rec != nil && rec.IsConfigured(), nil
}

// MustSetPin reports whether the user still has to choose a PIN.
func (s *PinServiceImpl) MustSetPin(ctx context.Context, userID uuid.UUID) (bool, error) {
	rec, err := s.pinRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("get pin record: %w", err))
	}
	if rec == nil {
		return true, nil
	}
	return rec.MustSetPin, nil
}
