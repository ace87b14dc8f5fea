package service

import (
	"context"
	"time"

	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/queue"
	"github.com/roadshare/carpool-backend/internal/utils"
	"github.com/roadshare/carpool-backend/pkg/logger"
)

// CodeStore is the verification code persistence surface.
type CodeStore interface {
	Upsert(ctx context.Context, code *model.VerificationCode) error
	Get(ctx context.Context, email string) (model.VerificationCode, error)
	Delete(ctx context.Context, email string) error
}

// AccountApprover marks accounts as email-verified.
type AccountApprover interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	SetApproved(ctx context.Context, email string, approved bool) error
}

// VerificationService issues and checks one-time email codes. Only a bcrypt
// hash of the code is stored; the plaintext goes to the mail worker over
// the broker. A resend replaces the previous code, and any verify attempt
// consumes the stored code whether it matches or not.
type VerificationService struct {
	codes      CodeStore
	users      AccountApprover
	events     EventPublisher
	bcryptCost int
	log        logger.Logger
	now        func() time.Time
}

func NewVerificationService(codes CodeStore, users AccountApprover, events EventPublisher,
	bcryptCost int, log logger.Logger) *VerificationService {
	return &VerificationService{
		codes:      codes,
		users:      users,
		events:     events,
		bcryptCost: bcryptCost,
		log:        log,
		now:        time.Now,
	}
}

// SendCode generates a fresh code for an existing account, stores its hash
// and hands the plaintext to the mail queue.
func (s *VerificationService) SendCode(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}
	code, err := utils.NewVerificationCode()
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(code, s.bcryptCost)
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.codes.Upsert(ctx, &model.VerificationCode{
		Email:    email,
		CodeHash: hash,
		SentAt:   now,
	}); err != nil {
		return err
	}

	ev := queue.NewVerificationEmailEvent(email, code, now)
	_ = s.events.Publish(ctx, queue.VerificationQueueName, ev)
	s.log.Info("verification code issued", logger.String("email", email))
	return nil
}

// Consume checks the submitted code against the stored one and deletes it
// regardless of the outcome. Expiry is checked before the comparison.
func (s *VerificationService) Consume(ctx context.Context, email, code string) error {
	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		return err
	}
	// Single use: the code is gone after this attempt either way.
	defer func() { _ = s.codes.Delete(ctx, email) }()

	if stored.Expired(s.now()) {
		return model.ErrCodeExpired
	}
	if !utils.VerifyPassword(stored.CodeHash, code) {
		return model.ErrCodeMismatch
	}
	return nil
}

// Verify consumes the code and, on success, marks the account approved.
func (s *VerificationService) Verify(ctx context.Context, email, code string) error {
	if err := s.Consume(ctx, email, code); err != nil {
		return err
	}
	if err := s.users.SetApproved(ctx, email, true); err != nil {
		return err
	}
	s.log.Info("account verified", logger.String("email", email))
	return nil
}
