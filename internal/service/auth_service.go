package service

import (
	"context"
	"errors"
	"time"

	"github.com/roadshare/carpool-backend/internal/auth"
	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/repository"
	"github.com/roadshare/carpool-backend/internal/utils"
	"github.com/roadshare/carpool-backend/pkg/logger"
)

// ErrInvalidCredentials is returned on login with an unknown email or a
// wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the account persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, firstName, lastName, phoneNumber string, birthday time.Time) error
	UpdatePassword(ctx context.Context, email, password string, cost int) error
}

// AuthService covers registration, login and account maintenance. Login is
// throttled per email by the attempt tracker.
type AuthService struct {
	users        UserStore
	tracker      *auth.Tracker
	verification *VerificationService
	jwtSecret    string
	accessTTLMin int
	bcryptCost   int
	log          logger.Logger
	now          func() time.Time
}

func NewAuthService(users UserStore, tracker *auth.Tracker, verification *VerificationService,
	jwtSecret string, accessTTLMin, bcryptCost int, log logger.Logger) *AuthService {
	return &AuthService{
		users:        users,
		tracker:      tracker,
		verification: verification,
		jwtSecret:    jwtSecret,
		accessTTLMin: accessTTLMin,
		bcryptCost:   bcryptCost,
		log:          log,
		now:          time.Now,
	}
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Birthday    string // YYYY-MM-DD
}

// Register validates the input, creates the account and triggers the
// verification email. A failure to issue the code does not undo the
// registration; the user can request a resend.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if err := utils.ValidateEmail(in.Email); err != nil {
		return model.User{}, err
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return model.User{}, err
	}
	if err := utils.ValidatePhoneNumber(in.PhoneNumber); err != nil {
		return model.User{}, err
	}
	birthday, err := utils.ParseBirthday(in.Birthday, s.now())
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Birthday:    birthday,
	}
	id, err := s.users.Create(ctx, &u, in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u.ID = id
	s.log.Info("user registered", logger.Uint64("user_id", id))

	if err := s.verification.SendCode(ctx, in.Email); err != nil {
		s.log.Warn("verification code send failed after registration",
			logger.Uint64("user_id", id), logger.Error(err))
	}
	return u, nil
}

// Login checks the credentials and returns a signed access token. Failed
// attempts count against the email's budget and a successful login clears
// it; once the budget is spent auth.ErrTooManyAttempts comes back even for
// the correct password.
func (s *AuthService) Login(ctx context.Context, email, password string) (utils.AccessToken, model.User, error) {
	if err := s.tracker.Allow(ctx, email); err != nil {
		return utils.AccessToken{}, model.User{}, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) || (err == nil && !utils.VerifyPassword(u.PasswordHash, password)) {
		if rerr := s.tracker.RecordFailure(ctx, email); rerr != nil {
			s.log.Warn("record login failure", logger.Error(rerr))
		}
		return utils.AccessToken{}, model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return utils.AccessToken{}, model.User{}, err
	}

	if err := s.tracker.Clear(ctx, email); err != nil {
		s.log.Warn("clear login attempts", logger.Error(err))
	}
	token, err := utils.NewAccessToken(s.jwtSecret, u.ID, u.Email, s.accessTTLMin)
	if err != nil {
		return utils.AccessToken{}, model.User{}, err
	}
	return token, u, nil
}

// ProfileInput carries the editable account fields. Empty strings leave the
// current value in place.
type ProfileInput struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Birthday    string // YYYY-MM-DD, empty to keep
}

// UpdateProfile applies partial edits to the caller's account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, in ProfileInput) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	if in.PhoneNumber != "" {
		if err := utils.ValidatePhoneNumber(in.PhoneNumber); err != nil {
			return model.User{}, err
		}
		u.PhoneNumber = in.PhoneNumber
	}
	if in.Birthday != "" {
		birthday, err := utils.ParseBirthday(in.Birthday, s.now())
		if err != nil {
			return model.User{}, err
		}
		u.Birthday = birthday
	}
	if err := s.users.UpdateProfile(ctx, u.ID, u.FirstName, u.LastName, u.PhoneNumber, u.Birthday); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ResetPassword sets a new password after consuming a valid verification
// code for the email.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}
	if err := s.verification.Consume(ctx, email, code); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, email, newPassword, s.bcryptCost); err != nil {
		return err
	}
	s.log.Info("password reset", logger.String("email", email))
	return nil
}

// GetUser fetches an account by id.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (model.User, error) {
	return s.users.GetByID(ctx, id)
}
