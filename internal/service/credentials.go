package service

import (
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/model"
	"campusshare/api/pkg/security"
	"campusshare/api/pkg/util"
	"campusshare/api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
	Name      string `json:"name" form:"name"`
	StudentID string `json:"studentId" form:"studentId"`
	Email     string `json:"email" form:"email"`
	Course    string `json:"course" form:"course"`
	Year      string `json:"year" form:"year"`
}

func (in *RegisterInput) validate() error {
	if err := validators.UsernameValidator(in.Username); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	if err := validators.RequiredFields(
		"name", in.Name,
		"student ID", in.StudentID,
		"course", in.Course,
		"year", in.Year,
	); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	if err := validators.EmailValidator(in.Email); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	return nil
}

// CredentialStore owns the users table
type CredentialStore struct {
	db     *gorm.DB
	argon  *security.ArgonHash
	verify func(password, encoded string) (bool, error)

	// Hash of a random password, checked when a username doesn't exist so
	// that lookups for unknown users cost the same as for real ones
	dummyOnce sync.Once
	dummyHash string
	dummyErr  error
}

func NewCredentialStore(db *gorm.DB, argon *security.ArgonHash) *CredentialStore {
	return &CredentialStore{
		db:     db,
		argon:  argon,
		verify: argon.VerifyPasswd,
	}
}

func (s *CredentialStore) dummy() (string, error) {
	s.dummyOnce.Do(func() {
		secret, err := util.GenerateToken(32)
		if err != nil {
			s.dummyErr = err
			return
		}

		s.dummyHash, s.dummyErr = s.argon.GenerateFromPassword(secret)
	})

	return s.dummyHash, s.dummyErr
}

// Register creates a new user. The unique indexes on username, email and
// student ID decide about duplicates, so two racing registrations can't both win.
func (s *CredentialStore) Register(ctx context.Context, in *RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.StudentID = strings.TrimSpace(in.StudentID)

	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := s.argon.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		StudentID:    in.StudentID,
		Email:        in.Email,
		Course:       in.Course,
		Year:         in.Year,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.ErrDuplicateKey
		}

		return nil, fmt.Errorf("%w: failed to create user, %v", apperr.ErrStoreFailure, err)
	}

	return user, nil
}

// Authenticate returns the same error for an unknown username and a wrong
// password, and both cost one hash verification, so neither the response nor
// its timing tells which usernames exist
func (s *CredentialStore) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	var user model.User

	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if hash, err := s.dummy(); err == nil {
				_, _ = s.verify(password, hash)
			}

			return nil, apperr.ErrInvalidCredentials
		}

		return nil, fmt.Errorf("%w: failed to look up user, %v", apperr.ErrStoreFailure, err)
	}

	ok, err := s.verify(password, user.PasswordHash)
	if err != nil {
		// A corrupt hash is our problem, but the caller still only learns that login failed
		zap.L().Error("Failed to verify password", zap.Uint("userID", user.ID), zap.Error(err))
		return nil, apperr.ErrInvalidCredentials
	}

	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	return &user, nil
}

func (s *CredentialStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User

	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}

		return nil, fmt.Errorf("%w: failed to look up user, %v", apperr.ErrStoreFailure, err)
	}

	return &user, nil
}

var demoUser = RegisterInput{
	Username:  "student123",
	Password:  "password123",
	Name:      "John Doe",
	StudentID: "STU2024001",
	Email:     "john.doe@uni.edu",
	Course:    "Computer Science",
	Year:      "2024",
}

// SeedDemo creates the demo account if nobody registered that username yet
func (s *CredentialStore) SeedDemo(ctx context.Context) error {
	var count int64

	err := s.db.WithContext(ctx).
		Model(model.User{}).
		Where("username = ?", demoUser.Username).
		Count(&count).
		Error
	if err != nil {
		return fmt.Errorf("failed to check for demo user, %w", err)
	}

	if count > 0 {
		return nil
	}

	in := demoUser
	if _, err := s.Register(ctx, &in); err != nil {
		if errors.Is(err, apperr.ErrDuplicateKey) {
			return nil
		}

		return fmt.Errorf("failed to create demo user, %w", err)
	}

	zap.L().Info("Demo user created", zap.String("username", demoUser.Username))
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// Not every driver translates constraint errors
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
