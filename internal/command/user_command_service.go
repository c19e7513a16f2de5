package command

import (
	"errors"
	"time"

	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/BillixOfficial/Billix-sub006/shared/utils"
)

type userWriteStore interface {
	Create(*models.User) error
	GetByEmail(string) (*models.User, error)
}

type trustBootstrapper interface {
	EnsureExists(userID string) error
}

// UserCommandService handles registration. Every new user gets a starter-tier
// trust row at creation so the first swap attempt never races on it.
type UserCommandService struct {
	users userWriteStore
	trust trustBootstrapper
	now   func() time.Time
}

func NewUserCommandService(users *repository.UserRepository, trust *repository.TrustWriteRepository) *UserCommandService {
	return &UserCommandService{users: users, trust: trust, now: time.Now}
}

func (s *UserCommandService) CreateUser(cmd cqrs.CreateUserCommand) (*models.User, error) {
	if _, err := s.users.GetByEmail(cmd.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Name:         cmd.Name,
		Email:        cmd.Email,
		PasswordHash: hash,
		PhoneNumber:  cmd.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	if err := s.trust.EnsureExists(user.ID); err != nil {
		return nil, err
	}
	return user, nil
}
