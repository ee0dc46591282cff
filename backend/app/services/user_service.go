package services

import (
	"errors"

	"structura/backend/app/models"
	"structura/backend/app/repo"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users      *repo.UserRepository
	workspaces *repo.WorkspaceRepository
}

func NewUserService(users *repo.UserRepository, workspaces *repo.WorkspaceRepository) *UserService {
	return &UserService{users: users, workspaces: workspaces}
}

func (s *UserService) EnsureAdmin(username, password string) error {
	count, err := s.users.CountByUsername(username)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = s.CreateUser(username, password, "admin")
	return err
}

// CreateUser registers a user together with their default workspace, which is
// where restored structures land.
func (s *UserService) CreateUser(username, password, role string) (*models.User, error) {
	if role == "" {
		role = "user"
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	user := &models.User{ID: uuid.NewString(), Username: username, PasswordHash: string(hash), Role: role}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	workspace := &models.Workspace{ID: uuid.NewString(), Name: username, OwnerID: user.ID, IsDefault: true}
	if err := s.workspaces.Create(workspace); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ValidateCredentials(username, password string) (*models.User, error) {
	u, err := s.users.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errors.New("invalid credentials")
	}
	return u, nil
}
