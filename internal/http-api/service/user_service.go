package service

import (
	"context"
	"errors"
	"regexp"

	"gorm.io/gorm"

	"titlehub/internal/http-api/dto"
	"titlehub/internal/http-api/models"
	"titlehub/internal/http-api/repository"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// "me" is routed to the caller's own profile and can never be a username.
const reservedUsername = "me"

func validateUsername(username string) *ValidationError {
	if username == reservedUsername {
		return newValidationError("username", "username 'me' is reserved")
	}
	if !usernamePattern.MatchString(username) {
		return newValidationError("username", "username may only contain letters, digits and @/./+/-/_")
	}
	return nil
}

type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	Create(ctx context.Context, in dto.CreateUserDTO) (*dto.UserResponse, error)
	GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
	// UpdateSelf edits the caller's own profile. A role change in the
	// request is silently overridden, never rejected.
	UpdateSelf(ctx context.Context, actor *models.User, in dto.UpdateUserDTO) (*dto.UserResponse, error)
}

type userService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
}

func NewUserService(userRepo repository.UserRepository, tokenRepo repository.RefreshTokenRepository) UserService {
	return &userService{userRepo: userRepo, tokenRepo: tokenRepo}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.UserFromModel(&users[i]))
	}
	return dto.NewPaginated(resp, total, page, pageSize), nil
}

func (s *userService) Create(ctx context.Context, in dto.CreateUserDTO) (*dto.UserResponse, error) {
	if verr := validateUsername(in.Username); verr != nil {
		return nil, verr
	}
	if err := s.checkCollisions(ctx, in.Username, in.Email, 0); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("username", "user already exists")
		}
		return nil, err
	}

	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, user, in, false)
}

func (s *userService) UpdateSelf(ctx context.Context, actor *models.User, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	return s.applyUpdate(ctx, actor, in, true)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	// Revoke outstanding refresh tokens so the deleted account cannot
	// mint new access tokens.
	if err := s.tokenRepo.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, user.ID)
}

func (s *userService) findUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) applyUpdate(ctx context.Context, user *models.User, in dto.UpdateUserDTO, self bool) (*dto.UserResponse, error) {
	username := user.Username
	if in.Username != nil {
		username = *in.Username
	}
	email := user.Email
	if in.Email != nil {
		email = *in.Email
	}

	if in.Username != nil {
		if verr := validateUsername(username); verr != nil {
			return nil, verr
		}
	}
	if in.Username != nil || in.Email != nil {
		if err := s.checkCollisions(ctx, username, email, user.ID); err != nil {
			return nil, err
		}
	}

	user.Username = username
	user.Email = email
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil && !self {
		user.Role = *in.Role
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("username", "user already exists")
		}
		return nil, err
	}

	resp := dto.UserFromModel(user)
	return &resp, nil
}

// checkCollisions rejects a username or email that already belongs to a
// different record. excludeID skips the record being edited.
func (s *userService) checkCollisions(ctx context.Context, username, email string, excludeID int64) error {
	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		if existing.ID != excludeID && existing.Username != username {
			return newValidationError("email", "email already in use")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if existing, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		if existing.ID != excludeID && existing.Email != email {
			return newValidationError("username", "username already in use")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}
