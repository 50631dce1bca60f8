package service

import (
	"context"
	"errors"
	"log"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

// UserService covers admin account management plus the /users/me
// self-service endpoints. Self-service can never change the role.
type UserService interface {
	List(ctx context.Context, actor permissions.Actor, search string, page, pageSize int) (*dto.PaginatedUserResponse, error)
	Create(ctx context.Context, actor permissions.Actor, in dto.CreateUserDTO) (*dto.UserResponse, error)
	GetByUsername(ctx context.Context, actor permissions.Actor, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, actor permissions.Actor, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, username string) error
	Me(ctx context.Context, actor permissions.Actor) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, actor permissions.Actor, in dto.UpdateUserDTO) (*dto.UserResponse, error)
}

type userService struct {
	userRepo   repository.UserRepository
	reviewRepo repository.ReviewRepository
	ratings    RatingService
}

func NewUserService(userRepo repository.UserRepository, reviewRepo repository.ReviewRepository, ratings RatingService) UserService {
	return &userService{userRepo: userRepo, reviewRepo: reviewRepo, ratings: ratings}
}

func (s *userService) List(ctx context.Context, actor permissions.Actor, search string, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	if !permissions.CanManageUsers(actor) {
		return nil, ErrPermissionDenied
	}
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPaginatedUserResponse(responses, int(total), page, pageSize), nil
}

func (s *userService) Create(ctx context.Context, actor permissions.Actor, in dto.CreateUserDTO) (*dto.UserResponse, error) {
	if !permissions.CanManageUsers(actor) {
		return nil, ErrPermissionDenied
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if err := validateRole(role); err != nil {
		return nil, err
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
		if repository.IsDuplicateKey(err) {
			return nil, ErrNameInUse
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) GetByUsername(ctx context.Context, actor permissions.Actor, username string) (*dto.UserResponse, error) {
	if !permissions.CanManageUsers(actor) {
		return nil, ErrPermissionDenied
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor permissions.Actor, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	if !permissions.CanManageUsers(actor) {
		return nil, ErrPermissionDenied
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.applyPatch(user, in, true); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

// Delete removes the account and its reviews, then refreshes the rating
// of every title the user had reviewed.
func (s *userService) Delete(ctx context.Context, actor permissions.Actor, username string) error {
	if !permissions.CanManageUsers(actor) {
		return ErrPermissionDenied
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	titleIDs, err := s.reviewRepo.TitleIDsByAuthor(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	for _, titleID := range titleIDs {
		if err := s.ratings.Recompute(ctx, titleID); err != nil {
			log.Printf("rating recompute for title %d after user delete: %v", titleID, err)
		}
	}
	return nil
}

func (s *userService) Me(ctx context.Context, actor permissions.Actor) (*dto.UserResponse, error) {
	if !actor.Authenticated {
		return nil, ErrPermissionDenied
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

// UpdateMe applies the patch to the caller's own profile. Any role in
// the payload is silently dropped.
func (s *userService) UpdateMe(ctx context.Context, actor permissions.Actor, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	if !actor.Authenticated {
		return nil, ErrPermissionDenied
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.applyPatch(user, in, false); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) applyPatch(user *models.User, in dto.UpdateUserDTO, allowRole bool) error {
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil && allowRole {
		if err := validateRole(*in.Role); err != nil {
			return err
		}
		user.Role = *in.Role
	}
	return nil
}
