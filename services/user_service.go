package services

import (
	"context"
	"errors"

	"resqlink/models"
	"resqlink/repositories"
	"resqlink/utils"
)

type UserService struct {
	userRepo *repositories.UserRepository
}

func NewUserService(userRepo *repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (us *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := us.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewUserNotFoundError()
		}
		return nil, utils.NewDatabaseError("get user", err)
	}
	return user, nil
}

// UpdateFCMToken registers the device push token for the user. Tokens rotate
// whenever the client reinstalls or refreshes, so this overwrites
// unconditionally.
func (us *UserService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	err := us.userRepo.UpdateFCMToken(ctx, userID, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NewUserNotFoundError()
		}
		return utils.NewDatabaseError("update fcm token", err)
	}
	return nil
}

func (us *UserService) UpdateAvailability(ctx context.Context, userID string, isAvailable bool) (*models.User, error) {
	user, err := us.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewUserNotFoundError()
		}
		return nil, utils.NewDatabaseError("get user", err)
	}

	if !user.IsResponder() {
		return nil, utils.NewForbiddenError("Only volunteers can set availability")
	}

	if err := us.userRepo.UpdateAvailability(ctx, userID, isAvailable); err != nil {
		return nil, utils.NewDatabaseError("update availability", err)
	}

	user.IsAvailable = isAvailable
	return user, nil
}
