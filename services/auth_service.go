package services

import (
	"context"
	"errors"
	"time"

	"resqlink/models"
	"resqlink/repositories"
	"resqlink/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"google.golang.org/api/idtoken"
)

// GoogleTokenVerifier validates an ID token and returns its claims. The
// production implementation wraps the Google token validator; tests inject
// a stub.
type GoogleTokenVerifier func(ctx context.Context, credential string) (map[string]interface{}, error)

type AuthService struct {
	userRepo        *repositories.UserRepository
	jwtService      *utils.JWTService
	passwordService *utils.PasswordService
	verifyGoogle    GoogleTokenVerifier
}

func NewAuthService(
	userRepo *repositories.UserRepository,
	jwtService *utils.JWTService,
	passwordService *utils.PasswordService,
	googleClientID string,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		jwtService:      jwtService,
		passwordService: passwordService,
		verifyGoogle: func(ctx context.Context, credential string) (map[string]interface{}, error) {
			payload, err := idtoken.Validate(ctx, credential, googleClientID)
			if err != nil {
				return nil, err
			}
			return payload.Claims, nil
		},
	}
}

func (as *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	existing, err := as.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewDatabaseError("check existing user", err)
	}
	if existing != nil {
		return nil, utils.NewConflictError("An account with this email already exists")
	}

	hashedPassword, err := as.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, utils.NewInternalError("Failed to process password")
	}

	userType := req.UserType
	if userType == "" {
		userType = models.UserTypeUser
	}

	user := &models.User{
		Name:          req.Name,
		Email:         req.Email,
		Password:      hashedPassword,
		UserType:      userType,
		ContactNumber: req.ContactNumber,
		IsAvailable:   userType == models.UserTypeVolunteer,
		LastSeen:      time.Now(),
	}

	if err := as.userRepo.Create(ctx, user); err != nil {
		return nil, utils.NewDatabaseError("create user", err)
	}

	logrus.Infof("User registered: %s (%s)", user.Email, user.UserType)
	return as.issueTokens(user)
}

// Login authenticates by email and password. When the client declares which
// portal it is logging into, the account type must match; a volunteer cannot
// sign in through the admin portal with valid credentials.
func (as *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := as.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewInvalidCredentialsError()
		}
		return nil, utils.NewDatabaseError("get user", err)
	}

	if user.Password == "" || !as.passwordService.ComparePassword(user.Password, req.Password) {
		return nil, utils.NewInvalidCredentialsError()
	}

	if !user.IsActive {
		return nil, utils.NewForbiddenError("Account is deactivated")
	}

	if req.UserType != "" && user.UserType != req.UserType {
		return nil, utils.NewForbiddenError("Account type does not match")
	}

	if err := as.userRepo.UpdateLastSeen(ctx, user.ID.Hex()); err != nil {
		logrus.Warnf("Failed to update last seen for %s: %v", user.Email, err)
	}

	return as.issueTokens(user)
}

// GoogleAuth signs a user in with a Google ID token, creating the account on
// first sight.
func (as *AuthService) GoogleAuth(ctx context.Context, req *models.GoogleAuthRequest) (*models.AuthResponse, error) {
	claims, err := as.verifyGoogle(ctx, req.Credential)
	if err != nil {
		logrus.Warnf("Google token validation failed: %v", err)
		return nil, utils.NewUnauthorizedError("Invalid Google credential")
	}

	googleID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	if googleID == "" || email == "" {
		return nil, utils.NewUnauthorizedError("Invalid Google credential")
	}

	user, err := as.userRepo.GetByGoogleID(ctx, googleID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewDatabaseError("get user", err)
	}

	if user == nil {
		// Link by email when the account predates Google sign-in.
		user, err = as.userRepo.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewDatabaseError("get user", err)
		}
		if user != nil {
			if uerr := as.userRepo.Update(ctx, user.ID.Hex(), bson.M{
				"googleId":       googleID,
				"profilePicture": picture,
			}); uerr != nil {
				logrus.Warnf("Failed to link Google account for %s: %v", email, uerr)
			}
			user.GoogleID = googleID
			user.ProfilePicture = picture
		}
	}

	if user == nil {
		userType := req.UserType
		if userType == "" {
			userType = models.UserTypeUser
		}
		user = &models.User{
			Name:           name,
			Email:          email,
			UserType:       userType,
			GoogleID:       googleID,
			ProfilePicture: picture,
			IsAvailable:    userType == models.UserTypeVolunteer,
			LastSeen:       time.Now(),
		}
		if err := as.userRepo.Create(ctx, user); err != nil {
			return nil, utils.NewDatabaseError("create user", err)
		}
		logrus.Infof("User registered via Google: %s", user.Email)
	}

	if !user.IsActive {
		return nil, utils.NewForbiddenError("Account is deactivated")
	}

	return as.issueTokens(user)
}

func (as *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	pair, err := as.jwtService.RefreshToken(refreshToken)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid refresh token")
	}
	return pair, nil
}

func (as *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := as.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewUserNotFoundError()
		}
		return nil, utils.NewDatabaseError("get user", err)
	}
	return user, nil
}

func (as *AuthService) issueTokens(user *models.User) (*models.AuthResponse, error) {
	pair, err := as.jwtService.GenerateTokenPair(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return nil, utils.NewInternalError("Failed to generate tokens")
	}

	return &models.AuthResponse{
		User:         *user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
