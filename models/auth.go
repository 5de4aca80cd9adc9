package models

type RegisterRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	UserType      string `json:"userType" validate:"omitempty,oneof=user volunteer admin"`
	ContactNumber string `json:"contactNumber,omitempty" validate:"omitempty,phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"userType,omitempty" validate:"omitempty,oneof=user volunteer admin"`
}

type GoogleAuthRequest struct {
	Credential string `json:"credential" validate:"required"`
	UserType   string `json:"userType,omitempty" validate:"omitempty,oneof=user volunteer admin"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
