package dto

type LoginRequest struct {
	Name       string `json:"name" validate:"required"`
	AccessCode string `json:"access_code" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
