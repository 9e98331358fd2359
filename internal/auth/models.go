package auth

// User is an authenticated principal. The service ships with a single
// demo user provisioned from the environment; the model carries only what
// token issuance needs.
type User struct {
	Email        string
	PasswordHash string
}

// TokenResponse is the OAuth2-style payload returned by the token endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LoginRequest carries form-encoded credentials, following the OAuth2
// password-grant field names.
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}
