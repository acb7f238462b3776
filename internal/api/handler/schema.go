package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Username    string `json:"username"     validate:"required,min=3,max=32"`
	Password    string `json:"password"     validate:"required,min=6"`
	Pin         string `json:"pin"          validate:"required,len=4,numeric"`
	Role        string `json:"role"         validate:"required,oneof=client vendor"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
}

type loginRequest struct {
	Strategy string `json:"strategy" validate:"omitempty,oneof=directory hosted"`
	Username string `json:"username"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type verifyPinRequest struct {
	Username string `json:"username" validate:"required"`
	Pin      string `json:"pin"      validate:"required"`
}

type resetPasswordRequest struct {
	Username    string `json:"username"     validate:"required"`
	Pin         string `json:"pin"          validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type logoutRequest struct {
	SessionToken string `json:"session_token,omitempty"`
	HostedToken  string `json:"hosted_token,omitempty"`
}

type verifyEmailRequest struct {
	Username string `json:"username" validate:"required"`
}

type resendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resolveRequest struct {
	// AccessToken is the hosted-provider token lifted from the OAuth
	// callback fragment, when present.
	AccessToken string `json:"access_token,omitempty"`
	// SessionToken is the directory session marker, when present.
	SessionToken string `json:"session_token,omitempty"`
	CurrentPath  string `json:"current_path"`
	// State is the OAuth state the pending account type was cached under.
	State   string `json:"state,omitempty"`
	Version uint64 `json:"version,omitempty"`
}

// --- Response types ---

type principalResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username,omitempty"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Role        string    `json:"role"`
	CompanyName string    `json:"company_name,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

type authResponse struct {
	AccessToken  string             `json:"access_token,omitempty"`
	SessionToken string             `json:"session_token,omitempty"`
	User         *principalResponse `json:"user,omitempty"`
	Redirect     string             `json:"redirect,omitempty"`
}

type resolveResponse struct {
	State       string             `json:"state"`
	User        *principalResponse `json:"user,omitempty"`
	AccessToken string             `json:"access_token,omitempty"`
	Redirect    string             `json:"redirect,omitempty"`
	Version     uint64             `json:"version"`
}

type oauthStartResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}
