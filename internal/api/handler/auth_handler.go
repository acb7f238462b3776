package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vendorhub/marketplace-auth/internal/api/metrics"
	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

// AuthHandler exposes the auth operations the old serverless function
// multiplexed on a path field, one route each. PIN verification and
// password reset are directory-only operations and bypass the façade.
type AuthHandler struct {
	auth      ports.AuthService
	directory ports.DirectoryService
}

func NewAuthHandler(auth ports.AuthService, directory ports.DirectoryService) *AuthHandler {
	return &AuthHandler{auth: auth, directory: directory}
}

// Register creates a new directory account and signs the caller in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Pin:         req.Pin,
		Role:        req.Role,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(result.Principal.Role).Inc()
	return c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login authenticates via the directory or the hosted provider.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.auth.Login(c.Request().Context(), ports.LoginInput{
		Strategy: req.Strategy,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginStrategy(req), "error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(loginStrategy(req), "ok").Inc()
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// VerifyPin checks the secondary factor for a directory account.
//
// @Summary      Verify account PIN
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyPinRequest  true  "Username and PIN"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/auth/verify-pin [post]
func (h *AuthHandler) VerifyPin(c echo.Context) error {
	var req verifyPinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.directory.VerifyPin(c.Request().Context(), req.Username, req.Pin); err != nil {
		metrics.PinChecksTotal.WithLabelValues(pinResult(err)).Inc()
		return err
	}

	metrics.PinChecksTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// ResetPassword replaces the password after a PIN check.
//
// @Summary      Reset password with PIN
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Username, PIN, new password"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.directory.ResetPassword(c.Request().Context(), req.Username, req.Pin, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// Logout tears down the caller's sessions.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      logoutRequest  true  "Session tokens to invalidate"
// @Success      200   {object}  statusResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.auth.Logout(c.Request().Context(), req.SessionToken, req.HostedToken); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// VerifyEmail marks a directory account as verified.
//
// @Summary      Verify email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyEmailRequest  true  "Username"
// @Success      200   {object}  statusResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.auth.VerifyEmail(c.Request().Context(), req.Username); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// ResendVerification asks the hosted provider to re-send its verification mail.
//
// @Summary      Resend verification mail
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resendVerificationRequest  true  "Email"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req resendVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.auth.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "verification mail requested"})
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{
		AccessToken:  r.AccessToken,
		SessionToken: r.SessionToken,
		User:         toPrincipalResponse(r.Principal),
		Redirect:     r.Redirect,
	}
}

func toPrincipalResponse(p *domain.Principal) *principalResponse {
	if p == nil {
		return nil
	}
	return &principalResponse{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Role:        p.Role,
		CompanyName: p.CompanyName,
		IsVerified:  p.IsVerified,
		CreatedAt:   p.CreatedAt,
	}
}

func loginStrategy(req loginRequest) string {
	if req.Strategy != "" {
		return req.Strategy
	}
	if req.Email != "" {
		return domain.StrategyHosted
	}
	return domain.StrategyDirectory
}

func pinResult(err error) string {
	if err == domain.ErrInvalidPin {
		return "mismatch"
	}
	return "format"
}
