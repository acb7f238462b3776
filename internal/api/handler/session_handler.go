package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vendorhub/marketplace-auth/internal/api/metrics"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

// EventDispatcher is the interface the handler uses to enqueue
// provider-pushed auth-state-change events.
type EventDispatcher interface {
	Enqueue(in ports.ResolveInput)
}

// SessionHandler exposes session resolution and the OAuth entry point.
type SessionHandler struct {
	auth       ports.AuthService
	dispatcher EventDispatcher
}

func NewSessionHandler(auth ports.AuthService, dispatcher EventDispatcher) *SessionHandler {
	return &SessionHandler{auth: auth, dispatcher: dispatcher}
}

// Resolve runs the mount-time session resolution: it determines the current
// principal from whatever tokens the caller holds, settles the role claim,
// and returns the redirect decision.
//
// @Summary      Resolve the current session
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      resolveRequest  true  "Tokens and current path"
// @Success      200   {object}  resolveResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/session/resolve [post]
func (h *SessionHandler) Resolve(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	start := time.Now()
	result, resolution, err := h.auth.Resolve(c.Request().Context(), ports.ResolveInput{
		HostedAccessToken: req.AccessToken,
		FallbackToken:     req.SessionToken,
		CurrentPath:       req.CurrentPath,
		Subject:           req.State,
		Version:           req.Version,
	})
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		return err
	}

	outcome := string(resolution.State)
	metrics.ResolutionsTotal.WithLabelValues(outcome).Inc()
	metrics.ResolutionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, resolveResponse{
		State:       outcome,
		User:        toPrincipalResponse(resolution.Principal),
		AccessToken: result.AccessToken,
		Redirect:    resolution.Redirect,
		Version:     resolution.Version,
	})
}

// ReceiveEvent accepts a provider-pushed auth-state-change notification and
// hands it to the sharded dispatcher, which serializes it per subject.
//
// @Summary      Ingest an auth-state-change event
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      resolveRequest  true  "Auth state event"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/session/events [post]
func (h *SessionHandler) ReceiveEvent(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.State == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "state is required")
	}

	h.dispatcher.Enqueue(ports.ResolveInput{
		HostedAccessToken: req.AccessToken,
		FallbackToken:     req.SessionToken,
		CurrentPath:       req.CurrentPath,
		Subject:           req.State,
		Version:           req.Version,
	})
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "event accepted"})
}

// StartOAuth begins an OAuth sign-in: it returns the provider authorization
// URL and caches the pre-selected account type under the state value.
//
// @Summary      Start an OAuth sign-in
// @Tags         auth
// @Produce      json
// @Param        provider      path      string  true   "OAuth provider (google or apple)"
// @Param        account_type  query     string  false  "Pre-selected account type (client or vendor)"
// @Success      200   {object}  oauthStartResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/auth/oauth/{provider} [get]
func (h *SessionHandler) StartOAuth(c echo.Context) error {
	start, err := h.auth.StartOAuth(c.Request().Context(), c.Param("provider"), c.QueryParam("account_type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, oauthStartResponse{URL: start.URL, State: start.State})
}

// Current returns the principal claims behind the caller's access token.
//
// @Summary      Current principal
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  principalResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	subject, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	username, _ := c.Get("username").(string)
	return c.JSON(http.StatusOK, principalResponse{
		ID:       subject,
		Username: username,
		Role:     role,
	})
}
