package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-auth/internal/model"
	"github.com/iliyamo/ecommerce-auth/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth   *service.AuthService
	Google *service.GoogleService

	// ClientRedirectURL is the frontend URL the Google callback
	// redirects to, carrying either tokens or an error message.
	ClientRedirectURL string
}

func NewAuthHandler(auth *service.AuthService, google *service.GoogleService, clientRedirectURL string) *AuthHandler {
	return &AuthHandler{Auth: auth, Google: google, ClientRedirectURL: clientRedirectURL}
}

// ----- DTOs -----

type sendOTPReq struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"` // REGISTER | FORGOT_PASSWORD
}
type registerReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name"`
	PhoneNumber     string `json:"phoneNumber"`
	Code            string `json:"code"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}
type forgotPasswordReq struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// userResp echoes a created user without its secret fields.
type userResp struct {
	ID          uint64    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	Status      string    `json:"status"`
	RoleID      uint64    `json:"roleId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SendOTP requests a one-time code for registration or password reset.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "valid email required"})
	}
	purpose := strings.ToUpper(strings.TrimSpace(req.Purpose))
	if purpose != model.CodePurposeRegister && purpose != model.CodePurposeForgotPassword {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "purpose must be REGISTER or FORGOT_PASSWORD"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Auth.SendOTP(ctx, req.Email, purpose); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Sent OTP successfully"})
}

// Register creates a user gated by a REGISTER code.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.Code == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email/password/code required"})
	}
	// Password confirmation is a transport concern; the core never sees it.
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "passwords do not match"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	user, err := h.Auth.Register(ctx, req.Email, req.Password, req.Name, req.PhoneNumber, req.Code)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, userResp{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		Status:      user.Status,
		RoleID:      user.RoleID,
		CreatedAt:   user.CreatedAt,
	})
}

// Login verifies credentials and returns a fresh token pair bound to a
// new device record.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	pair, err := h.Auth.Login(ctx, req.Email, req.Password, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh rotates a refresh token and returns the replacement pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken), c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout revokes a refresh token and deactivates its device. Calling it
// twice with the same token fails the second time.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successfully"})
}

// ForgotPassword sets a new password gated by a FORGOT_PASSWORD code.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email/code/newPassword required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Auth.ForgotPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Change password successfully"})
}

// GoogleLink returns the provider authorization URL with the caller's
// client context folded into the state parameter.
func (h *AuthHandler) GoogleLink(c echo.Context) error {
	u, err := h.Google.AuthorizationURL(c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build authorization url failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": u})
}

// GoogleCallback completes federated login. Success and failure both
// redirect to the frontend, which reads tokens or an error message from
// the query string.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	pair, err := h.Google.Callback(ctx, c.QueryParam("code"), c.QueryParam("state"))
	if err != nil {
		msg := url.QueryEscape("Something went wrong when logging in with Google, please try again")
		return c.Redirect(http.StatusFound, fmt.Sprintf("%s?errorMessage=%s", h.ClientRedirectURL, msg))
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("%s?accessToken=%s&refreshToken=%s",
		h.ClientRedirectURL, url.QueryEscape(pair.AccessToken), url.QueryEscape(pair.RefreshToken)))
}

// Me is a simple protected endpoint echoing the access token's claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   c.Get("user_id"),
		"role":      c.Get("role"),
		"device_id": c.Get("device_id"),
	})
}

// reqContext bounds handler work with a timeout, detached from but
// derived from the request context.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// domainError maps a service error to its transport response. Unknown
// errors surface as a generic 500 so internals never leak.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": service.ErrInvalidCredentials.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": service.ErrUnauthorized.Error()})
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": service.ErrEmailAlreadyExists.Error()})
	case errors.Is(err, service.ErrEmailNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": service.ErrEmailNotFound.Error()})
	case errors.Is(err, service.ErrInvalidCode):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": service.ErrInvalidCode.Error()})
	case errors.Is(err, service.ErrCodeExpired):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": service.ErrCodeExpired.Error()})
	case errors.Is(err, service.ErrDeliveryFailed):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": service.ErrDeliveryFailed.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
