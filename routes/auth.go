package routes

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"notes-app/notes/database"
	"notes-app/notes/middleware"
	"notes-app/notes/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type credentialsForm struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Name     string `form:"name" json:"name"`
}

// AuthHandler serves the sign-in, sign-up, sign-out and email verification endpoints.
type AuthHandler struct {
	db            *database.Database
	identity      services.IdentityProvider
	welcome       services.WelcomeServiceInterface
	appURL        string
	secureCookies bool
	log           *zap.Logger
}

func NewAuthHandler(db *database.Database, identity services.IdentityProvider, welcome services.WelcomeServiceInterface, appURL string, secureCookies bool, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		db:            db,
		identity:      identity,
		welcome:       welcome,
		appURL:        strings.TrimRight(appURL, "/"),
		secureCookies: secureCookies,
		log:           log,
	}
}

// RegisterAuthRoutes mounts the auth endpoints. limit guards the credential endpoints.
func RegisterAuthRoutes(router *gin.Engine, h *AuthHandler, limit gin.HandlerFunc) {
	router.POST("/login", limit, h.Login)
	router.POST("/signup", limit, h.Signup)
	router.POST("/logout", h.Logout)
	router.GET("/auth/verify", h.Verify)
}

func loginRedirect(c *gin.Context, params url.Values) {
	target := "/login"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}

func loginError(c *gin.Context, message string) {
	loginRedirect(c, url.Values{"error": {message}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		loginError(c, "Email and password are required")
		return
	}

	session, err := h.identity.SignIn(c.Request.Context(), h.db, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			loginError(c, "Invalid email or password")
			return
		}
		_ = c.Error(err)
		loginError(c, "Sign in failed, please try again")
		return
	}

	middleware.SetSessionCookie(c, session, h.secureCookies)
	c.Redirect(http.StatusSeeOther, "/notes")
}

// Signup creates the account and sends the welcome email. A failed email never fails
// the signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		loginError(c, "Email and password are required")
		return
	}

	user, err := h.identity.CreateUser(c.Request.Context(), h.db, form.Email, form.Name, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserExists):
			loginError(c, "An account with this email already exists")
		case errors.Is(err, services.ErrInvalidInput):
			loginError(c, strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": "))
		default:
			_ = c.Error(err)
			loginError(c, "Sign up failed, please try again")
		}
		return
	}

	result := h.welcome.Send(c.Request.Context(), h.db, services.WelcomeRequest{
		Email:    user.Email,
		Name:     user.Name,
		UserID:   user.ID.String(),
		Password: form.Password,
	})
	h.log.Info("signup recorded",
		zap.String("user_id", user.ID.String()),
		zap.String("welcome_method", result.Method),
		zap.String("welcome_message", result.Message))

	loginRedirect(c, url.Values{"checkEmail": {"1"}})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if session, ok := middleware.CurrentIdentity(c); ok {
		if err := h.identity.SignOut(c.Request.Context(), session.Token); err != nil {
			h.log.Warn("sign out failed", zap.Error(err))
		}
	}
	middleware.ClearSessionCookie(c, h.secureCookies)
	c.Redirect(http.StatusSeeOther, "/login")
}

// Verify consumes a signup link, signs the user in and follows redirect_to when it
// points back at this application.
func (h *AuthHandler) Verify(c *gin.Context) {
	session, err := h.identity.VerifyEmail(c.Request.Context(), h.db, c.Query("token"))
	if err != nil {
		if !errors.Is(err, services.ErrInvalidToken) {
			_ = c.Error(err)
		}
		loginError(c, "Verification link is invalid or has expired")
		return
	}

	middleware.SetSessionCookie(c, session, h.secureCookies)
	c.Redirect(http.StatusFound, h.safeRedirect(c.Query("redirect_to")))
}

const verifiedRedirect = "/notes?verified=1"

// safeRedirect keeps redirect_to only when it is a path on this host or lies under
// appURL. Backslashes are refused outright since browsers read "/\host" as "//host".
func (h *AuthHandler) safeRedirect(target string) string {
	if target == "" || strings.Contains(target, `\`) {
		return verifiedRedirect
	}
	u, err := url.Parse(target)
	if err != nil {
		return verifiedRedirect
	}
	if u.Scheme == "" && u.Host == "" && u.User == nil &&
		strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	if h.appURL != "" && (target == h.appURL || strings.HasPrefix(target, h.appURL+"/")) {
		return target
	}
	return verifiedRedirect
}
