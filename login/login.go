package login

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	"multitool-backend/accounts"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Store is the account persistence surface the auth flows need.
type Store interface {
	GetByID(id int) (*accounts.Account, error)
	GetByEmail(email string) (*accounts.Account, error)
	GetByMobile(mobile string) (*accounts.Account, error)
	Create(a *accounts.Account) error
	LinkGoogleID(id int, googleID, name string) error
	UpdatePassword(id int, passwordHash string) error
	SetResetToken(id int, token string, expiry time.Time) error
	GetByResetToken(token string) (*accounts.Account, error)
	ClearResetToken(id int) error
	SetOTP(id int, otp string, expiry time.Time) error
	GetByMobileAndOTP(mobile, otp string) (*accounts.Account, error)
	ClearOTP(id int) error
}

// Mailer sends account notifications. Failures are logged, never fatal to the
// request that triggered them.
type Mailer interface {
	SendWelcome(to string) error
	SendPasswordReset(to, resetLink string) error
}

type Handler struct {
	store  Store
	mailer Mailer
	sms    SMSSender
	google GoogleVerifier
}

func NewHandler(store Store, mailer Mailer, sms SMSSender, google GoogleVerifier) *Handler {
	return &Handler{store: store, mailer: mailer, sms: sms, google: google}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/auth/register", h.register)
	r.POST("/api/auth/login", h.login)
	r.POST("/api/auth/logout", h.logout)
	r.POST("/api/auth/google", h.googleLogin)
	r.GET("/api/auth/google-client-id", h.googleClientID)
	r.POST("/api/auth/forgot", h.forgotPassword)
	r.POST("/api/auth/reset", h.resetPassword)
	r.GET("/api/auth/verify-reset/:token", h.verifyResetToken)
	r.GET("/api/auth/me", h.Middleware(), h.me)
	r.POST("/api/otp/send", h.sendOTP)
	r.POST("/api/otp/verify", h.verifyOTP)
}

// me returns the authenticated account's profile, including credit and
// subscription state for the client dashboard.
func (h *Handler) me(c *gin.Context) {
	acct, err := h.store.GetByID(c.GetInt("account_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	if acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": acct})
}

// Middleware resolves the bearer token into an account identity and stores it
// in the request context. Downstream gates read account_id from there; no
// ambient globals.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}
		tp, ok := ParseToken(token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Request is not authorized"})
			c.Abort()
			return
		}
		c.Set("account_id", tp.ID)
		c.Set("account_email", tp.Email)
		c.Next()
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// cleanMobile strips formatting and validates length (10-15 digits).
func cleanMobile(mobile string) string {
	m := nonDigits.ReplaceAllString(mobile, "")
	if len(m) < 10 || len(m) > 15 {
		return ""
	}
	return m
}

type registerPayload struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Mobile   string `json:"mobile"`
}

func (h *Handler) register(c *gin.Context) {
	var p registerPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Email == "" || p.Password == "" || p.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email and password required"})
		return
	}
	existing, err := h.store.GetByEmail(p.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	acct := &accounts.Account{
		Email:        p.Email,
		Name:         p.Name,
		Mobile:       cleanMobile(p.Mobile),
		PasswordHash: string(hash),
	}
	if err := h.store.Create(acct); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	if h.mailer != nil {
		if err := h.mailer.SendWelcome(acct.Email); err != nil {
			log.Printf("[auth][email_error] welcome to=%s err=%v", acct.Email, err)
		}
	}
	token, _ := SignToken(acct.ID, acct.Email)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"email": acct.Email, "name": acct.Name},
		"token":   token,
	})
}

type loginPayload struct {
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var p loginPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	var acct *accounts.Account
	var err error
	switch {
	case p.Email != "":
		acct, err = h.store.GetByEmail(p.Email)
	case p.Mobile != "":
		m := cleanMobile(p.Mobile)
		if m == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mobile number format"})
			return
		}
		acct, err = h.store.GetByMobile(m)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email or mobile number required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if acct == nil || acct.PasswordHash == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(p.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	token, _ := SignToken(acct.ID, acct.Email)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"email": acct.Email, "name": acct.Name, "mobile": acct.Mobile},
		"token":   token,
	})
}

func (h *Handler) logout(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}
	if tp, ok := ParseToken(token); ok {
		blacklistToken(token, tp.Exp)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func generateResetToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

type forgotPayload struct {
	Identifier string `json:"identifier"`
}

// forgotPassword never reveals whether the email exists.
func (h *Handler) forgotPassword(c *gin.Context) {
	var p forgotPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email required"})
		return
	}
	ack := gin.H{"message": "If your account exists, you will receive a password reset link."}
	acct, err := h.store.GetByEmail(p.Identifier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password reset request"})
		return
	}
	if acct == nil {
		c.JSON(http.StatusOK, ack)
		return
	}
	token := generateResetToken()
	if token == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password reset request"})
		return
	}
	if err := h.store.SetResetToken(acct.ID, token, time.Now().Add(time.Hour)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password reset request"})
		return
	}
	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "https://multi-tool-io.vercel.app"
	}
	resetURL := frontend + "/reset-password?token=" + token
	if h.mailer != nil {
		if err := h.mailer.SendPasswordReset(acct.Email, resetURL); err != nil {
			log.Printf("[auth][email_error] reset to=%s err=%v", acct.Email, err)
		}
	}
	c.JSON(http.StatusOK, ack)
}

type resetPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handler) resetPassword(c *gin.Context) {
	var p resetPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}
	if len(p.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}
	acct, err := h.store.GetByResetToken(p.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if acct == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if err := h.store.UpdatePassword(acct.ID, string(hash)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if err := h.store.ClearResetToken(acct.ID); err != nil {
		log.Printf("[auth][error] clear reset token account_id=%d err=%v", acct.ID, err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

func (h *Handler) verifyResetToken(c *gin.Context) {
	acct, err := h.store.GetByResetToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
		return
	}
	if acct == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token is valid"})
}
