package login

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"multitool-backend/accounts"

	"github.com/gin-gonic/gin"
)

// GoogleClaims is the identity extracted from a verified Google ID token.
type GoogleClaims struct {
	Sub   string
	Email string
	Name  string
}

// GoogleVerifier authenticates a client-supplied Google credential.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleClaims, error)
}

// tokeninfoVerifier validates ID tokens against Google's tokeninfo endpoint
// and checks the audience when a client ID is configured.
type tokeninfoVerifier struct {
	clientID string
	http     *http.Client
}

// NewGoogleVerifierFromEnv returns a verifier bound to GOOGLE_CLIENT_ID, or
// nil when unset (the google login route then rejects).
func NewGoogleVerifierFromEnv() GoogleVerifier {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	if clientID == "" {
		return nil
	}
	return &tokeninfoVerifier{clientID: clientID, http: &http.Client{Timeout: 10 * time.Second}}
}

func (v *tokeninfoVerifier) Verify(ctx context.Context, credential string) (*GoogleClaims, error) {
	u := "https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}
	var info struct {
		Aud   string `json:"aud"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Aud != v.clientID {
		return nil, errors.New("token audience mismatch")
	}
	return &GoogleClaims{Sub: info.Sub, Email: info.Email, Name: info.Name}, nil
}

type googlePayload struct {
	Credential string `json:"credential"`
}

// googleLogin signs a user in (or up) from a Google ID token.
func (h *Handler) googleLogin(c *gin.Context) {
	var p googlePayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Credential == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Credential required"})
		return
	}
	if h.google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	claims, err := h.google.Verify(c.Request.Context(), p.Credential)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid Google token"})
		return
	}
	acct, err := h.store.GetByEmail(claims.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if acct == nil {
		acct = &accounts.Account{GoogleID: claims.Sub, Email: claims.Email, Name: claims.Name}
		if err := h.store.Create(acct); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}
	} else if acct.GoogleID == "" {
		if err := h.store.LinkGoogleID(acct.ID, claims.Sub, claims.Name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}
		acct.Name = claims.Name
	}
	token, _ := SignToken(acct.ID, acct.Email)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"email": acct.Email, "name": acct.Name},
		"token":   token,
	})
}

func (h *Handler) googleClientID(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clientId": os.Getenv("GOOGLE_CLIENT_ID")})
}
