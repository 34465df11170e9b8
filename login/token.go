package login

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// tokenPayload is the minimal JWT claim set issued to clients.
type tokenPayload struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
	Jti   string `json:"jti"`
}

// blacklist holds manually logged-out tokens until their natural expiry.
// Not persisted; acceptable for this tier.
var (
	blacklistMu sync.Mutex
	blacklist   = map[string]int64{}
)

func tokenDuration() time.Duration {
	hours := 168 // 7 days
	if v := os.Getenv("JWT_EXPIRY_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}
	return time.Duration(hours) * time.Hour
}

func jwtSecret() []byte {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		s = "dev-insecure-secret"
	}
	return []byte(s)
}

// SignToken issues an HS256 token for the account.
func SignToken(id int, email string) (string, int64) {
	exp := time.Now().Add(tokenDuration()).Unix()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payloadBytes, _ := json.Marshal(tokenPayload{ID: id, Email: email, Exp: exp, Jti: uuid.NewString()})
	payload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	mac := hmac.New(sha256.New, jwtSecret())
	mac.Write([]byte(header + "." + payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return header + "." + payload + "." + sig, exp
}

// ParseToken verifies signature, expiry and the logout blacklist.
func ParseToken(token string) (tokenPayload, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return tokenPayload{}, false
	}
	unsigned := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, jwtSecret())
	mac.Write([]byte(unsigned))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return tokenPayload{}, false
	}
	pb, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return tokenPayload{}, false
	}
	var tp tokenPayload
	if err := json.Unmarshal(pb, &tp); err != nil {
		return tokenPayload{}, false
	}
	if tp.Exp < time.Now().Unix() {
		return tokenPayload{}, false
	}
	blacklistMu.Lock()
	exp, blocked := blacklist[token]
	blacklistMu.Unlock()
	if blocked && exp >= time.Now().Unix() {
		return tokenPayload{}, false
	}
	return tp, true
}

func blacklistToken(token string, exp int64) {
	blacklistMu.Lock()
	blacklist[token] = exp
	blacklistMu.Unlock()
}

func bearerToken(authorization string) string {
	return strings.TrimPrefix(authorization, "Bearer ")
}
