package login

import (
	"crypto/rand"
	"log"
	"math/big"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

const otpTTL = 5 * time.Minute

// SMSSender delivers an OTP message. The real deployment plugs an SMS
// provider in; LogSender covers development.
type SMSSender interface {
	Send(mobile, message string) error
}

// LogSender writes the OTP to the server log instead of sending SMS.
type LogSender struct{}

func (LogSender) Send(mobile, message string) error {
	log.Printf("[otp][dev] to=%s message=%q", mobile, message)
	return nil
}

// Indian mobile numbers start with 6-9.
var indianMobile = regexp.MustCompile(`^[6-9]\d{9}$`)

func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return ""
	}
	return big.NewInt(n.Int64() + 100000).String()
}

type sendOTPPayload struct {
	Mobile string `json:"mobile"`
}

func (h *Handler) sendOTP(c *gin.Context) {
	var p sendOTPPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Mobile == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Mobile number is required"})
		return
	}
	mobile := cleanMobile(p.Mobile)
	if len(mobile) != 10 || !indianMobile.MatchString(mobile) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide a valid 10-digit Indian mobile number"})
		return
	}
	acct, err := h.store.GetByMobile(mobile)
	if err != nil || acct == nil {
		// Do not reveal whether the number is registered.
		if err != nil {
			log.Printf("[otp][error] mobile=%s err=%v", mobile, err)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent successfully"})
		return
	}
	otp := generateOTP()
	if otp == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send OTP"})
		return
	}
	if err := h.store.SetOTP(acct.ID, otp, time.Now().Add(otpTTL)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send OTP"})
		return
	}
	sender := h.sms
	if sender == nil {
		sender = LogSender{}
	}
	if err := sender.Send(mobile, "Your Multi-Tool.io verification code is: "+otp); err != nil {
		log.Printf("[otp][send_error] mobile=%s err=%v", mobile, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send OTP"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent successfully"})
}

type verifyOTPPayload struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var p verifyOTPPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Mobile == "" || p.OTP == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Mobile number and OTP are required"})
		return
	}
	mobile := cleanMobile(p.Mobile)
	acct, err := h.store.GetByMobileAndOTP(mobile, p.OTP)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to verify OTP"})
		return
	}
	if acct == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid OTP or OTP has expired"})
		return
	}
	// Single use.
	if err := h.store.ClearOTP(acct.ID); err != nil {
		log.Printf("[otp][error] clear account_id=%d err=%v", acct.ID, err)
	}
	token, _ := SignToken(acct.ID, acct.Email)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    gin.H{"name": acct.Name, "email": acct.Email, "mobile": acct.Mobile},
		"message": "OTP verified successfully",
	})
}
