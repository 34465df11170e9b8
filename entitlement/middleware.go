package entitlement

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware gates a metered endpoint behind CheckAndCharge. It expects the
// auth middleware to have set account_id in the context, and it aborts the
// request before the tool handler runs on any denial, so a denied action never
// executes. The charge is persisted before c.Next and is not refunded if the
// downstream tool fails.
func (e *Evaluator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetInt("account_id")
		if accountID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}
		dec, err := e.CheckAndCharge(accountID)
		switch {
		case errors.Is(err, ErrAccountNotFound):
			log.Printf("[entitlement][deny] account_id=%d reason=account_not_found", accountID)
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found", "reason": "account_not_found"})
			c.Abort()
			return
		case errors.Is(err, ErrInsufficientCredits):
			log.Printf("[entitlement][deny] account_id=%d reason=insufficient_credits", accountID)
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":  "Insufficient credits. Please make a payment.",
				"reason": "insufficient_credits",
			})
			c.Abort()
			return
		case err != nil:
			log.Printf("[entitlement][error] account_id=%d err=%v", accountID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			c.Abort()
			return
		}
		c.Set("entitlement_branch", string(dec.Branch))
		c.Set("entitlement_remaining", dec.Remaining)
		c.Writer.Header().Set("X-Entitlement-Branch", string(dec.Branch))
		if dec.Remaining >= 0 {
			c.Writer.Header().Set("X-Entitlement-Remaining", strconv.Itoa(dec.Remaining))
		}
		log.Printf("[entitlement][ok] account_id=%d branch=%s remaining=%d", accountID, dec.Branch, dec.Remaining)
		c.Next()
	}
}
