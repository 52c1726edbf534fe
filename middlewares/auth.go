package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eventhub/utils"
)

// ContextUserID is the gin context key holding the verified user id.
const ContextUserID = "userId"

// Authenticate expects "Authorization: Bearer <token>". On success the
// verified user id is stored in the context; every failure aborts with 401
// and a message that tells expiry apart from a bad token.
func Authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required."})
		return
	}

	claims, err := utils.VerifyToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired."})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token."})
		return
	}

	c.Set(ContextUserID, claims.UserID)
	c.Next()
}
