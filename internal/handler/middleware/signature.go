package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	SignatureHeader    = "X-Signature"
	maxSignedBodyBytes = 1 << 20
)

// PayloadVerifier checks a signature over a raw request body.
type PayloadVerifier interface {
	Verify(payload []byte, sig string) error
}

// RequireSignature admits requests whose body is signed with the shared
// callback secret. The body is restored for the handler.
func RequireSignature(verifier PayloadVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSignedBodyBytes+1))
		if err != nil || len(body) > maxSignedBodyBytes {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"message": "Unreadable request body"},
			})
			return
		}

		if err := verifier.Verify(body, c.GetHeader(SignatureHeader)); err != nil {
			slog.Warn("Rejected unsigned callback",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Invalid signature"},
			})
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
