package middleware

import (
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// DefaultBrotliLevel balances CPU cost against ratio for JSON payloads.
const DefaultBrotliLevel = 6

type brotliWriter struct {
	gin.ResponseWriter
	bw *brotli.Writer
}

func (w *brotliWriter) Write(data []byte) (int, error) {
	return w.bw.Write(data)
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.bw.Write([]byte(s))
}

// Brotli compresses responses for clients that advertise br support.
// Websocket upgrades pass through untouched.
func Brotli(level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "br") ||
			strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		bw := brotli.NewWriterLevel(c.Writer, level)
		wrapped := &brotliWriter{ResponseWriter: c.Writer, bw: bw}

		c.Header("Content-Encoding", "br")
		c.Header("Vary", "Accept-Encoding")
		c.Writer = wrapped

		defer func() {
			bw.Close()
			c.Header("Content-Length", "")
		}()
		c.Next()
	}
}
