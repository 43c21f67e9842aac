package security

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// Content Security Policy
	CSP string

	// HSTS settings
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginResource string
	CacheControl        string
}

// DefaultHeadersConfig returns defaults for a JSON API that serves no
// documents of its own.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'none'; frame-ancestors 'none'",

		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginResource: "same-origin",
		CacheControl:        "no-store",
	}
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	config HeadersConfig
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{
		config: config,
	}
}

func (h *HeadersMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.applyHeaders(c)
		c.Next()
	}
}

func (h *HeadersMiddleware) applyHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", h.config.XContentTypeOptions)
	c.Header("X-Frame-Options", h.config.XFrameOptions)
	if h.config.CSP != "" {
		c.Header("Content-Security-Policy", h.config.CSP)
	}
	c.Header("Referrer-Policy", h.config.ReferrerPolicy)
	c.Header("Permissions-Policy", h.config.PermissionsPolicy)
	c.Header("Cross-Origin-Resource-Policy", h.config.CrossOriginResource)
	// tokens and personal data must not be stored by intermediaries
	if h.config.CacheControl != "" {
		c.Header("Cache-Control", h.config.CacheControl)
	}

	// HSTS header (only for HTTPS)
	if c.Request.TLS != nil && h.config.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d", h.config.HSTSMaxAge)
		if h.config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		c.Header("Strict-Transport-Security", hsts)
	}
}
