package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/unrolled/secure"
)

func SecureHeaders() echo.MiddlewareFunc {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})
	return echo.WrapMiddleware(secureMiddleware.Handler)
}
