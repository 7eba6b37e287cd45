package server

import (
	"strings"
	"time"

	"liftlog/internal/app"
	"liftlog/internal/auth"
	"liftlog/internal/middleware"
	"liftlog/internal/models"
	"liftlog/internal/route"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	visitorCookie = "lv_visitor"
	tokenCookie   = "lv_token"

	visitorCookieMaxAge = 365 * 24 * 60 * 60

	localIdentity = "identity"
	localAddress  = "address"
)

// VisitorMiddleware identifies the browser by its visitor cookie and
// restores the signed-in identity from the bearer token or token cookie.
// Restoring reports the identity to the session provider, so by the time a
// handler runs the visitor's session has settled.
func (s *Server) VisitorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		visitorID := c.Cookies(visitorCookie)
		if _, err := uuid.Parse(visitorID); err != nil {
			visitorID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     visitorCookie,
				Value:    visitorID,
				Path:     "/",
				MaxAge:   visitorCookieMaxAge,
				HTTPOnly: true,
				Secure:   s.config.IsProduction(),
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(middleware.LocalVisitorID, visitorID)

		token, fromCookie := bearerToken(c), false
		if token == "" {
			token, fromCookie = c.Cookies(tokenCookie), true
		}

		id, err := s.auth.Restore(c.UserContext(), visitorID, token)
		if err != nil {
			middleware.Logger.InfoContext(c.UserContext(), "discarding session token", "error", err)
			if fromCookie {
				s.clearToken(c)
			}
		}
		if id != nil {
			c.Locals(middleware.LocalUserID, id.UserID)
		}
		c.Locals(localIdentity, id)

		s.registry.Visitor(visitorID)
		c.SetUserContext(middleware.EnrichContext(c))
		return c.Next()
	}
}

// AuthRequired rejects API requests without a signed-in identity.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identityOf(c) == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Sign in required"), "Sign in required")
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Server) setToken(c *fiber.Ctx, cred *auth.Credential) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    cred.Token,
		Path:     "/",
		Expires:  cred.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearToken(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func visitorOf(c *fiber.Ctx) string {
	v, _ := c.Locals(middleware.LocalVisitorID).(string)
	return v
}

func identityOf(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(localIdentity).(*auth.Identity)
	return id
}

func (s *Server) visitor(c *fiber.Ctx) *app.Visitor {
	return s.registry.Visitor(visitorOf(c))
}

// addressOf returns the request's navigation address, starting at the
// fragment equivalent of the request target.
func addressOf(c *fiber.Ctx) *route.Address {
	if a, ok := c.Locals(localAddress).(*route.Address); ok {
		return a
	}
	a := route.NewAddress(route.FromRequest(c.Path(), string(c.Request().URI().QueryString())))
	c.Locals(localAddress, a)
	return a
}

// navigate moves the address to fragment and answers with a redirect to
// the page that serves it.
func navigate(c *fiber.Ctx, fragment string) error {
	a := addressOf(c)
	a.Navigate(fragment)
	return c.Redirect(route.Href(a.Fragment()), fiber.StatusSeeOther)
}

// safeFragment rebuilds f from its resolved route, so only known in-app
// locations survive. Anything else becomes the catalog.
func safeFragment(f string) string {
	if !strings.HasPrefix(f, "#/") {
		return route.CatalogFragment
	}
	return route.ParseRoute(f).Fragment()
}
