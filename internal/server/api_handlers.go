package server

import (
	"errors"
	"strconv"
	"time"

	"liftlog/internal/app"
	"liftlog/internal/auth"
	"liftlog/internal/middleware"
	"liftlog/internal/models"
	"liftlog/internal/route"
	"liftlog/internal/service"
	"liftlog/internal/session"
	"liftlog/internal/vote"

	"github.com/gofiber/fiber/v2"
)

// sessionResponse describes what the visitor sees: the session, the
// profile once loaded and whether the onboarding prompt is open.
type sessionResponse struct {
	Session    session.State       `json:"session"`
	Profile    *models.UserProfile `json:"profile"`
	Onboarding bool                `json:"onboarding"`
}

// authResponse is returned by the JSON sign-in and sign-up endpoints.
type authResponse struct {
	Token     string        `json:"token"`
	User      auth.Identity `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Navigate  string        `json:"navigate"`
}

// logRequest is the JSON body of POST /api/logs.
type logRequest struct {
	Title           string `json:"title"`
	PerformedAt     string `json:"performedAt"`
	TrackingType    string `json:"trackingType"`
	DurationMinutes *int   `json:"durationMinutes"`
	Sets            *int   `json:"sets"`
	Reps            string `json:"reps"`
	Notes           string `json:"notes"`
	TemplateID      string `json:"templateId"`
}

func (r logRequest) form() service.LogForm {
	count := func(p *int) string {
		if p == nil {
			return ""
		}
		return strconv.Itoa(*p)
	}
	return service.LogForm{
		Title:           r.Title,
		PerformedOn:     r.PerformedAt,
		TrackingType:    r.TrackingType,
		DurationMinutes: count(r.DurationMinutes),
		Sets:            count(r.Sets),
		Reps:            r.Reps,
		Notes:           r.Notes,
		TemplateID:      r.TemplateID,
	}
}

// GetSession handles GET /api/session
func (s *Server) GetSession(c *fiber.Ctx) error {
	v := s.visitor(c)
	sess, screen := s.screen(c, v, route.ParseRoute(route.CatalogFragment))
	return c.JSON(sessionResponse{
		Session:    sess,
		Profile:    v.Profile().Profile,
		Onboarding: screen.Onboarding,
	})
}

// APIDismissOnboarding handles POST /api/onboarding/dismiss
func (s *Server) APIDismissOnboarding(c *fiber.Ctx) error {
	var req struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"), "Invalid request body")
	}
	if req.Action == "" {
		req.Action = string(app.OnboardingClose)
	}
	target, ok := app.OnboardingAction(req.Action).Target()
	if !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("action must be browse, log or close"), "Invalid action")
	}

	userID := ""
	if id := identityOf(c); id != nil {
		userID = id.UserID
	}
	s.visitor(c).Dismiss(c.UserContext(), userID)
	return c.JSON(fiber.Map{"navigate": target})
}

// APISignUp handles POST /api/auth/signup
func (s *Server) APISignUp(c *fiber.Ctx) error {
	var form service.SignUpForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"), "Invalid request body")
	}

	cred, err := s.accounts.SignUp(c.UserContext(), visitorOf(c), form)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "sign up failed", "error", err, "signed_in", cred != nil)
		if cred == nil {
			return models.RespondWithMessage(c, models.StatusFor(err), err, service.MsgSignupFailed)
		}
	}
	s.setToken(c, cred)
	return c.Status(fiber.StatusCreated).JSON(credentialResponse(cred))
}

// APISignIn handles POST /api/auth/login
func (s *Server) APISignIn(c *fiber.Ctx) error {
	var form service.SignInForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"), "Invalid request body")
	}

	cred, err := s.accounts.SignIn(c.UserContext(), visitorOf(c), form)
	if err != nil {
		return models.RespondWithMessage(c, fiber.StatusUnauthorized, err, service.MsgLoginFailed)
	}
	s.setToken(c, cred)
	return c.JSON(credentialResponse(cred))
}

// APISignOut handles POST /api/auth/logout
func (s *Server) APISignOut(c *fiber.Ctx) error {
	if err := s.accounts.SignOut(c.UserContext(), visitorOf(c)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "sign out failed", "error", err)
	}
	s.clearToken(c)
	return c.JSON(fiber.Map{"navigate": route.CatalogFragment})
}

func credentialResponse(cred *auth.Credential) authResponse {
	return authResponse{
		Token:     cred.Token,
		User:      cred.Identity,
		ExpiresAt: cred.ExpiresAt,
		Navigate:  route.CatalogFragment,
	}
}

// ListTemplates handles GET /api/templates and refreshes the visitor's
// local copy.
func (s *Server) ListTemplates(c *fiber.Ctx) error {
	templates, err := s.catalog.List(c.UserContext())
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to list templates", "error", err)
		return models.RespondWithMessage(c, fiber.StatusServiceUnavailable, err, service.MsgCatalogUnavailable)
	}
	v := s.visitor(c)
	v.ReplaceCatalog(templates)
	return c.JSON(fiber.Map{"templates": v.Board.Templates()})
}

// GetTemplate handles GET /api/templates/:id
func (s *Server) GetTemplate(c *fiber.Ctx) error {
	tpl, err := s.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		msg := service.MsgTemplateLoadFailed
		if models.HasCode(err, models.CodeNotFound) {
			msg = service.MsgTemplateNotFound
		}
		return models.RespondWithMessage(c, models.StatusFor(err), err, msg)
	}
	return c.JSON(tpl)
}

// APIVote handles POST /api/templates/:id/votes
func (s *Server) APIVote(c *fiber.Ctx) error {
	var req struct {
		Kind models.VoteKind `json:"kind"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"), "Invalid request body")
	}

	id := c.Params("id")
	v := s.visitor(c)
	err := s.catalog.Vote(c.UserContext(), v.Board, id, req.Kind)
	switch {
	case err == nil:
	case errors.Is(err, vote.ErrVoteInFlight):
		return models.RespondWithMessage(c, fiber.StatusConflict,
			models.NewConflictError("A vote for this template is already in flight"), service.MsgVoteFailed)
	case models.HasCode(err, models.CodeValidation):
		return models.RespondWithMessage(c, fiber.StatusBadRequest, err, service.MsgVoteFailed)
	default:
		middleware.Logger.WarnContext(c.UserContext(), "vote failed", "template_id", id, "error", err)
		resp := fiber.Map{"error": service.MsgVoteFailed}
		if t, ok := v.Board.Get(id); ok {
			resp["template"] = t
		}
		return c.Status(fiber.StatusBadGateway).JSON(resp)
	}

	resp := fiber.Map{"status": "recorded"}
	if t, ok := v.Board.Get(id); ok {
		resp["template"] = t
	}
	return c.JSON(resp)
}

// ListLogs handles GET /api/logs
func (s *Server) ListLogs(c *fiber.Ctx) error {
	entries, err := s.logs.List(c.UserContext(), identityOf(c).UserID)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to list workout log", "error", err)
		return models.RespondWithMessage(c, models.StatusFor(err), err, service.MsgLogLoadFailed)
	}
	if entries == nil {
		entries = []models.WorkoutLogEntry{}
	}
	return c.JSON(fiber.Map{"logs": entries})
}

// APIAppendLog handles POST /api/logs
func (s *Server) APIAppendLog(c *fiber.Ctx) error {
	var req logRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"), "Invalid request body")
	}

	entry, err := s.logs.Append(c.UserContext(), identityOf(c).UserID, req.form())
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to save workout", "error", err)
		return models.RespondWithMessage(c, models.StatusFor(err), err, service.MsgLogSaveFailed)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}
