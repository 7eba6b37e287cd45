package server

import (
	"errors"
	"time"

	"liftlog/internal/app"
	"liftlog/internal/middleware"
	"liftlog/internal/models"
	"liftlog/internal/route"
	"liftlog/internal/service"
	"liftlog/internal/session"
	"liftlog/internal/views"
	"liftlog/internal/vote"

	"github.com/gofiber/fiber/v2"
)

// profileWait bounds how long a page waits for the profile load before
// rendering without the onboarding prompt.
const profileWait = 2 * time.Second

const (
	catalogTitle    = "Workout Catalog"
	catalogSubtitle = "Explore workouts and see what muscles they target. Log in to track your own sessions privately."
	logTitle        = "My Workout Log"
	logSubtitle     = "Private content: only you can see this log."
	loginTitle      = "Welcome back"
	loginSubtitle   = "Log in to track workouts and access your private log."
	signupTitle     = "Create your account"
	signupSubtitle  = "Sign up to track workouts in your private log."
	detailTitle     = "Workout Template"
	detailSubtitle  = "Public workout details"
	detailFallback  = "A public template anyone can view."
)

// Page renders the screen the request target selects.
func (s *Server) Page(c *fiber.Ctx) error {
	r := route.Resolve(addressOf(c).Location())
	v := s.visitor(c)
	sess, screen := s.screen(c, v, r)

	if screen.Redirect != "" {
		return navigate(c, screen.Redirect)
	}

	switch screen.View {
	case app.ViewLoading:
		return s.render(c, fiber.StatusOK, views.PageLoading, s.page(sess, screen, "Loading…", ""))
	case app.ViewLogin:
		return s.render(c, fiber.StatusOK, views.PageLogin, s.loginPage(sess, screen, views.Credentials{}, ""))
	case app.ViewSignup:
		return s.render(c, fiber.StatusOK, views.PageSignup, s.signupPage(sess, screen, views.Credentials{}, ""))
	case app.ViewLog:
		return s.renderLog(c, fiber.StatusOK, sess, screen, s.logs.NewForm(r.Title, r.TemplateID), "")
	case app.ViewDetail:
		return s.renderDetail(c, sess, screen)
	default:
		return s.renderCatalog(c, fiber.StatusOK, v, sess, screen, true, "")
	}
}

// SignIn handles POST /login
func (s *Server) SignIn(c *fiber.Ctx) error {
	var form service.SignInForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form")
	}

	cred, err := s.accounts.SignIn(c.UserContext(), visitorOf(c), form)
	if err != nil {
		middleware.Logger.InfoContext(c.UserContext(), "sign in failed", "error", err)
		sess, screen := s.screen(c, s.visitor(c), route.ParseRoute(route.LoginFragment))
		return s.render(c, fiber.StatusUnauthorized, views.PageLogin,
			s.loginPage(sess, screen, views.Credentials{Email: form.Email}, service.MsgLoginFailed))
	}
	s.setToken(c, cred)
	return navigate(c, route.CatalogFragment)
}

// SignUp handles POST /signup
func (s *Server) SignUp(c *fiber.Ctx) error {
	var form service.SignUpForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form")
	}

	cred, err := s.accounts.SignUp(c.UserContext(), visitorOf(c), form)
	if cred != nil {
		// The account exists even when the profile write failed; the user
		// stays signed in.
		s.setToken(c, cred)
	}
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "sign up failed", "error", err, "signed_in", cred != nil)
		if cred == nil {
			sess, screen := s.screen(c, s.visitor(c), route.ParseRoute(route.SignupFragment))
			return s.render(c, models.StatusFor(err), views.PageSignup,
				s.signupPage(sess, screen, views.Credentials{Username: form.Username, Email: form.Email}, service.MsgSignupFailed))
		}
	}
	return navigate(c, route.CatalogFragment)
}

// SignOut handles POST /logout. Failures are logged and the visitor is
// signed out locally regardless.
func (s *Server) SignOut(c *fiber.Ctx) error {
	if err := s.accounts.SignOut(c.UserContext(), visitorOf(c)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "sign out failed", "error", err)
	}
	s.clearToken(c)
	return navigate(c, route.CatalogFragment)
}

// AppendLog handles POST /log
func (s *Server) AppendLog(c *fiber.Ctx) error {
	r := route.Resolve(addressOf(c).Location())
	v := s.visitor(c)
	sess, screen := s.screen(c, v, r)
	if screen.Redirect != "" {
		return navigate(c, screen.Redirect)
	}
	if screen.View != app.ViewLog {
		return s.Page(c)
	}

	var form service.LogForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form")
	}
	if form.TemplateID == "" {
		form.TemplateID = r.TemplateID
	}

	if _, err := s.logs.Append(c.UserContext(), sess.User.UserID, form); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to save workout", "error", err)
		return s.renderLog(c, models.StatusFor(err), sess, screen, form, service.MsgLogSaveFailed)
	}
	// Title, tracking values and notes reset; the template association stays.
	return navigate(c, route.LogFragment("", form.TemplateID))
}

// Vote handles POST /workout/:id/like and /workout/:id/dislike and renders
// the catalog from the visitor's local copy.
func (s *Server) Vote(c *fiber.Ctx) error {
	kind := models.VoteKind(c.Params("kind"))
	if !kind.Valid() {
		return fiber.ErrNotFound
	}
	v := s.visitor(c)
	sess, screen := s.screen(c, v, route.ParseRoute(route.CatalogFragment))

	msg := ""
	err := s.catalog.Vote(c.UserContext(), v.Board, c.Params("id"), kind)
	switch {
	case err == nil, errors.Is(err, vote.ErrVoteInFlight):
	default:
		middleware.Logger.WarnContext(c.UserContext(), "vote failed", "template_id", c.Params("id"), "error", err)
		msg = service.MsgVoteFailed
	}
	return s.renderCatalog(c, fiber.StatusOK, v, sess, screen, false, msg)
}

// SeedCatalog handles POST /catalog/seed
func (s *Server) SeedCatalog(c *fiber.Ctx) error {
	if identityOf(c) == nil {
		return navigate(c, route.LoginFragment)
	}
	v := s.visitor(c)
	templates, err := s.catalog.SeedStarter(c.UserContext())
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to seed starter catalog", "error", err)
		sess, screen := s.screen(c, v, route.ParseRoute(route.CatalogFragment))
		return s.renderCatalog(c, fiber.StatusOK, v, sess, screen, false, service.MsgSeedFailed)
	}
	v.ReplaceCatalog(templates)
	return navigate(c, route.CatalogFragment)
}

// DismissOnboarding handles POST /onboarding/:action
func (s *Server) DismissOnboarding(c *fiber.Ctx) error {
	target, ok := app.OnboardingAction(c.Params("action")).Target()
	if !ok {
		return fiber.ErrNotFound
	}
	userID := ""
	if id := identityOf(c); id != nil {
		userID = id.UserID
	}
	s.visitor(c).Dismiss(c.UserContext(), userID)

	if target == "" {
		target = safeFragment(c.FormValue("from"))
	}
	return navigate(c, target)
}

// screen waits briefly for the profile of a signed-in visitor, then
// selects the screen for r. A profile load that failed earlier is retried.
func (s *Server) screen(c *fiber.Ctx, v *app.Visitor, r route.Route) (session.State, app.Screen) {
	sess := s.sessions.Get(v.ID)
	if sess.Authenticated() {
		v.SyncUser(sess.User.UserID)
		v.AwaitProfile(c.UserContext(), profileWait)
	}
	return sess, v.Screen(r, sess)
}

func (s *Server) page(sess session.State, screen app.Screen, title, subtitle string) *views.Page {
	return &views.Page{
		Title:      title,
		Subtitle:   subtitle,
		User:       sess.User,
		Checking:   sess.Loading,
		Onboarding: screen.Onboarding,
		Current:    screen.Route.Fragment(),
	}
}

func (s *Server) loginPage(sess session.State, screen app.Screen, creds views.Credentials, msg string) *views.Page {
	p := s.page(sess, screen, loginTitle, loginSubtitle)
	p.Content = creds
	p.Error = msg
	return p
}

func (s *Server) signupPage(sess session.State, screen app.Screen, creds views.Credentials, msg string) *views.Page {
	p := s.page(sess, screen, signupTitle, signupSubtitle)
	p.Content = creds
	p.Error = msg
	return p
}

// renderCatalog renders the visitor's board. With refetch the board is
// replaced by a fresh listing first; a failed listing shows an empty
// catalog with the error.
func (s *Server) renderCatalog(c *fiber.Ctx, status int, v *app.Visitor, sess session.State, screen app.Screen, refetch bool, msg string) error {
	var templates []models.WorkoutTemplate
	if refetch {
		fresh, err := s.catalog.List(c.UserContext())
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to list templates", "error", err)
			msg = service.MsgCatalogUnavailable
		} else {
			v.ReplaceCatalog(fresh)
			templates = v.Board.Templates()
		}
	} else {
		templates = v.Board.Templates()
	}

	pending := make(map[string]bool)
	for _, t := range templates {
		if v.Board.Pending(t.ID) {
			pending[t.ID] = true
		}
	}

	p := s.page(sess, screen, catalogTitle, catalogSubtitle)
	p.Error = msg
	p.Content = views.Catalog{Templates: templates, Pending: pending}
	return s.render(c, status, views.PageCatalog, p)
}

func (s *Server) renderDetail(c *fiber.Ctx, sess session.State, screen app.Screen) error {
	tpl, err := s.catalog.Get(c.UserContext(), screen.Route.ID)
	if err != nil {
		msg := service.MsgTemplateLoadFailed
		if models.HasCode(err, models.CodeNotFound) || models.HasCode(err, models.CodeValidation) {
			msg = service.MsgTemplateNotFound
		} else {
			middleware.Logger.WarnContext(c.UserContext(), "failed to load template", "template_id", screen.Route.ID, "error", err)
		}
		p := s.page(sess, screen, detailTitle, detailSubtitle)
		p.Error = msg
		p.Content = views.Detail{}
		return s.render(c, models.StatusFor(err), views.PageDetail, p)
	}

	subtitle := tpl.Description
	if subtitle == "" {
		subtitle = detailFallback
	}
	p := s.page(sess, screen, tpl.Title, subtitle)
	p.Content = views.Detail{Template: tpl}
	return s.render(c, fiber.StatusOK, views.PageDetail, p)
}

func (s *Server) renderLog(c *fiber.Ctx, status int, sess session.State, screen app.Screen, form service.LogForm, msg string) error {
	entries, err := s.logs.List(c.UserContext(), sess.User.UserID)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to list workout log", "error", err)
		if msg == "" {
			msg = service.MsgLogLoadFailed
		}
	}

	p := s.page(sess, screen, logTitle, logSubtitle)
	p.Error = msg
	p.Content = views.Log{
		Form:    toViewForm(form),
		Entries: entries,
		Action:  route.Href(route.LogFragment("", form.TemplateID)),
	}
	return s.render(c, status, views.PageLog, p)
}

func toViewForm(f service.LogForm) views.LogForm {
	return views.LogForm{
		Title:           f.Title,
		PerformedOn:     f.PerformedOn,
		TrackingType:    f.TrackingType,
		DurationMinutes: f.DurationMinutes,
		Sets:            f.Sets,
		Reps:            f.Reps,
		Notes:           f.Notes,
		TemplateID:      f.TemplateID,
	}
}

func (s *Server) render(c *fiber.Ctx, status int, name string, p *views.Page) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return s.views.Render(c.Response().BodyWriter(), name, p)
}
