// Package app is the root controller: it picks the screen for a route and
// owns the per-visitor view state.
package app

import (
	"liftlog/internal/models"
	"liftlog/internal/route"
	"liftlog/internal/session"
)

// View is the page a screen renders.
type View int

const (
	ViewCatalog View = iota
	ViewLogin
	ViewSignup
	ViewLog
	ViewDetail
	// ViewLoading is shown while the session is unresolved on a private route.
	ViewLoading
)

func (v View) String() string {
	switch v {
	case ViewCatalog:
		return "catalog"
	case ViewLogin:
		return "login"
	case ViewSignup:
		return "signup"
	case ViewLog:
		return "log"
	case ViewDetail:
		return "detail"
	case ViewLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// ProfileState is the signed-in user's profile as currently loaded.
type ProfileState struct {
	Loading bool
	Profile *models.UserProfile
	Err     error
}

// Screen is what the controller decided for one render. A non-empty
// Redirect means the caller navigates there instead of showing View.
type Screen struct {
	View       View
	Redirect   string
	Onboarding bool
	Route      route.Route
}

// Select maps (route, session, profile, dismissed) onto a screen. It never
// selects ViewLog unless the session is resolved and signed in.
func Select(r route.Route, sess session.State, prof ProfileState, dismissed bool) Screen {
	s := Screen{Route: r, Onboarding: ShowOnboarding(sess, prof, dismissed)}

	switch r.Kind {
	case route.KindLogin, route.KindSignup:
		s.View = ViewLogin
		if r.Kind == route.KindSignup {
			s.View = ViewSignup
		}
		if sess.Authenticated() {
			s.Redirect = route.CatalogFragment
		}
	case route.KindLog:
		switch {
		case sess.Loading:
			s.View = ViewLoading
		case sess.User == nil:
			s.View = ViewLoading
			s.Redirect = route.LoginFragment
		default:
			s.View = ViewLog
		}
	case route.KindDetail:
		s.View = ViewDetail
	default:
		s.View = ViewCatalog
	}
	return s
}

// ShowOnboarding reports whether the onboarding prompt is visible: a user
// is signed in, session and profile have finished loading, the prompt was
// not dismissed in this session and the profile is not marked onboarded.
func ShowOnboarding(sess session.State, prof ProfileState, dismissed bool) bool {
	if sess.Loading || sess.User == nil || prof.Loading || dismissed {
		return false
	}
	return prof.Profile == nil || !prof.Profile.HasOnboarded
}
