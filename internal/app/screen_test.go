package app

import (
	"testing"

	"liftlog/internal/auth"
	"liftlog/internal/models"
	"liftlog/internal/route"
	"liftlog/internal/session"

	"github.com/stretchr/testify/assert"
)

var (
	loadingSession   = session.State{Loading: true}
	signedOut        = session.State{}
	signedIn         = session.State{User: &auth.Identity{UserID: "u-1", Email: "a@b.co"}}
	profileLoaded    = ProfileState{}
	profileLoading   = ProfileState{Loading: true}
	profileOnboarded = ProfileState{Profile: &models.UserProfile{UserID: "u-1", HasOnboarded: true}}
)

func TestSelect_Routes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		fragment     string
		sess         session.State
		wantView     View
		wantRedirect string
	}{
		{"catalog", "#/", signedOut, ViewCatalog, ""},
		{"empty fragment", "", signedOut, ViewCatalog, ""},
		{"unknown path falls back to catalog", "#/nope", signedIn, ViewCatalog, ""},
		{"detail", "#/workout?id=abc", signedOut, ViewDetail, ""},
		{"detail without id", "#/workout", signedOut, ViewCatalog, ""},
		{"login signed out", "#/login", signedOut, ViewLogin, ""},
		{"login signed in", "#/login", signedIn, ViewLogin, route.CatalogFragment},
		{"signup signed in", "#/signup", signedIn, ViewSignup, route.CatalogFragment},
		{"signup while loading", "#/signup", loadingSession, ViewSignup, ""},
		{"log while loading", "#/log", loadingSession, ViewLoading, ""},
		{"log signed out", "#/log", signedOut, ViewLoading, route.LoginFragment},
		{"log signed in", "#/log?title=Legs", signedIn, ViewLog, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Select(route.ParseRoute(tt.fragment), tt.sess, profileLoaded, false)
			assert.Equal(t, tt.wantView, s.View)
			assert.Equal(t, tt.wantRedirect, s.Redirect)
		})
	}
}

func TestSelect_NeverShowsLogWithoutUser(t *testing.T) {
	t.Parallel()
	for _, sess := range []session.State{loadingSession, signedOut} {
		s := Select(route.ParseRoute("#/log"), sess, profileLoaded, false)
		assert.NotEqual(t, ViewLog, s.View)
	}
}

func TestShowOnboarding(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		sess      session.State
		prof      ProfileState
		dismissed bool
		want      bool
	}{
		{"fresh user without profile", signedIn, profileLoaded, false, true},
		{"profile not onboarded", signedIn, ProfileState{Profile: &models.UserProfile{}}, false, true},
		{"profile onboarded", signedIn, profileOnboarded, false, false},
		{"dismissed", signedIn, profileLoaded, true, false},
		{"profile loading", signedIn, profileLoading, false, false},
		{"session loading", loadingSession, profileLoaded, false, false},
		{"signed out", signedOut, profileLoaded, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShowOnboarding(tt.sess, tt.prof, tt.dismissed))
		})
	}
}

func TestOnboardingAction_Target(t *testing.T) {
	t.Parallel()
	f, ok := OnboardingBrowse.Target()
	assert.True(t, ok)
	assert.Equal(t, "#/", f)

	f, ok = OnboardingStartLog.Target()
	assert.True(t, ok)
	assert.Equal(t, "#/log", f)

	f, ok = OnboardingClose.Target()
	assert.True(t, ok)
	assert.Empty(t, f)

	_, ok = OnboardingAction("later").Target()
	assert.False(t, ok)
}
