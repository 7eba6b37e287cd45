package views

import (
	"liftlog/internal/auth"
	"liftlog/internal/models"
)

// Page is the data every page renders with.
type Page struct {
	Title    string
	Subtitle string
	User     *auth.Identity
	// Checking is set while the session is still being resolved.
	Checking   bool
	Onboarding bool
	// Current is the fragment of the page, posted back by the onboarding
	// prompt so "Got it" stays put.
	Current string
	Error   string
	Content any
}

// Catalog is the content of the catalog page.
type Catalog struct {
	Templates []models.WorkoutTemplate
	// Pending marks templates whose vote is still in flight.
	Pending map[string]bool
}

// Detail is the content of the template detail page.
type Detail struct {
	Template *models.WorkoutTemplate
}

// LogForm mirrors the fields of the workout entry form.
type LogForm struct {
	Title           string
	PerformedOn     string
	TrackingType    string
	DurationMinutes string
	Sets            string
	Reps            string
	Notes           string
	TemplateID      string
}

// Log is the content of the private workout log page.
type Log struct {
	Form    LogForm
	Entries []models.WorkoutLogEntry
	// Action is the form target, keeping any template association.
	Action string
}

// Credentials echoes the non-secret fields of a sign-in or sign-up form.
type Credentials struct {
	Username string
	Email    string
}
