package views

import (
	"bytes"
	"io/fs"
	"testing"

	"liftlog/internal/auth"
	"liftlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func render(t *testing.T, page string, data *Page) string {
	t.Helper()
	tmpl, err := Load()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tmpl.Render(&buf, page, data))
	return buf.String()
}

func TestLoad_AllPages(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)
	for _, p := range []string{PageCatalog, PageDetail, PageLog, PageLogin, PageSignup, PageLoading} {
		assert.Contains(t, tmpl.pages, p)
	}
	assert.NotContains(t, tmpl.pages, "layout")
}

func TestRender_UnknownPage(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, tmpl.Render(&buf, "nope", &Page{}))
	assert.Zero(t, buf.Len())
}

func TestRender_NavBySessionState(t *testing.T) {
	out := render(t, PageLoading, &Page{Title: "Loading", Checking: true})
	assert.Contains(t, out, "Checking session…")
	assert.NotContains(t, out, "Log out")

	out = render(t, PageLoading, &Page{Title: "Loading"})
	assert.Contains(t, out, `href="/signup"`)
	assert.NotContains(t, out, "My Workout Log")

	out = render(t, PageLoading, &Page{Title: "Loading", User: &auth.Identity{UserID: "u1", Email: "a@b.co"}})
	assert.Contains(t, out, "My Workout Log")
	assert.Contains(t, out, "a@b.co")
	assert.Contains(t, out, "Log out")
}

func TestRender_Catalog(t *testing.T) {
	tpl := models.WorkoutTemplate{
		ID:            "push-day",
		Title:         "Push Day",
		Muscles:       models.StringList{"Chest", "Triceps"},
		TrackingType:  models.TrackingReps,
		SuggestedSets: intPtr(4),
		SuggestedReps: strPtr("8-12"),
		Exercises:     models.StringList{"Bench", "Dips"},
		LikeCount:     3,
	}
	out := render(t, PageCatalog, &Page{
		Title:   "Workout Catalog",
		Content: Catalog{Templates: []models.WorkoutTemplate{tpl}, Pending: map[string]bool{"push-day": true}},
	})
	assert.Contains(t, out, "Push Day")
	assert.Contains(t, out, "Chest, Triceps")
	assert.Contains(t, out, "Reps-based · 4 sets · 8-12 reps")
	assert.Contains(t, out, "2 total")
	assert.Contains(t, out, `action="/workout/push-day/like"`)
	assert.Contains(t, out, "disabled")
	assert.Contains(t, out, `href="/workout?id=push-day"`)
}

func TestRender_EmptyCatalogOffersSeedOnlyWhenSignedIn(t *testing.T) {
	out := render(t, PageCatalog, &Page{Title: "Workout Catalog", Content: Catalog{}})
	assert.Contains(t, out, "No workouts yet")
	assert.NotContains(t, out, "Create starter catalog")

	out = render(t, PageCatalog, &Page{Title: "Workout Catalog", User: &auth.Identity{UserID: "u1"}, Content: Catalog{}})
	assert.Contains(t, out, "Create starter catalog")
}

func TestRender_DetailAction(t *testing.T) {
	tpl := &models.WorkoutTemplate{ID: "core", Title: "Core", TrackingType: models.TrackingDuration}

	out := render(t, PageDetail, &Page{Title: tpl.Title, Content: Detail{Template: tpl}})
	assert.Contains(t, out, "Log in to track workouts")
	assert.Contains(t, out, "Full body / unspecified")
	assert.Contains(t, out, "No exercises listed.")

	out = render(t, PageDetail, &Page{Title: tpl.Title, User: &auth.Identity{UserID: "u1"}, Content: Detail{Template: tpl}})
	assert.Contains(t, out, "Log this workout")
	assert.Contains(t, out, "/log?templateId=core&amp;title=Core")
}

func TestRender_DetailError(t *testing.T) {
	out := render(t, PageDetail, &Page{Title: "Workout Template", Error: "Workout template not found.", Content: Detail{}})
	assert.Contains(t, out, "Workout template not found.")
	assert.Contains(t, out, "Back to templates")
}

func TestRender_LogKeepsForm(t *testing.T) {
	out := render(t, PageLog, &Page{
		Title: "My Workout Log",
		User:  &auth.Identity{UserID: "u1"},
		Error: "Couldn’t save your workout. Please try again.",
		Content: Log{
			Action: "/log",
			Form:   LogForm{Title: "Legs", PerformedOn: "2024-05-01", TrackingType: "reps", Sets: "5", Notes: "heavy"},
		},
	})
	assert.Contains(t, out, "Couldn’t save your workout.")
	assert.Contains(t, out, `value="Legs"`)
	assert.Contains(t, out, `value="2024-05-01"`)
	assert.Contains(t, out, `<option value="reps" selected>`)
	assert.Contains(t, out, "No workouts logged yet")
}

func TestRender_Onboarding(t *testing.T) {
	out := render(t, PageCatalog, &Page{Title: "Workout Catalog", Onboarding: true, Current: "#/", Content: Catalog{}})
	assert.Contains(t, out, "Welcome to LiftLog")
	assert.Contains(t, out, `action="/onboarding/log"`)
	assert.Contains(t, out, `name="from" value="#/"`)
}

func TestTracking(t *testing.T) {
	assert.Equal(t, "Time-based", Tracking(models.WorkoutTemplate{}))
	assert.Equal(t, "Time-based · 20 min", Tracking(models.WorkoutTemplate{SuggestedDurationMinutes: intPtr(20)}))
	assert.Equal(t, "Reps-based", Tracking(models.WorkoutTemplate{TrackingType: models.TrackingReps}))
	assert.Equal(t, "Reps-based · 10 reps", Tracking(models.WorkoutTemplate{TrackingType: models.TrackingReps, SuggestedReps: strPtr("10")}))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "—", Summary(models.WorkoutLogEntry{TrackingType: models.TrackingDuration}))
	assert.Equal(t, "30 min", Summary(models.WorkoutLogEntry{TrackingType: models.TrackingDuration, DurationMinutes: intPtr(30)}))
	assert.Equal(t, "— sets · 8 reps", Summary(models.WorkoutLogEntry{TrackingType: models.TrackingReps, Reps: strPtr("8")}))
	assert.Equal(t, "3 sets · — reps", Summary(models.WorkoutLogEntry{TrackingType: models.TrackingReps, Sets: intPtr(3)}))
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "", Greeting(nil))
	assert.Equal(t, "a@b.co", Greeting(&auth.Identity{Email: "a@b.co"}))
	assert.Equal(t, "ryan", Greeting(&auth.Identity{Email: "a@b.co", DisplayName: "ryan"}))
}

func TestStatic(t *testing.T) {
	_, err := fs.Stat(Static(), "app.css")
	assert.NoError(t, err)
}
