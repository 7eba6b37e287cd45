package route

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestParse_EmptyFragmentsNormalizeToRoot(t *testing.T) {
	t.Parallel()

	for _, f := range []string{"", "#", "#/", "#?x=1", "?x=1"} {
		assert.Equal(t, "/", Parse(f).Path, "fragment %q", f)
	}
}

func TestParse_PathNeverEmpty(t *testing.T) {
	t.Parallel()

	faker := gofakeit.New(42)
	for i := 0; i < 200; i++ {
		f := faker.LetterN(uint(faker.Number(0, 6)))
		if faker.Bool() {
			f = "#" + f
		}
		if faker.Bool() {
			f += "?" + faker.Word() + "=" + faker.Word()
		}
		assert.NotEmpty(t, Parse(f).Path, "fragment %q", f)
	}
}

func TestParse_QueryDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		path     string
		key      string
		want     string
	}{
		{"plain id", "#/workout?id=abc", "/workout", "id", "abc"},
		{"percent space", "#/workout?id=a%20b", "/workout", "id", "a b"},
		{"plus space", "#/log?title=Leg+Day", "/log", "title", "Leg Day"},
		{"last wins", "#/workout?id=first&id=second", "/workout", "id", "second"},
		{"split on first question mark", "#/log?title=a?b", "/log", "title", "a?b"},
		{"no leading hash", "/workout?id=x", "/workout", "id", "x"},
		{"only one hash stripped", "##/workout?id=x", "#/workout", "id", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := Parse(tt.fragment)
			assert.Equal(t, tt.path, loc.Path)
			assert.Equal(t, tt.want, loc.Query.Get(tt.key))
		})
	}
}

func TestParse_MalformedEscapeDropsOnlyThatPair(t *testing.T) {
	t.Parallel()

	loc := Parse("#/log?title=%zz&templateId=t1")
	assert.Equal(t, "", loc.Query.Get("title"))
	assert.Equal(t, "t1", loc.Query.Get("templateId"))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fragment string
		want     Route
	}{
		{"#/", Route{Kind: KindCatalog, Path: "/"}},
		{"#/login", Route{Kind: KindLogin, Path: "/login"}},
		{"#/signup", Route{Kind: KindSignup, Path: "/signup"}},
		{"#/log", Route{Kind: KindLog, Path: "/log"}},
		{"#/log?title=Push&templateId=push-day", Route{Kind: KindLog, Path: "/log", Title: "Push", TemplateID: "push-day"}},
		{"#/workout?id=abc", Route{Kind: KindDetail, Path: "/workout", ID: "abc"}},
		{"#/workout", Route{Kind: KindCatalog, Path: "/workout"}},
		{"#/workout?id=", Route{Kind: KindCatalog, Path: "/workout"}},
		{"#/nope", Route{Kind: KindNotFound, Path: "/nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRoute(tt.fragment))
		})
	}
}

func TestRouteFragment_RoundTrips(t *testing.T) {
	t.Parallel()

	routes := []Route{
		{Kind: KindCatalog, Path: "/"},
		{Kind: KindLogin, Path: "/login"},
		{Kind: KindSignup, Path: "/signup"},
		{Kind: KindLog, Path: "/log", Title: "Upper & Lower", TemplateID: "t 1"},
		{Kind: KindDetail, Path: "/workout", ID: "a b/c"},
	}
	for _, r := range routes {
		assert.Equal(t, r, ParseRoute(r.Fragment()))
	}
}

func TestFromRequestAndHref(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#/", FromRequest("", ""))
	assert.Equal(t, "#/workout?id=x", FromRequest("/workout", "id=x"))
	assert.Equal(t, "/", Href("#/"))
	assert.Equal(t, "/", Href("#"))
	assert.Equal(t, "/login", Href("#/login"))
	assert.Equal(t, "/log?title=A", Href("#/log?title=A"))
}
