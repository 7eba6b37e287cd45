// Package route parses fragment identifiers into routes and models the
// addressable location that view transitions are written to.
package route

import (
	"net/url"
	"strings"
)

// Kind enumerates the views a location can resolve to.
type Kind int

const (
	KindNotFound Kind = iota
	KindCatalog
	KindLogin
	KindSignup
	KindLog
	KindDetail
)

func (k Kind) String() string {
	switch k {
	case KindCatalog:
		return "catalog"
	case KindLogin:
		return "login"
	case KindSignup:
		return "signup"
	case KindLog:
		return "log"
	case KindDetail:
		return "detail"
	default:
		return "not_found"
	}
}

// Paths served by the application.
const (
	PathCatalog = "/"
	PathLogin   = "/login"
	PathSignup  = "/signup"
	PathLog     = "/log"
	PathDetail  = "/workout"
)

// Query is a decoded query string. Repeated keys keep the last value.
type Query map[string]string

// Get returns the value for key, or "" when absent.
func (q Query) Get(key string) string {
	return q[key]
}

// Location is a parsed fragment: a path that is never empty plus its query.
type Location struct {
	Path  string
	Query Query
}

// Route is the resolved view variant for a location. Title and TemplateID
// are only meaningful for KindLog, ID only for KindDetail.
type Route struct {
	Kind       Kind
	Path       string
	Title      string
	TemplateID string
	ID         string
}

// Parse turns a raw fragment such as "#/workout?id=abc" into a Location.
// A single leading '#' is stripped, the remainder is split on the first '?'
// and an empty path normalizes to "/".
func Parse(fragment string) Location {
	raw := strings.TrimPrefix(fragment, "#")

	pathPart, queryPart, _ := strings.Cut(raw, "?")
	if pathPart == "" {
		pathPart = PathCatalog
	}

	return Location{Path: pathPart, Query: parseQuery(queryPart)}
}

func parseQuery(raw string) Query {
	q := Query{}
	if raw == "" {
		return q
	}
	// ParseQuery keeps every well-formed pair even when it reports an error
	// for a malformed one.
	values, _ := url.ParseQuery(raw)
	for key, vals := range values {
		if len(vals) > 0 {
			q[key] = vals[len(vals)-1]
		}
	}
	return q
}

// Resolve maps a location onto its route variant. Paths are not validated
// at parse time; unknown ones resolve to KindNotFound here and the caller
// decides the fallback.
func Resolve(loc Location) Route {
	r := Route{Path: loc.Path}
	switch loc.Path {
	case PathCatalog:
		r.Kind = KindCatalog
	case PathLogin:
		r.Kind = KindLogin
	case PathSignup:
		r.Kind = KindSignup
	case PathLog:
		r.Kind = KindLog
		r.Title = loc.Query.Get("title")
		r.TemplateID = loc.Query.Get("templateId")
	case PathDetail:
		id := loc.Query.Get("id")
		if id == "" {
			r.Kind = KindCatalog
			return r
		}
		r.Kind = KindDetail
		r.ID = id
	default:
		r.Kind = KindNotFound
	}
	return r
}

// ParseRoute is Resolve(Parse(fragment)).
func ParseRoute(fragment string) Route {
	return Resolve(Parse(fragment))
}

// Fragment renders the canonical fragment for the route.
func (r Route) Fragment() string {
	switch r.Kind {
	case KindLogin:
		return "#" + PathLogin
	case KindSignup:
		return "#" + PathSignup
	case KindLog:
		return LogFragment(r.Title, r.TemplateID)
	case KindDetail:
		return DetailFragment(r.ID)
	default:
		return CatalogFragment
	}
}

// Fragments for the fixed routes.
const (
	CatalogFragment = "#/"
	LoginFragment   = "#/login"
	SignupFragment  = "#/signup"
)

// LogFragment builds "#/log" with optional prefill parameters.
func LogFragment(title, templateID string) string {
	v := url.Values{}
	if title != "" {
		v.Set("title", title)
	}
	if templateID != "" {
		v.Set("templateId", templateID)
	}
	if len(v) == 0 {
		return "#" + PathLog
	}
	return "#" + PathLog + "?" + v.Encode()
}

// DetailFragment builds "#/workout?id=<id>".
func DetailFragment(id string) string {
	return "#" + PathDetail + "?id=" + url.QueryEscape(id)
}

// FromRequest converts an HTTP request target into the equivalent fragment.
func FromRequest(path, rawQuery string) string {
	if path == "" {
		path = PathCatalog
	}
	if rawQuery == "" {
		return "#" + path
	}
	return "#" + path + "?" + rawQuery
}

// Href converts a fragment into the HTTP path serving it.
func Href(fragment string) string {
	loc := strings.TrimPrefix(fragment, "#")
	if loc == "" || strings.HasPrefix(loc, "?") {
		return PathCatalog + loc
	}
	return loc
}
