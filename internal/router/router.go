package router

import (
	"maps"
	"slices"
	"time"

	"minihttp/internal/request"
	"minihttp/internal/response"
)

// Handler produces the response for a request line that already matched.
type Handler func(line request.RequestLine) response.Response

const (
	MethodGET = "GET"

	// FaviconPath is requested by browsers on their own; it gets an empty 204.
	FaviconPath = "/favicon.ico"

	// TimeLayout renders as YYYY-MM-DD HH:MM:SS TZ.
	TimeLayout = "2006-01-02 15:04:05 MST"
)

// Router maps exact GET paths to canned pages. Anything it does not know
// becomes a 404, and every method but GET a 405.
type Router struct {
	routes map[string]Handler
	now    func() time.Time
	loc    *time.Location
}

type Option func(*Router)

// WithClock replaces time.Now for the /time page.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// WithLocation sets the zone /time is rendered in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Router) {
		r.loc = loc
	}
}

func New(opts ...Option) *Router {
	r := &Router{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.routes = map[string]Handler{
		"/":           r.index,
		"/index.html": r.index,
		"/hello":      r.hello,
		"/time":       r.currentTime,
	}

	return r
}

// Route dispatches on method first, then on the exact target. Query strings
// and trailing slashes are not normalized.
func (r *Router) Route(line request.RequestLine) response.Response {
	if line.Method != MethodGET {
		return methodNotAllowed(line.Method)
	}

	if line.RequestTarget == FaviconPath {
		return response.New(response.NO_CONTENT, response.ContentTypePlain, nil)
	}

	handler, ok := r.routes[line.RequestTarget]
	if !ok {
		return notFound(line.RequestTarget)
	}

	return handler(line)
}

// Paths lists the GET targets answered with 200, sorted.
func (r *Router) Paths() []string {
	return slices.Sorted(maps.Keys(r.routes))
}

func (r *Router) index(request.RequestLine) response.Response {
	return response.HTML(response.OK, indexPage)
}

func (r *Router) hello(request.RequestLine) response.Response {
	return response.HTML(response.OK, helloPage)
}

func (r *Router) currentTime(request.RequestLine) response.Response {
	stamp := r.now().In(r.loc).Format(TimeLayout)
	return response.HTML(response.OK, timePage(stamp))
}

func notFound(path string) response.Response {
	return response.HTML(response.NOT_FOUND, notFoundPage(path))
}

func methodNotAllowed(method string) response.Response {
	return response.HTML(response.METHOD_NOT_ALLOWED, methodNotAllowedPage(method))
}
