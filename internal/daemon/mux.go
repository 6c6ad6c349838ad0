package daemon

import (
	"net/http"
)

type Middleware = func(http.Handler) http.Handler

// ServeMux separates tenant routes, which run through the tenancy chain,
// from system routes such as metrics and health that never boot a tenant.
type ServeMux struct {
	httpServeMux http.ServeMux
	tenancy      []Middleware
}

// NewServeMux wraps tenant routes with the given middlewares. The first
// middleware is the outermost one.
func NewServeMux(tenancy ...Middleware) *ServeMux {
	return &ServeMux{
		httpServeMux: http.ServeMux{},
		tenancy:      tenancy,
	}
}

func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.httpServeMux.ServeHTTP(w, r)
}

// HandleFunc registers a tenant route.
func (m *ServeMux) HandleFunc(
	pattern string,
	handler func(http.ResponseWriter, *http.Request),
) {
	m.httpServeMux.Handle(pattern, chain(http.HandlerFunc(handler), m.tenancy...))
}

// HandleSystem registers a route outside of the tenancy chain.
func (m *ServeMux) HandleSystem(pattern string, handler http.Handler) {
	m.httpServeMux.Handle(pattern, handler)
}

func chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}
