// Package router mounts the API resources on the gin engine.
//
// Every resource follows the same layout: the collection at /<name>/ and
// single objects at /<name>/:id/, both with a trailing slash.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CRUDHandler serves the standard endpoints of a resource
type CRUDHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Patch(c *gin.Context)
	Delete(c *gin.Context)
}

// Resource is the route table of one API resource
type Resource struct {
	name   string
	routes []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewResource creates an empty resource mounted at /name
func NewResource(name string) *Resource {
	return &Resource{name: name}
}

// NewCRUDResource creates a resource with the list, create, retrieve, update,
// partial update and delete endpoints of h
func NewCRUDResource(name string, h CRUDHandler) *Resource {
	return NewResource(name).
		Handle(http.MethodGet, "/", h.List).
		Handle(http.MethodPost, "/", h.Create).
		Handle(http.MethodGet, "/:id/", h.Get).
		Handle(http.MethodPut, "/:id/", h.Update).
		Handle(http.MethodPatch, "/:id/", h.Patch).
		Handle(http.MethodDelete, "/:id/", h.Delete)
}

// Handle adds a route relative to the resource root
func (r *Resource) Handle(method, path string, handlers ...gin.HandlerFunc) *Resource {
	r.routes = append(r.routes, route{method: method, path: path, handlers: handlers})
	return r
}

// Name returns the path segment the resource is mounted under
func (r *Resource) Name() string {
	return r.name
}

// Routes lists "METHOD /name/path" for every route
func (r *Resource) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt.method+" /"+r.name+rt.path)
	}
	return out
}

// Mount registers the routes under rg
func (r *Resource) Mount(rg *gin.RouterGroup) {
	group := rg.Group("/" + r.name)
	for _, rt := range r.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}

// Router mounts resources behind the API middleware. Routes registered on the
// engine directly, such as health and docs, do not pass through it.
type Router struct {
	engine     *gin.Engine
	prefix     string
	middleware []gin.HandlerFunc
	resources  []*Resource
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithPrefix mounts every resource under prefix, e.g. "/api". The default is the root.
func WithPrefix(prefix string) RouterOption {
	return func(r *Router) { r.prefix = prefix }
}

// WithMiddleware applies middleware to the resources only
func WithMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.middleware = append(r.middleware, middleware...) }
}

// NewRouter creates a Router for engine
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a resource for Setup
func (r *Router) Register(res *Resource) *Router {
	r.resources = append(r.resources, res)
	return r
}

// Setup mounts the registered resources and returns their routes
func (r *Router) Setup() []string {
	api := r.engine.Group(r.prefix, r.middleware...)
	var mounted []string
	for _, res := range r.resources {
		res.Mount(api)
		mounted = append(mounted, res.Routes()...)
	}
	return mounted
}
