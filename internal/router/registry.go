package router

import "github.com/gin-gonic/gin"

// Registry collects feature modules and mounts them under /api once
// wiring is complete.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup

	groupMW []gin.HandlerFunc
	mods    []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use queues middleware for the whole /api group, ahead of module routes.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.groupMW = append(r.groupMW, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.mods = append(r.mods, mods...)
}

// RegisterAll applies the queued middleware and lets every module
// register its routes.
func (r *Registry) RegisterAll() {
	if len(r.groupMW) > 0 {
		r.API.Use(r.groupMW...)
	}
	for _, m := range r.mods {
		m.Register(r.API)
	}
}
