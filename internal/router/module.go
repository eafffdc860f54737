package router

import "github.com/gin-gonic/gin"

// Module is one routable feature area. Each module mounts its own
// endpoints on the shared API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
