package router

import (
	userapp "github.com/rizkypratama/authguard/internal/application"
	"github.com/rizkypratama/authguard/internal/container"
	pginfra "github.com/rizkypratama/authguard/internal/infrastructure/postgres"
	handlers "github.com/rizkypratama/authguard/internal/interface/http"
	"github.com/rizkypratama/authguard/internal/router/modules"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	roles := pginfra.NewRoleRepository(pool)
	audit := pginfra.NewAuditRepository(pool)

	svc := userapp.NewService(
		users,
		roles,
		container.GetJWT(),
		container.GetHasher(),
		container.GetRedis(),
		container.GetLogger(),
		cfg.ConfirmRequired,
		cfg.SessionTTL,
	)
	svc.Audit = audit
	svc.GCS = container.GetGCS()
	svc.GCSBucket = cfg.GCSBucket
	svc.ES = container.GetES()
	svc.ESUsersIndex = cfg.ESUsersIndex

	userHandler := handlers.NewUserHandler(svc, container.GetLogger(), cfg, container.GetRabbitPub(), audit)
	authHandler := handlers.NewAuthHandler(svc, container.GetRedis(), container.GetLogger(), cfg, container.GetRabbitPub(), audit)
	adminHandler := handlers.NewAdminHandler(svc, container.GetLogger(), audit)
	emailHandler := handlers.NewEmailHandler(container.GetRabbitPub(), container.GetLogger(), cfg)

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewAdminModule(adminHandler, container.GetJWT()))
	r.Add(modules.NewEmailModule(emailHandler, container.GetJWT()))
	if cfg.Debug {
		r.Add(modules.NewDebugModule())
	}
}
