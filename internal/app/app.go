package app

import (
	"net/http"

	"expenses-app-go/internal/config"
	"expenses-app-go/internal/db"
	expensedomain "expenses-app-go/internal/domain/expense"
	scopedomain "expenses-app-go/internal/domain/scope"
	userdomain "expenses-app-go/internal/domain/user"
	"expenses-app-go/internal/identity"
	"expenses-app-go/internal/importer"
	expenserepo "expenses-app-go/internal/repository/postgres/expense"
	scoperepo "expenses-app-go/internal/repository/postgres/scope"
	userrepo "expenses-app-go/internal/repository/postgres/user"
	"expenses-app-go/internal/transport/httpserver"
	"expenses-app-go/internal/transport/httpserver/handler"
	"expenses-app-go/internal/transport/httpserver/middleware"
	"expenses-app-go/pkg/logger"

	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg := config.Load()

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB)
	if err != nil {
		return nil, err
	}

	log.Info("app: running migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	userService := userdomain.NewService(userrepo.NewPostgres(dbConn), identity.NewDirectory(cfg.Identity))
	scopeService := scopedomain.NewService(scoperepo.NewPostgres(dbConn), userService)
	expenseService := expensedomain.NewService(expenserepo.NewPostgres(dbConn))

	handlers := handler.New(
		scopeService,
		expenseService,
		userService,
		importer.NewCSV(cfg.Import.DecimalSeparator),
		log,
	)

	auth := middleware.NewIdentityAuth(cfg.Identity, identity.NewClient(cfg.Identity), log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, auth)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
