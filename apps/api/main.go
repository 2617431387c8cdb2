package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/minicrm/apps/api/echo"
	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/dashboard"
	"github.com/trezcool/minicrm/core/feedback"
	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/core/student"
	"github.com/trezcool/minicrm/core/user"
	logsvc "github.com/trezcool/minicrm/services/logger"
	"github.com/trezcool/minicrm/storage/database"
	sqlxrepos "github.com/trezcool/minicrm/storage/database/sqlx"
	"github.com/trezcool/minicrm/storage/session"
	"github.com/trezcool/minicrm/storage/uploads"
)

// TODO:
// - session expiry & CSRF tokens
// - HTML views (echo.Renderer); pages are JSON for now
func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up sessions
	sessStore, closeStore, err := setUpSessionStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session store: %v", err), err)
	}
	defer closeStore()

	// set up services
	productSvc := product.NewService(sqlxrepos.NewProductRepository(db), conf.Pagination.PageSize)
	deps := &echoapi.Deps{
		Conf:        conf,
		Logger:      logger,
		Sessions:    session.NewManager(sessStore, conf.SecretKey, conf.AppName),
		Uploads:     uploads.NewStore(conf.Uploads.Dir, conf.Uploads.URLPrefix, conf.Uploads.AllowedExtensions),
		UserSvc:     user.NewService(sqlxrepos.NewUserRepository(db)),
		StudentSvc:  student.NewService(sqlxrepos.NewStudentRepository(db), conf.Pagination.PageSize),
		ProductSvc:  productSvc,
		OrderSvc:    order.NewService(sqlxrepos.NewOrderRepository(db), productSvc),
		FeedbackSvc: feedback.NewService(sqlxrepos.NewFeedbackRepository(db)),
	}
	deps.DashboardSvc = dashboard.NewService(deps.UserSvc, deps.StudentSvc, deps.ProductSvc, deps.OrderSvc)
	deps.Validate, deps.Translator = core.NewValidator()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(deps)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	ctx := context.Background()

	db, err := database.Open(ctx, conf.Database)
	if err != nil {
		return nil, err
	}
	if conf.Database.AutoMigrate {
		if err = database.Migrate(ctx, db.DB, conf.Database.Engine, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func setUpSessionStore(conf *core.Config) (session.Store, func(), error) {
	if conf.Session.Store != "redis" {
		return session.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: conf.Session.RedisAddr,
		DB:   conf.Session.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return session.NewRedisStore(client), func() { _ = client.Close() }, nil
}
