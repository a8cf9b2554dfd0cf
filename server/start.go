package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"blog-service/auth"
	"blog-service/config"
	"blog-service/database"
	"blog-service/handlers"
	"blog-service/session"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server timeouts.
const (
	ReadHeaderTimeout = 1 * time.Second
	ReadTimeout       = 5 * time.Second
	WriteTimeout      = 5 * time.Second
	ShutdownTimeout   = 10 * time.Second
)

// New assembles the application: middleware chain, the /auth routes and the
// public pages, all served from the given pool.
func New(cfg *config.Config, dbConn *sqlx.DB, logger *zap.Logger) (http.Handler, error) {
	views, err := handlers.NewViews()
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(session.Options{
		SecretKey: []byte(cfg.SecretKey),
		Secure:    cfg.SecureCookies,
		MaxAge:    cfg.SessionMaxAge,
	})
	connManager := database.NewManager(dbConn, logger)
	loader := auth.NewLoader(sessions, logger)

	authHandler := handlers.NewAuthHandler(sessions, views, logger)
	indexHandler := handlers.NewIndexHandler(views, logger)

	router := mux.NewRouter()
	// runs for every routed request, in order
	router.Use(connManager.Middleware, loader.Middleware)

	router.HandleFunc("/health", indexHandler.Health).Methods(http.MethodGet).Name("health")
	router.HandleFunc("/hello", indexHandler.Hello).Methods(http.MethodGet).Name("hello")
	router.HandleFunc(auth.IndexPath, indexHandler.Index).Methods(http.MethodGet).Name("index")

	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).
		Methods(http.MethodGet, http.MethodPost).Name("auth.register")
	authRouter.HandleFunc("/login", authHandler.Login).
		Methods(http.MethodGet, http.MethodPost).Name("auth.login")
	authRouter.HandleFunc("/logout", authHandler.Logout).
		Methods(http.MethodGet).Name("auth.logout")
	authRouter.Handle("/me", auth.LoginRequired(http.HandlerFunc(authHandler.Me))).
		Methods(http.MethodGet).Name("auth.me")

	var handler http.Handler = router
	handler = gorillahandlers.CustomLoggingHandler(io.Discard, handler, accessLog(logger))
	handler = handlers.RequestID(handler)
	handler = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(zap.NewStdLog(logger.Named("recovery"))),
	)(handler)
	return handler, nil
}

// accessLog writes one structured line per request.
func accessLog(logger *zap.Logger) gorillahandlers.LogFormatter {
	return func(_ io.Writer, params gorillahandlers.LogFormatterParams) {
		logger.Info("request",
			zap.String("method", params.Request.Method),
			zap.String("path", params.URL.Path),
			zap.Int("status", params.StatusCode),
			zap.Int("size", params.Size),
			zap.Duration("duration", time.Since(params.TimeStamp)),
			zap.String("request_id", handlers.GetRequestID(params.Request.Context())),
		)
	}
}

// Serve serves handler on listener until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	grp.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return grp.Wait()
}

// StartServer opens the store, assembles the application and serves it on
// cfg.Addr until ctx is canceled.
func StartServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (runErr error) {
	logger.Info("Starting blog service...")

	dbConn, err := database.InitializeDatabase(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}()

	handler, err := New(cfg, dbConn, logger)
	if err != nil {
		return err
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	logger.Info("Blog service started", zap.String("addr", listener.Addr().String()))
	logger.Info("Auth endpoints: GET/POST /auth/register, GET/POST /auth/login, GET /auth/logout, GET /auth/me")
	return Serve(ctx, listener, handler, logger)
}
