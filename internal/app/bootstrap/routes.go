// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	authfacebookfeature "github.com/siddhanthpranavrao/authentication/internal/app/features/authfacebook"
	authgooglefeature "github.com/siddhanthpranavrao/authentication/internal/app/features/authgoogle"
	errorsfeature "github.com/siddhanthpranavrao/authentication/internal/app/features/errors"
	healthfeature "github.com/siddhanthpranavrao/authentication/internal/app/features/health"
	homefeature "github.com/siddhanthpranavrao/authentication/internal/app/features/home"
	loginfeature "github.com/siddhanthpranavrao/authentication/internal/app/features/login"
	logoutfeature "github.com/siddhanthpranavrao/authentication/internal/app/features/logout"
	registerfeature "github.com/siddhanthpranavrao/authentication/internal/app/features/register"
	secretsfeature "github.com/siddhanthpranavrao/authentication/internal/app/features/secrets"
	submitfeature "github.com/siddhanthpranavrao/authentication/internal/app/features/submit"
	"github.com/siddhanthpranavrao/authentication/internal/app/store/oauthstate"
	"github.com/siddhanthpranavrao/authentication/internal/app/store/sessions"
	userstore "github.com/siddhanthpranavrao/authentication/internal/app/store/users"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It creates the session manager, boots the
// template engine, and mounts a feature router per route.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Server-side session records live in Mongo; the cookie only carries the
	// opaque token.
	sessionStore := sessions.New(deps.MongoDatabase, appCfg.SessionTTL)
	sessionMgr.SetSessionStore(sessionStore)

	// Fetch fresh user data on each request so account changes take effect
	// immediately, not at next login.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Shared collaborators for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	users := userstore.New(deps.MongoDatabase)
	stateStore := oauthstate.New(deps.MongoDatabase)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	secretsHandler := secretsfeature.NewHandler(users, errLog, logger)
	r.Mount("/secrets", secretsfeature.Routes(secretsHandler))

	// Local authentication
	registerHandler := registerfeature.NewHandler(users, sessionMgr, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// OAuth authentication
	googleHandler := authgooglefeature.NewHandler(
		users, sessionMgr, stateStore,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
		logger,
	)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	facebookHandler := authfacebookfeature.NewHandler(
		users, sessionMgr, stateStore,
		appCfg.FacebookAppID, appCfg.FacebookAppSecret, appCfg.BaseURL,
		logger,
	)
	r.Mount("/auth/facebook", authfacebookfeature.Routes(facebookHandler))

	// Secret submission (signed-in users only)
	submitHandler := submitfeature.NewHandler(users, errLog, logger)
	r.Mount("/submit", submitfeature.Routes(submitHandler, sessionMgr))

	return r, nil
}
