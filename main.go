package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/provider"
	"github.com/go-pkgz/auth/v2/token"
	"github.com/sethvargo/go-password/password"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinelog/config"
	"cinelog/handlers"
	"cinelog/internal/database"
	"cinelog/services/httpcache"
	"cinelog/services/library"
	"cinelog/services/tmdb"
	"cinelog/services/users"
	"cinelog/utils"
)

func main() {
	cfg, err := config.Load(afero.NewOsFs(), os.Getenv("ENV_FILE"))
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}

	if cfg.LogPath != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	if cfg.TMDBAPIKey == "" && cfg.TMDBBearerToken == "" {
		log.Printf("[main] warning: no TMDB credentials configured, catalog search will return empty results")
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	cache, err := httpcache.Open(cfg.CachePath, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		log.Fatalf("[main] failed to open http cache: %v", err)
	}
	defer cache.Close()

	catalog := tmdb.NewClient(cfg.TMDBAPIKey, cfg.TMDBBearerToken, tmdb.WithHTTPClient(cache))

	userSvc := users.NewService(db)
	ctx := context.Background()
	if err := userSvc.Seed(ctx, []string{cfg.AdminUsername, "Carrie"}, cfg.SeedPasswords); err != nil {
		log.Fatalf("[main] failed to seed accounts: %v", err)
	}

	librarySvc := library.NewService(db, catalog)

	secret := cfg.AuthSecret
	if secret == "" {
		secret, err = password.Generate(32, 8, 0, false, false)
		if err != nil {
			log.Fatalf("[main] failed to generate auth secret: %v", err)
		}
		log.Printf("[main] warning: AUTH_SECRET not set, sessions will not survive a restart")
	}

	authSvc := auth.NewService(auth.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		TokenDuration:  time.Hour * 24,
		CookieDuration: time.Hour * 24 * 30,
		Issuer:         "cinelog",
		URL:            "http://localhost" + cfg.ListenAddr,
		AvatarStore:    avatar.NewLocalFS(cfg.AvatarPath),
		DisableXSRF:    true,
	})
	authSvc.AddDirectProvider("local", provider.CredCheckerFunc(userSvc.Check))

	router := utils.NewRouter()

	authRoutes, avatarRoutes := authSvc.Handlers()
	router.PathPrefix("/auth").Handler(authRoutes)
	router.PathPrefix("/avatar").Handler(avatarRoutes)

	middleware := authSvc.Middleware()

	movieHandler := handlers.NewMovieHandler(librarySvc, catalog, userSvc)
	reviewHandler := handlers.NewReviewHandler(librarySvc, userSvc)
	tagHandler := handlers.NewTagHandler(librarySvc, userSvc)
	authHandler := handlers.NewAuthHandler(userSvc, cfg.AdminUsername)

	// Session probe stays outside the guard so the login page can call it.
	router.Handle("/api/auth/status", middleware.Trace(http.HandlerFunc(authHandler.Status))).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler { return middleware.Auth(next) })

	api.HandleFunc("/movies", movieHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/movies", movieHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/movies/search", movieHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/movies/{movieID}", movieHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/movies/{movieID}/review", reviewHandler.Upsert).Methods(http.MethodPost)
	api.HandleFunc("/movies/{movieID}/review", reviewHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/movies/{movieID}/tags", tagHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/movies/{movieID}/tags", tagHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/movies/{movieID}/tags/{tagID}", tagHandler.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/tags/predefined", tagHandler.Predefined).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
