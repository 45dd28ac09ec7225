package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	adapthttp "colab/internal/adapter/http"
	"colab/internal/adapter/minio"
	"colab/internal/adapter/postgres"
	"colab/internal/adapter/smtp"
	"colab/internal/app"
	"colab/internal/realtime"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	addr := env("ADDR", ":8080")
	origin := env("ORIGIN", "http://localhost:8080")
	production := env("ENV", "development") == "production"

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, err := minio.New(ctx, minio.Config{
		Endpoint:  env("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: env("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: env("MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    env("MINIO_BUCKET", "colab-files"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
	})
	if err != nil {
		log.Fatalf("object store: %v", err)
	}

	var mailer app.Mailer = smtp.LogMailer{}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		mailer = smtp.New(host, env("SMTP_PORT", "587"),
			os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"),
			env("SMTP_FROM", "no-reply@localhost"))
	}

	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry)
	go broadcaster.Run(ctx)

	sessionSvc := app.NewSessionService(db.Sessions())
	authSvc := app.NewAuthService(db.Users(), sessionSvc, mailer, origin)
	projectSvc := app.NewProjectService(db.Projects(), db.Members(), db.Users(), mailer, origin)
	taskSvc := app.NewTaskService(db.Tasks(), projectSvc, broadcaster)
	fileSvc := app.NewFileService(db.Files(), blobs, projectSvc)
	messageSvc := app.NewMessageService(db.Messages(), projectSvc)
	adminSvc := app.NewAdminService(db.Users(), db.Projects(), db.Tasks(), db.Files(), db.Messages())

	rtHandler := realtime.NewHandler(registry, authSvc, db.Members())

	h := adapthttp.New(adapthttp.Config{
		Auth:       authSvc,
		Projects:   projectSvc,
		Tasks:      taskSvc,
		Files:      fileSvc,
		Messages:   messageSvc,
		Admin:      adminSvc,
		Realtime:   rtHandler,
		OIDC:       loadOIDC(ctx, origin),
		Production: production,
	}).Handler()

	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// loadOIDC builds single sign-on config when OIDC_ISSUER is set; SSO stays
// disabled otherwise.
func loadOIDC(ctx context.Context, origin string) adapthttp.OIDCConfig {
	issuer := os.Getenv("OIDC_ISSUER")
	if issuer == "" {
		return adapthttp.OIDCConfig{}
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		log.Fatalf("oidc provider: %v", err)
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  origin + "/api/auth/sso/callback",
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
