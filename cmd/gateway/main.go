package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/cryptocross/cryptocross/internal/api/http"
	auth "github.com/cryptocross/cryptocross/internal/auth/middleware"
	"github.com/cryptocross/cryptocross/internal/config"
	"github.com/cryptocross/cryptocross/internal/db"
	"github.com/cryptocross/cryptocross/internal/invite"
	"github.com/cryptocross/cryptocross/internal/moderation"
	"github.com/cryptocross/cryptocross/internal/org"
	"github.com/cryptocross/cryptocross/internal/quiz"
	"github.com/cryptocross/cryptocross/internal/rbac"
	"github.com/cryptocross/cryptocross/internal/session"
	"github.com/cryptocross/cryptocross/internal/store"
	"github.com/cryptocross/cryptocross/internal/store/filestore"
	"github.com/cryptocross/cryptocross/internal/store/sqlstore"
	"github.com/cryptocross/cryptocross/internal/user"
)

func main() {
	cfg := config.FromEnv()

	// --- Store ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var records store.Records
	switch cfg.StoreDriver {
	case "sqlite", "postgres":
		dbh, err := db.Open(ctx, db.Driver(cfg.StoreDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		records = sqlstore.New(dbh)
	default:
		fs, err := filestore.New(cfg.DataDir)
		if err != nil {
			log.Fatalf("file store: %v", err)
		}
		records = fs
	}

	// --- Services ---
	users := user.NewService(records)
	quizzes := quiz.NewService(records)
	sessions := session.NewManager(records)
	orgs := org.NewService(records)
	invites := invite.NewService(records, users, orgs)
	mods := moderation.NewService(records)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	admin := auth.AdminAccount{Email: cfg.AdminEmail, Name: cfg.AdminName, PassHash: cfg.AdminPassHash}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, users, admin))
	r.Post("/auth/register", auth.RegisterHandler(authSvc, users))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	// Protected API (JWT → store role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromStore(users, cfg.Mode == config.ModeOffline))

		// Quizzes
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(quizzes))
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(quizzes, users))
		pr.With(rbac.Require("quiz:import")).
			Post("/quizzes/import", api.ImportQuizHandler(quizzes, users))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:update")).
			Patch("/quizzes/{quizID}", api.UpdateQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:delete")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:submit")).
			Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(quizzes, sessions, users))

		// Results
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results", api.ListResultsHandler(quizzes))
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results/{resultID}", api.GetResultHandler(quizzes))

		// Sessions
		pr.With(rbac.Require("session:create")).
			Post("/sessions", api.CreateSessionHandler(sessions, quizzes, cfg.PublicURL, cfg.SessionDuration))
		pr.With(rbac.RequireAny("session:list", "session:create")).
			Get("/sessions", api.ListSessionsHandler(sessions, quizzes))
		pr.With(rbac.Require("session:join")).
			Get("/sessions/join/{code}", api.JoinSessionHandler(sessions, quizzes))
		pr.With(rbac.RequireAny("session:view", "session:join")).
			Get("/sessions/{sessionID}", api.GetSessionHandler(sessions, cfg.PublicURL))
		pr.With(rbac.Require("session:end")).
			Post("/sessions/{sessionID}/end", api.EndSessionHandler(sessions))
		pr.With(rbac.RequireAny("session:results", "session:join")).
			Get("/sessions/{sessionID}/results", api.SessionResultsHandler(sessions))
		pr.With(rbac.RequireAny("session:results", "session:join")).
			Get("/sessions/{sessionID}/leaderboard", api.LeaderboardHandler(sessions))

		// Users
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(users))
		pr.Get("/users/me", api.MeHandler(users))
		pr.With(rbac.Require("users:list")).
			Get("/users/{userID}", api.GetUserHandler(users))
		pr.Patch("/users", api.UpdateUserHandler(users))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(users))

		// Organizations
		pr.With(rbac.Require("org:create")).
			Post("/orgs", api.CreateOrgHandler(orgs))
		pr.With(rbac.Require("org:view")).
			Get("/orgs", api.ListOrgsHandler(orgs))
		pr.With(rbac.Require("org:view")).
			Get("/orgs/{orgID}", api.GetOrgHandler(orgs))
		pr.With(rbac.Require("org:members")).
			Post("/orgs/{orgID}/members", api.AddOrgMemberHandler(orgs))
		pr.With(rbac.Require("org:view")).
			Get("/orgs/{orgID}/members", api.ListOrgMembersHandler(orgs))
		pr.With(rbac.Require("org:members")).
			Delete("/orgs/{orgID}/members/{userID}", api.RemoveOrgMemberHandler(orgs))

		// Invitations
		pr.With(rbac.Require("invite:issue")).
			Post("/invitations/issue", api.IssueInvitesHandler(invites))
		pr.With(rbac.Require("invite:issue")).
			Post("/invitations/upload", api.UploadInvitesHandler(invites))
		pr.With(rbac.Require("invite:view")).
			Get("/invitations", api.ListInvitesHandler(invites))
		pr.With(rbac.Require("invite:view")).
			Get("/invitations/{inviteID}", api.CredentialSheetHandler(invites, users))
		pr.With(rbac.Require("invite:cleanup")).
			Post("/invitations/cleanup", api.CleanupInvitesHandler(invites))

		// Moderation
		pr.With(rbac.Require("moderation:view")).
			Get("/moderation", api.ListModerationHandler(mods))
		pr.With(rbac.Require("quiz:update")).
			Post("/quizzes/{quizID}/request-publish", api.RequestPublishHandler(mods, quizzes))
		pr.With(rbac.Require("quiz:view")).
			Post("/quizzes/{quizID}/report", api.ReportQuizHandler(mods, quizzes))
		pr.With(rbac.Require("moderation:decide")).
			Post("/moderation/{itemID}/decide", api.DecideModerationHandler(mods, quizzes))
	})

	log.Printf("listening on %s (mode=%s, store=%s)", cfg.HTTPAddr, cfg.Mode, cfg.StoreDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
