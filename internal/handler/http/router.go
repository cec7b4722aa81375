package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/config"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/handler/http/middleware"
	jwtpkg "github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/jwt"
)

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Correction CorrectionHandler
	User       UserHandler
	Report     ReportHandler
}

func NewRouter(cfg *config.Config, tokens *jwtpkg.Manager, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "shiftlog"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(tokens.Auth()))
				r.Use(middleware.AuthRequired(tokens.Auth()))
				r.Post("/change-password", h.Auth.ChangePassword)
				r.Get("/verify", h.Auth.Verify)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokens.Auth()))
			r.Use(middleware.AuthRequired(tokens.Auth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Post("/break/start", h.Attendance.StartBreak)
				r.Post("/break/end", h.Attendance.EndBreak)
				r.Get("/status", h.Attendance.Status)
				r.Get("/history", h.Attendance.History)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", h.Leave.Submit)
				r.Get("/my", h.Leave.MyRequests)

				// Manager or admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.ReviewerOnly)
					r.Get("/", h.Leave.ListForReview)
					r.Post("/{id}/approve", h.Leave.Approve)
					r.Post("/{id}/reject", h.Leave.Reject)
				})
			})

			r.Route("/corrections", func(r chi.Router) {
				r.Post("/", h.Correction.Submit)
				r.Get("/my", h.Correction.MyCorrections)

				// Manager or admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.ReviewerOnly)
					r.Get("/", h.Correction.ListForReview)
					r.Post("/{id}/approve", h.Correction.Approve)
					r.Post("/{id}/reject", h.Correction.Reject)
				})
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.User.Profile)
				r.Put("/", h.User.UpdateProfile)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/my", h.Report.MySummary)

				r.Group(func(r chi.Router) {
					r.Use(middleware.ReviewerOnly)
					r.Get("/team", h.Report.TeamReport)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.ReviewerOnly).Get("/", h.User.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.User.Create)
					r.Get("/{id}", h.User.Get)
					r.Put("/{id}", h.User.Update)
					r.Delete("/{id}", h.User.Delete)
				})
			})
		})
	})

	return r
}
