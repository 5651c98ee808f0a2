package routes

import (
	"net/http"

	_ "github.com/Dosada05/tcg-tournaments/docs"
	"github.com/Dosada05/tcg-tournaments/handlers"
	"github.com/Dosada05/tcg-tournaments/middleware"
	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

type Handlers struct {
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Schedule     *handlers.ScheduleHandler
	Notification *handlers.NotificationHandler
	Message      *handlers.MessageHandler
	Template     *handlers.TemplateHandler
	WebSocket    *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	optionalAuth := middleware.OptionalAuthenticate(opts.JWTSecret)
	operators := middleware.Authorize(models.RoleOwner, models.RoleAdmin)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.With(optionalAuth).Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", h.Tournament.ListHandler)
			r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
			r.Get("/{tournamentID}/registrations", h.Registration.ListHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/registrations", h.Registration.RegisterHandler)
			r.Get("/{tournamentID}/messages", h.Message.ListHandler)

			r.Group(func(r chi.Router) {
				r.Use(operators)
				r.Post("/", h.Tournament.CreateHandler)
				r.Patch("/{tournamentID}", h.Tournament.UpdateHandler)
				r.Post("/{tournamentID}/publish", h.Tournament.PublishHandler)
				r.Post("/{tournamentID}/close", h.Tournament.CloseRegistrationsHandler)
				r.Post("/{tournamentID}/start", h.Tournament.StartHandler)
				r.Post("/{tournamentID}/cancel", h.Tournament.CancelHandler)
				r.Post("/{tournamentID}/complete", h.Tournament.CompleteHandler)
				r.Post("/{tournamentID}/check-in", h.Registration.CheckInAllHandler)
				r.Post("/{tournamentID}/messages", h.Message.PostHandler)
			})
		})
	})

	router.Route("/registrations/{registrationID}", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/withdraw", h.Registration.WithdrawHandler)

		r.Group(func(r chi.Router) {
			r.Use(operators)
			r.Post("/confirm", h.Registration.ConfirmHandler)
			r.Post("/present", h.Registration.PresentHandler)
			r.Post("/absent", h.Registration.AbsentHandler)
			r.Post("/cancel", h.Registration.CancelHandler)
			r.Post("/paid", h.Registration.PaidHandler)
			r.Post("/refunded", h.Registration.RefundedHandler)
			r.Delete("/", h.Registration.DeleteHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate, operators)
		r.Post("/schedules", h.Schedule.CreateHandler)
		r.Patch("/schedules/{scheduleID}", h.Schedule.SetActiveHandler)
		r.Delete("/schedules/{scheduleID}", h.Schedule.DeleteHandler)
		r.Post("/schedules/{scheduleID}/generate", h.Schedule.GenerateNextHandler)
		r.Get("/stores/{storeID}/schedules", h.Schedule.ListByStoreHandler)

		r.Post("/templates", h.Template.CreateHandler)
		r.Get("/templates", h.Template.ListHandler)
		r.Get("/templates/{templateID}", h.Template.GetByIDHandler)
		r.Delete("/templates/{templateID}", h.Template.DeleteHandler)
	})

	router.Route("/notifications", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", h.Notification.ListHandler)
		r.Post("/read", h.Notification.MarkReadHandler)
	})
}
