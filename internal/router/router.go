package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "household-med-tracker/internal/adapters/storage/memory"
	pg "household-med-tracker/internal/adapters/storage/postgres"
	"household-med-tracker/internal/domain/adherence"
	"household-med-tracker/internal/domain/caregrants"
	"household-med-tracker/internal/domain/doses"
	"household-med-tracker/internal/domain/medications"
	"household-med-tracker/internal/domain/members"
	"household-med-tracker/internal/domain/schedules"
	"household-med-tracker/internal/middleware"
	"household-med-tracker/internal/platform/logger"
	"household-med-tracker/internal/ports/auth"
	"household-med-tracker/internal/ports/notify"
	"household-med-tracker/internal/reminders"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: logger de la app; default NewFromEnv.
	Logger logger.Logger

	// Opcional: destino de recordatorios; si es nil no se arma dispatcher.
	Notifier notify.Notifier
}

// NewRouter arma repos, services y rutas. Devuelve también el dispatcher de
// recordatorios (nil si no hay notifier) para que main decida arrancarlo.
func NewRouter(opts Options) (http.Handler, *reminders.Dispatcher) {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		memberRepo     members.Repository
		medicationRepo medications.Repository
		scheduleRepo   schedules.Repository
		doseRepo       doses.Repository
		grantsRepo     caregrants.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		memberRepo = pg.NewMembersRepo(db)
		medicationRepo = pg.NewMedicationsRepo(db)
		scheduleRepo = pg.NewSchedulesRepo(db)
		doseRepo = pg.NewDosesRepo(db)
		grantsRepo = pg.NewCaregrantsRepo(db)
	} else {
		memberRepo = mem.NewMemberRepo()
		medicationRepo = mem.NewMedicationRepo()
		scheduleRepo = mem.NewScheduleRepo()
		doseRepo = mem.NewDoseRepo()
		grantsRepo = mem.NewCaregrantsRepo()
	}

	// Services por módulo
	membersSvc := members.NewService(memberRepo)
	medicationsSvc := medications.NewService(medicationRepo)
	schedulesSvc := schedules.NewService(scheduleRepo)
	dosesSvc := doses.NewService(doseRepo)
	grantsSvc := caregrants.NewService(grantsRepo)

	// Motor de proyección y estadísticas, sobre los mismos services.
	projector := schedules.NewProjector(membersSvc, medicationsSvc, schedulesSvc, dosesSvc)
	aggregator := adherence.NewAggregator(membersSvc, medicationsSvc, schedulesSvc, dosesSvc)

	// Rutas por módulo
	members.RegisterRoutes(r, membersSvc, grantsSvc)
	medications.RegisterRoutes(r, medicationsSvc, membersSvc, grantsSvc)
	schedules.RegisterRoutes(r, schedulesSvc, projector, medicationsSvc, membersSvc, grantsSvc)
	doses.RegisterRoutes(r, dosesSvc, membersSvc, grantsSvc)
	adherence.RegisterRoutes(r, aggregator)
	caregrants.RegisterRoutes(r, grantsSvc, membersSvc)

	var dispatcher *reminders.Dispatcher
	if opts.Notifier != nil {
		// ListAll es del repo, no del service: el barrido global no es
		// una operación de usuario.
		dispatcher = reminders.NewDispatcher(memberRepo, medicationsSvc, schedulesSvc, dosesSvc, opts.Notifier, log)
	}

	return r, dispatcher
}
