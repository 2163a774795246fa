package scheduling

import (
	"strings"

	"meeting-slot-api/core/config"
	"meeting-slot-api/core/database"
	"meeting-slot-api/core/metrics"
	"meeting-slot-api/core/middleware"
	"meeting-slot-api/core/queue"
	"meeting-slot-api/modules/scheduling/controller"
	"meeting-slot-api/modules/scheduling/entity"
	"meeting-slot-api/modules/scheduling/repository"
	"meeting-slot-api/modules/scheduling/router"
	"meeting-slot-api/modules/scheduling/service"
	"meeting-slot-api/modules/scheduling/worker"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	DB         database.IDatabase
	Extractor  service.Extractor
	Classifier service.ProposalClassifier
	Enqueuer   queue.Enqueuer        // nil when the queue is disabled
	Archiver   service.TraceArchiver // nil when trace archiving is disabled
	Metrics    *metrics.Metrics
	Config     config.SchedulingConfig
}

type Module struct {
	Service     service.SchedulingServiceInterface
	TaskHandler *worker.EmailTaskHandler
}

// Init initializes the scheduling module and registers routes
func Init(e *echo.Echo, mw *middleware.Middleware, deps Deps) *Module {
	defaults := DefaultPreferences(deps.Config)
	prefsRepo := repository.NewPreferencesRepository(deps.DB)
	draftRepo := repository.NewDraftRepository(deps.DB)

	opts := []service.RecommenderOption{service.WithPreferencesSource(prefsRepo)}
	if deps.Archiver != nil {
		opts = append(opts, service.WithTraceArchiver(deps.Archiver))
	}
	recommender := service.NewRecommender(deps.Extractor, service.RecommenderConfig{
		DefaultPreferences:  defaults,
		DefaultCount:        deps.Config.DefaultCount,
		ScoreInUserTimezone: strings.EqualFold(deps.Config.ScoreTimezone, "local"),
	}, opts...)

	svc := service.NewSchedulingService(service.SchedulingServiceDeps{
		Recommender: recommender,
		Classifier:  deps.Classifier,
		Preferences: prefsRepo,
		Drafts:      draftRepo,
		Enqueuer:    deps.Enqueuer,
		Metrics:     deps.Metrics,
		Defaults:    defaults,
	})
	ctrl := controller.NewSchedulingController(svc)
	rtr := router.NewSchedulingRouter(ctrl)

	rtr.Setup(e, mw)

	return &Module{
		Service:     svc,
		TaskHandler: worker.NewEmailTaskHandler(svc, deps.Metrics),
	}
}

// DefaultPreferences converts the configured defaults.
func DefaultPreferences(cfg config.SchedulingConfig) entity.UserPreferences {
	p := cfg.DefaultPreferences
	return entity.UserPreferences{
		WorkDays:               append([]int(nil), p.WorkDays...),
		WorkHoursStart:         p.WorkHoursStart,
		WorkHoursEnd:           p.WorkHoursEnd,
		Timezone:               p.Timezone,
		DefaultDurationMinutes: p.DefaultDurationMinutes,
		BufferMinutes:          p.BufferMinutes,
		AllowBackToBack:        p.AllowBackToBack,
	}
}
