package signal

import (
	"time"

	"github.com/frag7/intake-api/config/router"
	"github.com/frag7/intake-api/internal/log"
	apperrors "github.com/frag7/intake-api/pkg/errors"
	"github.com/frag7/intake-api/pkg/factory"
	"github.com/frag7/intake-api/pkg/ratelimit"
	"github.com/frag7/intake-api/pkg/turnstile"
	"gorm.io/gorm"
)

func NewSignalController(
	db *gorm.DB,
	logger *log.Logger,
	verifier turnstile.Verifier,
	notifier Notifier,
) *router.RESTController {

	return router.NewVersionedRESTController(
		"SignalController",
		"v1",
		"/signals",
		func(rs *router.RouterService, c *router.RESTController) {
			repository := NewQueueRepository(db)
			matcher := NewPodMatcher(logger, repository)
			service := NewSignalService(logger, repository, matcher, verifier, notifier)

			submissionLimiter := createSignalSubmissionRateLimiter(logger)

			rs.AddPostHandler(c, submissionLimiter, "", submitSignalHandler(service))
		},
	)
}

func createSignalSubmissionRateLimiter(logger *log.Logger) ratelimit.RateLimiter {
	const signalSubmissionRequestsPerMinute = 30 // Public form endpoint, keep it tighter than the default

	// No cache handle here, so the limiter stays in-memory.
	limiterFactory := factory.NewDefaultRateLimiterFactory(
		signalSubmissionRequestsPerMinute,
		time.Minute,
		nil,
		logger,
	)

	return limiterFactory.CreateRateLimiter()
}

func submitSignalHandler(service SignalService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SubmitSignalRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		ack, err := service.Submit(ctx.Request.Context(), &req, ctx.ClientIP())
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.CreatedResult(ack, "Signal")
	}
}
