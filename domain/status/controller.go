package status

import (
	"github.com/frag7/intake-api/config/router"
	"github.com/frag7/intake-api/domain/signal"
	"github.com/frag7/intake-api/internal/log"
	apperrors "github.com/frag7/intake-api/pkg/errors"
	"gorm.io/gorm"
)

func NewStatusController(db *gorm.DB, logger *log.Logger) *router.RESTController {
	return router.NewVersionedRESTController(
		"StatusController",
		"v1",
		"/status",
		func(rs *router.RouterService, c *router.RESTController) {
			service := NewStatusService(logger, signal.NewQueueRepository(db))

			rs.AddGetHandler(c, nil, "", regionCountsHandler(service))
		},
	)
}

func regionCountsHandler(service StatusService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		counts, err := service.RegionCounts(ctx.Request.Context())
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(counts, "Waiting pool counts retrieved successfully")
	}
}
