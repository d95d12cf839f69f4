package status

import (
	"context"

	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/internal/models"
)

// QueueCounter is the slice of the queue repository the status surface needs.
type QueueCounter interface {
	CountWaiting(ctx context.Context) (map[string]models.RegionCounts, error)
}

type StatusService interface {
	// RegionCounts reports, for every region with at least one WAITING entry,
	// the waiting TECH and BIZ counts. ASSIGNED entries are never counted.
	RegionCounts(ctx context.Context) (map[string]models.RegionCounts, error)
}

type statusService struct {
	logger  *log.Logger
	counter QueueCounter
}

func NewStatusService(logger *log.Logger, counter QueueCounter) StatusService {
	return &statusService{logger: logger, counter: counter}
}

func (s *statusService) RegionCounts(ctx context.Context) (map[string]models.RegionCounts, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	counts, err := s.counter.CountWaiting(ctx)
	if err != nil {
		logger.Error("Failed to count waiting entries", "error", err)
		return nil, err
	}

	return counts, nil
}
