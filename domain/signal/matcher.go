package signal

import (
	"context"
	"errors"
	"time"

	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/internal/models"
)

// Pod is a committed group of entries claimed out of the waiting pool. Members
// are ordered TECH first, then BIZ, each oldest-first.
type Pod struct {
	ID       string
	Region   string
	FormedAt time.Time
	Members  []models.QueueEntry
}

// PodMatcher attempts to complete pods from the waiting pool. Correctness
// under concurrent calls is delegated entirely to the repository's conditional
// assignment; the matcher itself holds no locks.
type PodMatcher interface {
	// TryForm attempts to complete one pod in region. (nil, nil) means no pod
	// was possible this round, including the benign case where a concurrent
	// matcher claimed the same candidates first.
	TryForm(ctx context.Context, region string) (*Pod, error)
}

type podMatcher struct {
	logger     *log.Logger
	repository QueueRepository
}

func NewPodMatcher(logger *log.Logger, repository QueueRepository) PodMatcher {
	return &podMatcher{logger: logger, repository: repository}
}

func (m *podMatcher) TryForm(ctx context.Context, region string) (*Pod, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, m.logger)

	tech, err := m.repository.ListWaiting(ctx, region, models.RoleClassTech, models.PodTechSeats)
	if err != nil {
		return nil, err
	}

	biz, err := m.repository.ListWaiting(ctx, region, models.RoleClassBiz, models.PodBizSeats)
	if err != nil {
		return nil, err
	}

	if len(tech) < models.PodTechSeats || len(biz) < models.PodBizSeats {
		return nil, nil
	}

	members := make([]models.QueueEntry, 0, models.PodSize)
	members = append(members, tech...)
	members = append(members, biz...)

	entryIDs := make([]uint, 0, len(members))
	for _, entry := range members {
		entryIDs = append(entryIDs, entry.ID)
	}

	podID := NewPodID(region)

	if err := m.repository.AssignPod(ctx, entryIDs, podID); err != nil {
		if errors.Is(err, ErrPodConflict) {
			// A concurrent submission claimed one of our candidates. Benign:
			// the next submission re-evaluates with fresh state.
			logger.Info("Pod candidates claimed concurrently, skipping this round",
				"region", region, "pod_id", podID)
			return nil, nil
		}
		return nil, err
	}

	formedAt := time.Now().UTC()
	for i := range members {
		members[i].Status = models.StatusAssigned
		members[i].PodID = &podID
	}

	logger.Info("Pod formed",
		"pod_id", podID,
		"region", region,
		"members", len(members),
	)

	return &Pod{ID: podID, Region: region, FormedAt: formedAt, Members: members}, nil
}
