package status

import (
	"context"
	"testing"

	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/internal/models"
	apperrors "github.com/frag7/intake-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	counts map[string]models.RegionCounts
	err    error
}

func (s *stubCounter) CountWaiting(ctx context.Context) (map[string]models.RegionCounts, error) {
	return s.counts, s.err
}

func TestStatusService_RegionCounts(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	t.Run("passes through per-region counts", func(t *testing.T) {
		counter := &stubCounter{counts: map[string]models.RegionCounts{
			"east": {Tech: 2, Biz: 1},
			"west": {Biz: 1},
		}}

		counts, err := NewStatusService(logger, counter).RegionCounts(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(2), counts["east"].Tech)
		assert.Equal(t, int64(1), counts["west"].Biz)
		assert.NotContains(t, counts, "south")
	})

	t.Run("surfaces store errors", func(t *testing.T) {
		counter := &stubCounter{err: apperrors.NewDatabaseError("unable to count waiting entries", nil)}

		counts, err := NewStatusService(logger, counter).RegionCounts(context.Background())

		assert.Error(t, err)
		assert.Nil(t, counts)
	})
}
