package signal

import (
	"context"
	"testing"

	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/internal/models"
	apperrors "github.com/frag7/intake-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func waitingEntry(id uint, region, roleClass string) models.QueueEntry {
	entry := models.QueueEntry{
		Email:     "member@example.com",
		Handle:    "member",
		Region:    region,
		RoleClass: roleClass,
		Status:    models.StatusWaiting,
	}
	entry.ID = id
	return entry
}

func TestPodMatcher_TryForm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockQueueRepository(ctrl)
	logger := log.NewLoggerWithJSONOutput()
	matcher := NewPodMatcher(logger, mockRepo)

	t.Run("no pod without full composition", func(t *testing.T) {
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassTech, models.PodTechSeats).
			Return([]models.QueueEntry{
				waitingEntry(1, "east", models.RoleClassTech),
				waitingEntry(2, "east", models.RoleClassTech),
			}, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassBiz, models.PodBizSeats).
			Return([]models.QueueEntry{
				waitingEntry(3, "east", models.RoleClassBiz),
			}, nil)

		pod, err := matcher.TryForm(context.Background(), "east")

		assert.NoError(t, err)
		assert.Nil(t, pod)
	})

	t.Run("forms a pod from the oldest candidates", func(t *testing.T) {
		tech := []models.QueueEntry{
			waitingEntry(1, "east", models.RoleClassTech),
			waitingEntry(2, "east", models.RoleClassTech),
			waitingEntry(4, "east", models.RoleClassTech),
		}
		biz := []models.QueueEntry{
			waitingEntry(3, "east", models.RoleClassBiz),
		}

		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassTech, models.PodTechSeats).
			Return(tech, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassBiz, models.PodBizSeats).
			Return(biz, nil)
		mockRepo.EXPECT().
			AssignPod(gomock.Any(), []uint{1, 2, 4, 3}, gomock.Any()).
			Return(nil)

		pod, err := matcher.TryForm(context.Background(), "east")

		assert.NoError(t, err)
		assert.NotNil(t, pod)
		assert.Equal(t, "east", pod.Region)
		assert.Len(t, pod.Members, models.PodSize)
		for _, member := range pod.Members {
			assert.Equal(t, models.StatusAssigned, member.Status)
			assert.NotNil(t, member.PodID)
			assert.Equal(t, pod.ID, *member.PodID)
		}
	})

	t.Run("lost race is absorbed as no match", func(t *testing.T) {
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassTech, models.PodTechSeats).
			Return([]models.QueueEntry{
				waitingEntry(1, "east", models.RoleClassTech),
				waitingEntry(2, "east", models.RoleClassTech),
				waitingEntry(4, "east", models.RoleClassTech),
			}, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassBiz, models.PodBizSeats).
			Return([]models.QueueEntry{
				waitingEntry(3, "east", models.RoleClassBiz),
			}, nil)
		mockRepo.EXPECT().
			AssignPod(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(ErrPodConflict)

		pod, err := matcher.TryForm(context.Background(), "east")

		assert.NoError(t, err)
		assert.Nil(t, pod)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassTech, models.PodTechSeats).
			Return(nil, apperrors.NewDatabaseError("unable to list waiting entries", nil))

		pod, err := matcher.TryForm(context.Background(), "east")

		assert.Error(t, err)
		assert.Nil(t, pod)
	})
}
