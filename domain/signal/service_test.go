package signal

import (
	"context"
	"testing"

	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/internal/models"
	apperrors "github.com/frag7/intake-api/pkg/errors"
	"github.com/frag7/intake-api/pkg/turnstile"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type stubVerifier struct {
	err error
}

func (v stubVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	return v.err
}

type captureNotifier struct {
	configured bool
	summary    *SignalSummary
	pod        *Pod
	err        error
}

func (n *captureNotifier) Configured() bool {
	return n.configured
}

func (n *captureNotifier) SignalReceived(ctx context.Context, summary *SignalSummary, pod *Pod) error {
	n.summary = summary
	n.pod = pod
	return n.err
}

func validRequest() *SubmitSignalRequest {
	return &SubmitSignalRequest{
		Name:           "Ada",
		Email:          "ada@example.com",
		Region:         "east",
		Skillset:       "backend-go",
		IntakePath:     IntakePathNewCell,
		CellName:       "east-cell",
		ConnectOptIn:   "on",
		ChatHandle:     "ada#0001",
		TurnstileToken: "tok",
	}
}

func TestSignalService_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := log.NewLoggerWithJSONOutput()

	newService := func(repo QueueRepository, verifier turnstile.Verifier, notifier Notifier) SignalService {
		return NewSignalService(logger, repo, NewPodMatcher(logger, repo), verifier, notifier)
	}

	t.Run("bot check failure rejects before any store write", func(t *testing.T) {
		mockRepo := NewMockQueueRepository(ctrl)
		notifier := &captureNotifier{configured: true}
		service := newService(mockRepo, stubVerifier{err: turnstile.ErrChallengeFailed}, notifier)

		ack, err := service.Submit(context.Background(), validRequest(), "1.2.3.4")

		assert.Nil(t, ack)
		assert.Error(t, err)
		assert.Equal(t, apperrors.StatusForbidden, apperrors.HTTPStatusCode(err))
		assert.Nil(t, notifier.summary)
	})

	t.Run("missing verification secret is a configuration error", func(t *testing.T) {
		mockRepo := NewMockQueueRepository(ctrl)
		service := newService(mockRepo, stubVerifier{err: turnstile.ErrMissingSecret}, &captureNotifier{configured: true})

		ack, err := service.Submit(context.Background(), validRequest(), "1.2.3.4")

		assert.Nil(t, ack)
		assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))
	})

	t.Run("missing webhook target is a configuration error", func(t *testing.T) {
		mockRepo := NewMockQueueRepository(ctrl)
		service := newService(mockRepo, stubVerifier{}, &captureNotifier{configured: false})

		ack, err := service.Submit(context.Background(), validRequest(), "1.2.3.4")

		assert.Nil(t, ack)
		assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))
	})

	t.Run("storage failure is fail-open and skips matching", func(t *testing.T) {
		mockRepo := NewMockQueueRepository(ctrl)
		notifier := &captureNotifier{configured: true}
		service := newService(mockRepo, stubVerifier{}, notifier)

		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewDatabaseError("unable to create queue entry", nil))
		// No ListWaiting/AssignPod expectations: matching must not run.

		ack, err := service.Submit(context.Background(), validRequest(), "1.2.3.4")

		assert.NoError(t, err)
		assert.NotNil(t, ack)
		assert.True(t, ack.Received)
		assert.NotNil(t, notifier.summary)
		assert.True(t, notifier.summary.DBFailed)
		assert.Nil(t, notifier.pod)
	})

	t.Run("successful admission without a pod", func(t *testing.T) {
		mockRepo := NewMockQueueRepository(ctrl)
		notifier := &captureNotifier{configured: true}
		service := newService(mockRepo, stubVerifier{}, notifier)

		created := waitingEntry(7, "east", models.RoleClassTech)
		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			Return(&created, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassTech, models.PodTechSeats).
			Return([]models.QueueEntry{created}, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassBiz, models.PodBizSeats).
			Return(nil, nil)

		ack, err := service.Submit(context.Background(), validRequest(), "1.2.3.4")

		assert.NoError(t, err)
		assert.True(t, ack.Received)
		assert.NotNil(t, notifier.summary)
		assert.False(t, notifier.summary.DBFailed)
		assert.True(t, notifier.summary.IsNewCell)
		assert.True(t, notifier.summary.ConnectOptIn)
		assert.False(t, notifier.summary.PledgeSigned)
		assert.Nil(t, notifier.pod)
	})

	t.Run("pod descriptor reaches the notifier", func(t *testing.T) {
		mockRepo := NewMockQueueRepository(ctrl)
		notifier := &captureNotifier{configured: true}
		service := newService(mockRepo, stubVerifier{}, notifier)

		created := waitingEntry(4, "east", models.RoleClassTech)
		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			Return(&created, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassTech, models.PodTechSeats).
			Return([]models.QueueEntry{
				waitingEntry(1, "east", models.RoleClassTech),
				waitingEntry(2, "east", models.RoleClassTech),
				created,
			}, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "east", models.RoleClassBiz, models.PodBizSeats).
			Return([]models.QueueEntry{
				waitingEntry(3, "east", models.RoleClassBiz),
			}, nil)
		mockRepo.EXPECT().
			AssignPod(gomock.Any(), []uint{1, 2, 4, 3}, gomock.Any()).
			Return(nil)

		ack, err := service.Submit(context.Background(), validRequest(), "1.2.3.4")

		assert.NoError(t, err)
		assert.True(t, ack.Received)
		assert.NotNil(t, notifier.pod)
		assert.Len(t, notifier.pod.Members, models.PodSize)
	})

	t.Run("notifier failure never fails the request", func(t *testing.T) {
		mockRepo := NewMockQueueRepository(ctrl)
		notifier := &captureNotifier{configured: true, err: assert.AnError}
		service := newService(mockRepo, stubVerifier{}, notifier)

		created := waitingEntry(9, "west", models.RoleClassTech)
		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			Return(&created, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "west", models.RoleClassTech, models.PodTechSeats).
			Return([]models.QueueEntry{created}, nil)
		mockRepo.EXPECT().
			ListWaiting(gomock.Any(), "west", models.RoleClassBiz, models.PodBizSeats).
			Return(nil, nil)

		ack, err := service.Submit(context.Background(), validRequest(), "1.2.3.4")

		assert.NoError(t, err)
		assert.True(t, ack.Received)
	})
}
