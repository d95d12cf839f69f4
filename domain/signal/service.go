package signal

import (
	"context"
	"errors"

	"github.com/frag7/intake-api/internal/log"
	apperrors "github.com/frag7/intake-api/pkg/errors"
	"github.com/frag7/intake-api/pkg/turnstile"
)

type SignalService interface {
	// Submit runs the full admission pipeline: bot check, classification,
	// durable enqueue, opportunistic pod matching, and the operator
	// notification. The returned ack stays generic; storage problems and
	// pod formation are surfaced to operators, not to the submitter.
	Submit(ctx context.Context, req *SubmitSignalRequest, remoteIP string) (*SignalAck, error)
}

type signalService struct {
	logger     *log.Logger
	repository QueueRepository
	matcher    PodMatcher
	verifier   turnstile.Verifier
	notifier   Notifier
}

func NewSignalService(
	logger *log.Logger,
	repository QueueRepository,
	matcher PodMatcher,
	verifier turnstile.Verifier,
	notifier Notifier,
) SignalService {
	return &signalService{
		logger:     logger,
		repository: repository,
		matcher:    matcher,
		verifier:   verifier,
		notifier:   notifier,
	}
}

func (s *signalService) Submit(ctx context.Context, req *SubmitSignalRequest, remoteIP string) (*SignalAck, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Submit received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	// Bot check first: no store mutation happens for a rejected submission.
	if err := s.verifier.Verify(ctx, req.TurnstileToken, remoteIP); err != nil {
		if errors.Is(err, turnstile.ErrMissingSecret) {
			logger.Error("Bot verification is not configured")
			return nil, apperrors.NewInternalServerError("bot verification is not configured", err)
		}
		logger.Warn("Bot verification failed", "remote_ip", remoteIP, "error", err)
		return nil, apperrors.NewForbiddenError("bot verification failed", err)
	}

	// Notifier misconfiguration is a deployment error; reject before writing.
	if s.notifier == nil || !s.notifier.Configured() {
		logger.Error("Notification channel is not configured")
		return nil, apperrors.NewInternalServerError("notification channel is not configured", nil)
	}

	dbFailed := false

	entry, err := s.repository.CreateEntry(ctx, ToQueueEntryModel(req))
	if err != nil {
		// Fail-open: the submitter still gets an ack, the operator channel
		// carries the failure flag, and matching is skipped for this round.
		logger.Error("Failed to persist queue entry, continuing fail-open", "error", err)
		dbFailed = true
	}

	var pod *Pod
	if !dbFailed {
		pod, err = s.matcher.TryForm(ctx, entry.Region)
		if err != nil {
			// Matcher failures never surface to the submitter.
			logger.Error("Pod matching failed", "region", entry.Region, "error", err)
			pod = nil
		}
	}

	summary := &SignalSummary{
		IsNewCell:        req.IsNewCell(),
		Name:             req.Name,
		Region:           req.Region,
		Email:            req.Email,
		Skillset:         req.Skillset,
		CellName:         req.CellName,
		MissionSpecialty: req.MissionSpecialty,
		PledgeSigned:     req.PledgeSigned(),
		ConnectOptIn:     req.OptedIn(),
		ChatHandle:       req.ChatHandle,
		DBFailed:         dbFailed,
	}

	// Best-effort delivery, deliberately not coupled to the store write.
	if err := s.notifier.SignalReceived(ctx, summary, pod); err != nil {
		logger.Error("Failed to deliver intake notification", "error", err)
	}

	return &SignalAck{Received: true}, nil
}
