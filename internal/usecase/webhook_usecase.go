package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
	"fitjournal/internal/infrastructure/whoop"
	"fitjournal/internal/worker"
)

// webhookSyncDays is the window a webhook-triggered sync pulls. Events only
// signal that recent data changed, so one day suffices.
const webhookSyncDays = 1

type WebhookUsecase interface {
	// Process verifies the signature, parses the envelope, resolves the
	// external account, and enqueues a background sync for recognized event
	// types. Returns entity.ErrBadSignature or entity.ErrMalformedPayload for
	// rejected requests; anything else acknowledges with a result.
	Process(ctx context.Context, timestamp string, body []byte, signature string) (*entity.WebhookResult, error)
}

type webhookUsecase struct {
	verifier *whoop.SignatureVerifier
	connRepo repository.ConnectionRepository
	queue    *worker.Queue
	logger   *zap.Logger
}

func NewWebhookUsecase(
	verifier *whoop.SignatureVerifier,
	connRepo repository.ConnectionRepository,
	queue *worker.Queue,
	logger *zap.Logger,
) WebhookUsecase {
	return &webhookUsecase{
		verifier: verifier,
		connRepo: connRepo,
		queue:    queue,
		logger:   logger,
	}
}

func (u *webhookUsecase) Process(ctx context.Context, timestamp string, body []byte, signature string) (*entity.WebhookResult, error) {
	if u.verifier.Configured() {
		if !u.verifier.Verify(timestamp, body, signature) {
			return nil, entity.ErrBadSignature
		}
	} else {
		u.logger.Warn("Webhook secret not configured, accepting unverified request")
	}

	var event entity.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.UserID == 0 || event.Type == "" {
		return nil, entity.ErrMalformedPayload
	}

	conn, err := u.connRepo.FindByWhoopUserID(ctx, event.UserID)
	if err != nil {
		// Internal faults are acknowledged so the provider does not retry;
		// the next sync (webhook or on-demand) converges the data.
		u.logger.Error("Webhook connection lookup failed",
			zap.Int64("whoop_user_id", event.UserID),
			zap.Error(err),
		)
		return &entity.WebhookResult{
			Status: entity.WebhookStatusIgnored,
			Reason: "lookup failed",
		}, nil
	}
	if conn == nil {
		// Events for accounts we never connected are acknowledged so the
		// provider stops retrying.
		return &entity.WebhookResult{
			Status: entity.WebhookStatusIgnored,
			Reason: "unknown user",
		}, nil
	}

	var kind worker.JobKind
	switch {
	case strings.HasPrefix(event.Type, "workout"):
		kind = worker.JobSyncWorkouts
	case strings.HasPrefix(event.Type, "recovery"), strings.HasPrefix(event.Type, "sleep"):
		kind = worker.JobSyncRecovery
	default:
		return &entity.WebhookResult{
			Status: entity.WebhookStatusIgnored,
			Reason: "unhandled event type",
		}, nil
	}

	u.queue.TryEnqueue(worker.SyncJob{
		UserID:   conn.UserID,
		Kind:     kind,
		DaysBack: webhookSyncDays,
	})

	u.logger.Info("Webhook accepted",
		zap.Int64("user_id", conn.UserID),
		zap.String("event_type", event.Type),
		zap.String("trace_id", event.TraceID),
	)

	return &entity.WebhookResult{Status: entity.WebhookStatusOK}, nil
}
