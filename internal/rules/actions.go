package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	pipelinecontroller "github.com/importdesk/importdesk/internal/db/controller/pipeline"
	"github.com/importdesk/importdesk/internal/db/models"
)

// ErrLostReasonMissing is raised by the REQUIRE_LOST_REASON executor when a
// lost deal carries no reason.
var ErrLostReasonMissing = errors.New("lost deal requires a lost reason")

// ActionExecutor runs one action kind against a deal. The parameter map is
// the raw rule action payload; executors decode it into their typed
// parameter struct via decodeParams.
type ActionExecutor func(ctx context.Context, deal *models.Deal, params map[string]any) error

// Notifier delivers SEND_NOTIFICATION messages. The default implementation
// logs; production deployments plug in a real channel.
type Notifier interface {
	Notify(ctx context.Context, channel, recipient, message string) error
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(_ context.Context, channel, recipient, message string) error {
	log.Info().
		Str("channel", channel).
		Str("recipient", recipient).
		Str("message", message).
		Msg("notification sent")

	return nil
}

// SpawnInPipelineParams configures the SPAWN_IN_PIPELINE action. The
// target pipeline is referenced by id, or by name as seeded rules do.
type SpawnInPipelineParams struct {
	PipelineID   string  `json:"pipelineId"`
	PipelineName string  `json:"pipelineName"`
	TitlePrefix  string  `json:"titlePrefix"`
	CopyValue    bool    `json:"copyValue"`
	Value        float64 `json:"value"`
}

// SendNotificationParams configures the SEND_NOTIFICATION action.
type SendNotificationParams struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// decodeParams maps the free-form parameter map onto a typed struct.
func decodeParams(params map[string]any, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode action parameters: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode action parameters: %w", err)
	}

	return nil
}

// spawnInPipeline creates a follow-up deal in the target pipeline, placed
// on its first stage and linked back to the source deal.
func (e *Engine) spawnInPipeline(ctx context.Context, deal *models.Deal, params map[string]any) error {
	var p SpawnInPipelineParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}

	var (
		target *models.Pipeline
		err    error
	)

	switch {
	case p.PipelineID != "":
		target, err = pipelinecontroller.Get(e.db, deal.TenantID, p.PipelineID)
	case p.PipelineName != "":
		target, err = pipelinecontroller.GetByName(e.db, deal.TenantID, p.PipelineName)
	default:
		return errors.New("spawn action needs a target pipeline id or name")
	}
	if err != nil {
		return fmt.Errorf("resolve target pipeline: %w", err)
	}

	spawned := models.Deal{
		ID:             uuid.NewString(),
		TenantID:       deal.TenantID,
		PipelineID:     target.ID,
		StageID:        target.FirstStageID(),
		Title:          p.TitlePrefix + deal.Title,
		OrganisationID: deal.OrganisationID,
		OwnerID:        deal.OwnerID,
		Currency:       deal.Currency,
		Status:         models.DealStatusOpen,
		SourceDealID:   deal.ID,
	}

	if p.CopyValue {
		spawned.Value = deal.Value
	} else {
		spawned.Value = p.Value
	}

	if err := e.db.WithContext(ctx).Create(&spawned).Error; err != nil {
		return fmt.Errorf("create spawned deal: %w", err)
	}

	log.Info().
		Str("source_deal", deal.ID).
		Str("spawned_deal", spawned.ID).
		Str("pipeline", target.Name).
		Msg("deal spawned in pipeline")

	return nil
}

// sendNotification delivers a message through the configured notifier.
func (e *Engine) sendNotification(ctx context.Context, deal *models.Deal, params map[string]any) error {
	var p SendNotificationParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}

	recipient := p.Recipient
	if recipient == "" {
		recipient = deal.OwnerID
	}

	return e.notifier.Notify(ctx, p.Channel, recipient, p.Message)
}

// requireLostReason validates that a lost deal carries a reason. It takes
// no parameters.
func (e *Engine) requireLostReason(_ context.Context, deal *models.Deal, _ map[string]any) error {
	if deal.Status == models.DealStatusLost && deal.LostReason == "" {
		return ErrLostReasonMissing
	}

	return nil
}

// defaultExecutors wires the built-in action kinds.
func (e *Engine) defaultExecutors() map[models.RuleActionType]ActionExecutor {
	return map[models.RuleActionType]ActionExecutor{
		models.ActionSpawnInPipeline:   e.spawnInPipeline,
		models.ActionSendNotification:  e.sendNotification,
		models.ActionRequireLostReason: e.requireLostReason,
	}
}
