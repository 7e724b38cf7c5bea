package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/config"
	"github.com/spec-kit/ats-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	baseURL    string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, baseURL string) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTenantProvisioned, n.handleTenantProvisioned)
	n.dispatcher.Subscribe(events.EventMemberInvited, n.handleMemberInvited)
	n.dispatcher.Subscribe(events.EventJobCreated, n.handleJobCreated)
	n.dispatcher.Subscribe(events.EventJobStatusChanged, n.handleJobStatusChanged)
	n.dispatcher.Subscribe(events.EventCandidateCreated, n.handleCandidateCreated)
	n.dispatcher.Subscribe(events.EventApplicationCreated, n.handleApplicationCreated)
	n.dispatcher.Subscribe(events.EventApplicationStageChanged, n.handleApplicationStageChanged)
}

func (n *NotificationService) handleTenantProvisioned(ctx context.Context, event events.Event) error {
	n.logger.Info("TenantProvisioned", zap.String("company_id", event.CompanyID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMemberInvited(ctx context.Context, event events.Event) error {
	n.logger.Info("MemberInvited", zap.String("company_id", event.CompanyID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.MemberInvitedPayload); ok {
		n.sendInviteEmailStub(ctx, payload)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleJobCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("JobCreated", zap.String("company_id", event.CompanyID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleJobStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("JobStatusChanged", zap.String("company_id", event.CompanyID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCandidateCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("CandidateCreated", zap.String("company_id", event.CompanyID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApplicationCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationCreated", zap.String("company_id", event.CompanyID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApplicationStageChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationStageChanged", zap.String("company_id", event.CompanyID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendInviteEmailStub(ctx context.Context, payload events.MemberInvitedPayload) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	acceptURL := fmt.Sprintf("%s/auth/invites/accept", n.baseURL)
	n.logger.Debug("sendInviteEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", payload.Email),
		zap.String("company_name", payload.CompanyName),
		zap.String("accept_url", acceptURL))
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("company_id", event.CompanyID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("company_id", event.CompanyID),
		zap.String("event_type", string(event.Type)))
}
