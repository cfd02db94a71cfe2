package worker

import (
	"context"
	"log"

	"commerce-service/internal/broker"
	"commerce-service/internal/mailer"
	"commerce-service/internal/models"
	"commerce-service/internal/util"

	"go.uber.org/zap"
)

// MailWorker consumes domain events and sends the matching notification
// emails. Delivery failures are logged and the event is still committed;
// mail is strictly fire-and-forget.
type MailWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	mailer       *mailer.Mailer
	logger       *zap.Logger
}

// NewMailWorker creates a new mail worker
func NewMailWorker(consumer *broker.Consumer, m *mailer.Mailer) *MailWorker {
	w := &MailWorker{
		consumer: consumer,
		mailer:   m,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnUserRegistered(w.handleUserRegistered)
	eventHandler.OnPasswordResetRequested(w.handlePasswordResetRequested)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *MailWorker) Start(ctx context.Context) error {
	log.Println("Starting mail worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *MailWorker) Stop() error {
	log.Println("Stopping mail worker...")
	return w.consumer.Close()
}

func (w *MailWorker) handleUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	err := w.mailer.Send(event.Email, "Welcome!", mailer.WelcomeBody(event.FirstName))
	if err != nil {
		util.EmailsFailedTotal.WithLabelValues("welcome").Inc()
		w.logger.Error("Failed to send welcome email",
			zap.String("email", event.Email),
			zap.Error(err))
		return nil
	}

	util.EmailsSentTotal.WithLabelValues("welcome").Inc()
	w.logger.Info("Welcome email sent", zap.String("email", event.Email))
	return nil
}

func (w *MailWorker) handlePasswordResetRequested(ctx context.Context, event *models.PasswordResetRequestedEvent) error {
	err := w.mailer.Send(event.Email, "Password reset", mailer.PasswordResetBody(event.Token))
	if err != nil {
		util.EmailsFailedTotal.WithLabelValues("password_reset").Inc()
		w.logger.Error("Failed to send password reset email",
			zap.String("email", event.Email),
			zap.Error(err))
		return nil
	}

	util.EmailsSentTotal.WithLabelValues("password_reset").Inc()
	w.logger.Info("Password reset email sent", zap.String("email", event.Email))
	return nil
}
