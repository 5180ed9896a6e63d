package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"supportly/internal/domain"
	"supportly/internal/events"
	"supportly/internal/models"
	"supportly/internal/repository"

	"gorm.io/datatypes"
)

// Notifier receives post-commit settlement outcomes. Implementations must not
// fail the caller: delivery problems are logged and dropped.
type Notifier interface {
	PaymentSettled(ctx context.Context, intent *models.PaymentIntent)
	PaymentFailed(ctx context.Context, intent *models.PaymentIntent)
	WithdrawalUpdated(ctx context.Context, w *models.WithdrawalRequest)
}

// FeedBroadcaster pushes a payload to a creator's open live-feed connections.
type FeedBroadcaster interface {
	BroadcastToUser(userID uint, payload interface{})
}

type NotificationService struct {
	repo      *repository.NotificationRepository
	userRepo  *repository.UserRepository
	fcm       *FCMService
	feed      FeedBroadcaster
	publisher events.Publisher
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService, feed FeedBroadcaster, publisher events.Publisher) *NotificationService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm, feed: feed, publisher: publisher}
}

// Notify stores an in-app notification about subject (a deposit id or
// withdrawal order ref) and fans it out to push and the live feed.
func (s *NotificationService) Notify(ctx context.Context, userID uint, notifType, subject, title, body string, data map[string]interface{}) error {
	n := &models.Notification{UserID: userID, Type: notifType, Subject: subject, Title: title, Body: body}
	if data != nil {
		b, _ := json.Marshal(data)
		n.Data = datatypes.JSON(b)
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.feed != nil {
		s.feed.BroadcastToUser(userID, map[string]interface{}{"type": notifType, "subject": subject, "title": title, "body": body, "data": data, "id": n.ID})
	}
	s.sendPush(ctx, userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(ctx context.Context, userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u.FCMToken == "" {
		return
	}
	_ = s.fcm.Send(ctx, u.FCMToken, notifType, title, body, data)
}

func (s *NotificationService) publish(ctx context.Context, eventType string, creatorID uint, data interface{}) {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pctx, eventType, creatorID, data); err != nil {
		log.Printf("[NOTIFY] publish %s for creator %d failed: %v", eventType, creatorID, err)
	}
}

func (s *NotificationService) PaymentSettled(ctx context.Context, intent *models.PaymentIntent) {
	var notifType, title, body string
	switch intent.Kind {
	case domain.KindShop:
		notifType, title = domain.NotifProductSold, "Product sold"
		body = fmt.Sprintf("%s bought your product for %d", payerLabel(intent), intent.Amount)
	case domain.KindWishlist:
		notifType, title = domain.NotifWishlistFunded, "Wishlist contribution"
		body = fmt.Sprintf("%s contributed %d to your wishlist", payerLabel(intent), intent.Amount)
	default:
		notifType, title = domain.NotifNewSupporter, "New supporter"
		body = fmt.Sprintf("%s supported you with %d", payerLabel(intent), intent.Amount)
	}
	data := map[string]interface{}{"deposit_id": intent.DepositID, "kind": intent.Kind, "amount": intent.Amount}
	if err := s.Notify(ctx, intent.CreatorID, notifType, intent.DepositID, title, body, data); err != nil {
		log.Printf("[NOTIFY] settlement notification for %s failed: %v", intent.DepositID, err)
	}
	s.publish(ctx, events.TypePaymentSettled, intent.CreatorID, map[string]interface{}{
		"deposit_id": intent.DepositID, "kind": intent.Kind, "amount": intent.Amount,
		"payer_name": intent.CounterpartyName, "payer_phone": intent.CounterpartyPhone,
	})
}

// PaymentFailed only emits an event; the payer, not the creator, cares about it.
func (s *NotificationService) PaymentFailed(ctx context.Context, intent *models.PaymentIntent) {
	reason := ""
	if intent.FailureReason != nil {
		reason = *intent.FailureReason
	}
	s.publish(ctx, events.TypePaymentFailed, intent.CreatorID, map[string]interface{}{
		"deposit_id": intent.DepositID, "kind": intent.Kind, "reason": reason, "payer_phone": intent.CounterpartyPhone,
	})
}

func (s *NotificationService) WithdrawalUpdated(ctx context.Context, w *models.WithdrawalRequest) {
	body := fmt.Sprintf("Your withdrawal of %d is %s", w.Amount, w.Status)
	data := map[string]interface{}{"withdrawal_id": w.ID, "status": w.Status, "net_amount": w.NetAmount}
	if err := s.Notify(ctx, w.CreatorID, domain.NotifWithdrawalUpdated, w.OrderRef, "Withdrawal update", body, data); err != nil {
		log.Printf("[NOTIFY] withdrawal notification for %d failed: %v", w.ID, err)
	}
	s.publish(ctx, events.TypeWithdrawalUpdated, w.CreatorID, map[string]interface{}{
		"withdrawal_id": w.ID, "order_ref": w.OrderRef, "status": w.Status,
		"amount": w.Amount, "commission": w.Commission, "net_amount": w.NetAmount,
	})
}

func payerLabel(intent *models.PaymentIntent) string {
	if intent.CounterpartyName != "" {
		return intent.CounterpartyName
	}
	return "Someone"
}
