package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/repository"
	"supportly/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateIntentInput struct {
	Kind       string
	CreatorID  uint
	Amount     int64 // ignored for shop; computed from the product price
	PayerName  string
	PayerPhone string
	Provider   string
	WishlistID *uint
	ProductID  *uint
	Quantity   int
	Message    string
}

// IntentService validates a checkout, records a pending intent and asks the
// gateway to collect it.
type IntentService struct {
	db         *gorm.DB
	intents    *repository.IntentRepository
	users      *repository.UserRepository
	products   *repository.ProductRepository
	orders     *repository.OrderRepository
	wishlists  *repository.WishlistRepository
	gateway    payment.Gateway
	reconciler *Reconciler
	policy     *Policy
	currency   string
	now        func() time.Time
}

func NewIntentService(db *gorm.DB, gateway payment.Gateway, reconciler *Reconciler, policy *Policy, currency string) *IntentService {
	return &IntentService{
		db:         db,
		intents:    repository.NewIntentRepository(db),
		users:      repository.NewUserRepository(db),
		products:   repository.NewProductRepository(db),
		orders:     repository.NewOrderRepository(db),
		wishlists:  repository.NewWishlistRepository(db),
		gateway:    gateway,
		reconciler: reconciler,
		policy:     policy,
		currency:   currency,
		now:        time.Now,
	}
}

// checkout is the validated form of CreateIntentInput.
type checkout struct {
	in      CreateIntentInput
	phone   string
	amount  int64
	product *models.Product
	title   string
}

func (s *IntentService) validate(ctx context.Context, in CreateIntentInput) (*checkout, error) {
	if !domain.ValidKind(in.Kind) {
		return nil, domain.ErrInvalidKind
	}
	phone, err := NormalizePhone(in.PayerPhone)
	if err != nil {
		return nil, err
	}
	creator, err := s.users.GetByID(ctx, in.CreatorID)
	if err != nil {
		return nil, err
	}
	if !creator.IsCreator() {
		return nil, domain.ErrCreatorNotFound
	}

	co := &checkout{in: in, phone: phone, amount: in.Amount}
	switch in.Kind {
	case domain.KindShop:
		if in.ProductID == nil {
			return nil, domain.ErrProductUnavailable
		}
		p, err := s.products.GetByID(ctx, *in.ProductID)
		if err != nil {
			return nil, err
		}
		if p.CreatorID != in.CreatorID || !p.IsActive {
			return nil, domain.ErrProductUnavailable
		}
		if co.in.Quantity <= 0 {
			co.in.Quantity = 1
		}
		if co.in.Quantity > 1 && !p.AllowMultiple {
			return nil, domain.ErrQuantityNotAllowed
		}
		co.product = p
		co.title = p.Title
		co.amount = p.Price * int64(co.in.Quantity)
	case domain.KindWishlist:
		if in.WishlistID == nil {
			return nil, domain.ErrWishlistUnavailable
		}
		w, err := s.wishlists.GetByID(ctx, *in.WishlistID)
		if err != nil {
			return nil, err
		}
		if w.CreatorID != in.CreatorID || !w.Open(s.now()) {
			return nil, domain.ErrWishlistUnavailable
		}
		co.title = w.Title
		co.in.Quantity = 1
	default:
		co.in.Quantity = 1
	}

	if co.amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if co.amount <= s.policy.MinPaymentAmount(ctx) {
		return nil, domain.ErrBelowMinimumAmount
	}
	return co, nil
}

func (s *IntentService) CreateIntent(ctx context.Context, in CreateIntentInput) (*models.PaymentIntent, error) {
	co, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(models.IntentMetadata{Message: in.Message, Title: co.title})
	intent := &models.PaymentIntent{
		DepositID:         uuid.NewString(),
		CreatorID:         in.CreatorID,
		CounterpartyName:  in.PayerName,
		CounterpartyPhone: co.phone,
		Amount:            co.amount,
		Kind:              in.Kind,
		Quantity:          co.in.Quantity,
		Status:            domain.IntentPending,
		Provider:          in.Provider,
		Metadata:          datatypes.JSON(meta),
		CreatedAt:         s.now(),
	}
	if in.Kind == domain.KindWishlist {
		intent.WishlistID = in.WishlistID
	}
	if co.product != nil {
		intent.ProductID = &co.product.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if co.product != nil {
			ok, err := s.products.WithTx(tx).ReserveSlots(ctx, co.product.ID, co.in.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrCapacityExhausted
			}
		}
		if err := s.intents.WithTx(tx).Create(ctx, intent); err != nil {
			return err
		}
		if co.product == nil {
			return nil
		}
		return s.orders.WithTx(tx).Create(ctx, &models.Order{
			CreatorID:     in.CreatorID,
			BuyerName:     in.PayerName,
			BuyerPhone:    co.phone,
			ProductID:     co.product.ID,
			ProductTitle:  co.product.Title,
			Quantity:      co.in.Quantity,
			UnitPrice:     co.product.Price,
			Total:         co.amount,
			PaymentStatus: domain.OrderPending,
			DepositID:     intent.DepositID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PAYMENT] intent %s kind=%s creator=%d amount=%d", intent.DepositID, intent.Kind, intent.CreatorID, intent.Amount)
	res, err := s.gateway.CreatePayment(ctx, payment.PaymentRequest{
		DepositID:   intent.DepositID,
		Amount:      intent.Amount,
		Currency:    s.currency,
		Phone:       co.phone,
		Provider:    in.Provider,
		PayerName:   in.PayerName,
		Description: fmt.Sprintf("%s payment", in.Kind),
		Metadata:    map[string]interface{}{"creator_id": in.CreatorID, "kind": in.Kind},
	})
	if err != nil {
		log.Printf("[PAYMENT] gateway rejected %s: %v", intent.DepositID, err)
		// no pending intent may outlive a rejected request
		if _, ferr := s.reconciler.Settle(context.WithoutCancel(ctx), intent.DepositID, payment.StatusFailed, "", err.Error()); ferr != nil {
			log.Printf("[PAYMENT] failing %s after rejection: %v", intent.DepositID, ferr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRejected, err)
	}

	bg := context.WithoutCancel(ctx)
	err = writeRef(ctx, func(c context.Context) error {
		return s.intents.AttachProviderRef(c, intent.DepositID, res.Reference)
	})
	if err != nil {
		log.Printf("[PAYMENT] recording ref %s for %s: %v", res.Reference, intent.DepositID, err)
		// the catch-up worker fails it if this write is lost too
		reason := "provider reference " + res.Reference + " not recorded"
		if _, ferr := s.reconciler.Settle(bg, intent.DepositID, payment.StatusFailed, "", reason); ferr != nil {
			log.Printf("[PAYMENT] failing %s: %v", intent.DepositID, ferr)
		}
		return nil, fmt.Errorf("recording provider reference: %w", err)
	}
	if domain.NormalizeGatewayStatus(res.Status) != domain.IntentPending {
		return s.reconciler.Settle(bg, intent.DepositID, res.Status, res.Reference, "")
	}
	return s.intents.GetByDepositID(bg, intent.DepositID)
}

func (s *IntentService) Get(ctx context.Context, depositID string) (*models.PaymentIntent, error) {
	return s.intents.GetByDepositID(ctx, depositID)
}
