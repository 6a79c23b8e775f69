package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/domain/transition"
	"bizdesk/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrPaymentNotFound             = errors.New("payment not found")
	ErrInvalidPaymentID            = errors.New("invalid payment id")
	ErrInvalidPaymentService       = errors.New("payment service is required")
	ErrPaymentClientRequired       = errors.New("payment needs a client id or a client name")
	ErrQuoteAlreadyLinked          = fmt.Errorf("%w: quote already has a payment", entities.ErrReferentialConflict)
	ErrPaymentAlreadyPaid          = errors.New("payment already paid")
	ErrPaymentGatewayNotConfigured = errors.New("payment gateway not configured")
	ErrPaymentGatewayFailed        = errors.New("payment gateway failed")
)

const providerStatusApproved = "approved"

// PaymentInput is the caller-editable part of a payment. QuoteID is only
// honoured on create; links change afterwards through the quote lifecycle.
type PaymentInput struct {
	QuoteID    *string
	ClientID   *string
	ClientName string
	Service    string
	Value      decimal.Decimal
	Status     entities.PaymentStatus
	Method     *entities.PaymentMethod
}

// PixCharge is the outcome of a PIX collection attempt.
type PixCharge struct {
	Payment           entities.Payment
	ProviderPaymentID string
	ProviderStatus    string
	ProviderResponse  json.RawMessage
}

type IPaymentUseCase interface {
	Create(ctx context.Context, in PaymentInput) (entities.Payment, error)
	Update(ctx context.Context, id string, in PaymentInput) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	List(ctx context.Context) ([]entities.Payment, error)
	Delete(ctx context.Context, id string) error
	MarkAsPaid(ctx context.Context, id string, method *entities.PaymentMethod) (entities.Payment, error)
	MarkAsPending(ctx context.Context, id string, clearPaidAt bool) (entities.Payment, error)
	ChargePix(ctx context.Context, id string) (PixCharge, error)
}

type PaymentUseCase struct {
	repo       interfaces.IPaymentRepository
	quotes     interfaces.IQuoteRepository
	clients    interfaces.IClientRepository
	linkage    ILinkageUseCase
	gateway    interfaces.IPaymentGateway
	payerEmail string
	logger     *zap.Logger
	now        func() time.Time
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(
	repo interfaces.IPaymentRepository,
	quotes interfaces.IQuoteRepository,
	clients interfaces.IClientRepository,
	linkage ILinkageUseCase,
	gateway interfaces.IPaymentGateway,
	payerEmail string,
	logger *zap.Logger,
) *PaymentUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentUseCase{
		repo:       repo,
		quotes:     quotes,
		clients:    clients,
		linkage:    linkage,
		gateway:    gateway,
		payerEmail: strings.TrimSpace(payerEmail),
		logger:     logger.With(zap.String("component", "payments")),
		now:        time.Now,
	}
}

func (u *PaymentUseCase) Create(ctx context.Context, in PaymentInput) (entities.Payment, error) {
	if in.Status == "" {
		in.Status = entities.PaymentStatusPending
	}
	p, err := u.build(ctx, entities.Payment{Status: entities.PaymentStatusPending}, in)
	if err != nil {
		return entities.Payment{}, err
	}

	quoteID := ""
	if in.QuoteID != nil {
		quoteID = strings.TrimSpace(*in.QuoteID)
	}
	if quoteID == "" {
		return u.repo.Create(ctx, p)
	}

	var created entities.Payment
	err = u.linkage.WithQuoteLock(ctx, quoteID, func(ctx context.Context) error {
		q, err := u.quotes.GetByID(ctx, quoteID)
		if err != nil {
			return err
		}
		if q.ID == "" {
			return ErrQuoteNotFound
		}
		linked, err := u.repo.ListByQuoteID(ctx, quoteID)
		if err != nil {
			return err
		}
		if len(linked) > 0 {
			return ErrQuoteAlreadyLinked
		}
		p.QuoteID = &quoteID
		created, err = u.repo.Create(ctx, p)
		return err
	})
	if err != nil {
		return entities.Payment{}, err
	}
	return created, nil
}

// Update edits a payment. A linked payment is edited under its quote lock so
// a concurrent quote sync is never overwritten with stale fields.
func (u *PaymentUseCase) Update(ctx context.Context, id string, in PaymentInput) (entities.Payment, error) {
	existing, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if existing.QuoteID == nil {
		return u.update(ctx, existing, in)
	}

	var updated entities.Payment
	err = u.linkage.WithQuoteLock(ctx, *existing.QuoteID, func(ctx context.Context) error {
		current, err := u.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated, err = u.update(ctx, current, in)
		return err
	})
	if err != nil {
		return entities.Payment{}, err
	}
	return updated, nil
}

func (u *PaymentUseCase) update(ctx context.Context, existing entities.Payment, in PaymentInput) (entities.Payment, error) {
	if in.Status == "" {
		in.Status = existing.Status
	}
	if in.Method == nil {
		in.Method = existing.Method
	}
	p, err := u.build(ctx, existing, in)
	if err != nil {
		return entities.Payment{}, err
	}
	return u.save(ctx, u.repo.Update, p)
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, ErrInvalidPaymentID
	}
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) List(ctx context.Context) ([]entities.Payment, error) {
	return u.repo.List(ctx)
}

func (u *PaymentUseCase) Delete(ctx context.Context, id string) error {
	p, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, p.ID)
}

func (u *PaymentUseCase) MarkAsPaid(ctx context.Context, id string, method *entities.PaymentMethod) (entities.Payment, error) {
	existing, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	next, err := transition.PaymentTransition(existing, transition.PaymentChange{To: entities.PaymentStatusPaid, Method: method}, u.now())
	if err != nil {
		return entities.Payment{}, err
	}
	return u.save(ctx, u.repo.UpdateStatus, next)
}

func (u *PaymentUseCase) MarkAsPending(ctx context.Context, id string, clearPaidAt bool) (entities.Payment, error) {
	existing, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	next, err := transition.PaymentTransition(existing, transition.PaymentChange{To: entities.PaymentStatusPending, ClearPaidAt: clearPaidAt}, u.now())
	if err != nil {
		return entities.Payment{}, err
	}
	return u.save(ctx, u.repo.UpdateStatus, next)
}

// ChargePix sends a PIX charge for a pending payment. An approved provider
// status marks the payment as paid by pix; any other status leaves it pending.
func (u *PaymentUseCase) ChargePix(ctx context.Context, id string) (PixCharge, error) {
	if u.gateway == nil {
		return PixCharge{}, ErrPaymentGatewayNotConfigured
	}
	p, err := u.GetByID(ctx, id)
	if err != nil {
		return PixCharge{}, err
	}
	if p.Status == entities.PaymentStatusPaid {
		return PixCharge{}, ErrPaymentAlreadyPaid
	}

	payload, err := u.pixPayload(p)
	if err != nil {
		return PixCharge{}, err
	}
	providerID, providerStatus, raw, err := u.gateway.CreatePayment(ctx, payload)
	if err != nil {
		u.logger.Warn("pix charge failed", zap.String("payment_id", p.ID), zap.Error(err))
		return PixCharge{}, fmt.Errorf("%w: %w", ErrPaymentGatewayFailed, err)
	}
	u.logger.Info("pix charge sent",
		zap.String("payment_id", p.ID),
		zap.String("provider_payment_id", providerID),
		zap.String("provider_status", providerStatus))

	charge := PixCharge{Payment: p, ProviderPaymentID: providerID, ProviderStatus: providerStatus, ProviderResponse: raw}
	if !strings.EqualFold(providerStatus, providerStatusApproved) {
		return charge, nil
	}
	pix := entities.PaymentMethodPix
	paid, err := u.MarkAsPaid(ctx, p.ID, &pix)
	if err != nil {
		return charge, err
	}
	charge.Payment = paid
	return charge, nil
}

func (u *PaymentUseCase) pixPayload(p entities.Payment) (json.RawMessage, error) {
	req := map[string]any{
		"transaction_amount": p.Value.InexactFloat64(),
		"description":        p.Service,
		"payment_method_id":  "pix",
		"external_reference": p.ID,
	}
	if u.payerEmail != "" {
		req["payer"] = map[string]any{"email": u.payerEmail}
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (u *PaymentUseCase) save(ctx context.Context, write func(context.Context, entities.Payment) (entities.Payment, error), p entities.Payment) (entities.Payment, error) {
	updated, err := write(ctx, p)
	if err != nil {
		return entities.Payment{}, err
	}
	if updated.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return updated, nil
}

// build merges in onto base and runs the status change through the payment
// state machine.
func (u *PaymentUseCase) build(ctx context.Context, base entities.Payment, in PaymentInput) (entities.Payment, error) {
	service := strings.TrimSpace(in.Service)
	if service == "" {
		return entities.Payment{}, ErrInvalidPaymentService
	}
	value, err := entities.ValidateMoney(in.Value)
	if err != nil {
		return entities.Payment{}, err
	}
	clientID, clientName, err := resolveClient(ctx, u.clients, in.ClientID, in.ClientName)
	if err != nil {
		return entities.Payment{}, err
	}
	if clientID == nil && clientName == "" {
		return entities.Payment{}, ErrPaymentClientRequired
	}

	base.ClientID = clientID
	base.ClientName = clientName
	base.Service = service
	base.Value = value

	next, err := transition.PaymentTransition(base, transition.PaymentChange{To: in.Status, Method: in.Method}, u.now())
	if err != nil {
		return entities.Payment{}, err
	}
	if in.Status == entities.PaymentStatusPending && in.Method != nil {
		if !in.Method.Valid() {
			return entities.Payment{}, fmt.Errorf("%w: payment method %q", entities.ErrInvalidTransition, *in.Method)
		}
		method := *in.Method
		next.Method = &method
	}
	return next, nil
}
