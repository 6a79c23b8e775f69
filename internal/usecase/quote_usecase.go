package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/domain/transition"
	"bizdesk/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

var (
	ErrQuoteNotFound        = errors.New("quote not found")
	ErrInvalidQuoteID       = errors.New("invalid quote id")
	ErrInvalidQuoteService  = errors.New("quote service is required")
	ErrQuoteClientRequired  = errors.New("quote needs a client id or a client name")
	ErrUnknownClient        = errors.New("client not found")
	ErrQuotePaymentNotSaved = errors.New("quote saved but its payment could not be ensured")
)

// QuoteInput is the caller-editable part of a quote.
type QuoteInput struct {
	ClientID   *string
	ClientName string
	Service    string
	Value      decimal.Decimal
	Status     entities.QuoteStatus
}

// IQuoteUseCase exposes quote operations. Every save that lands on approved
// ensures the derived payment; deletion unlinks payments instead of removing
// them.
type IQuoteUseCase interface {
	Create(ctx context.Context, in QuoteInput) (entities.Quote, error)
	Update(ctx context.Context, id string, in QuoteInput) (entities.Quote, error)
	GetByID(ctx context.Context, id string) (entities.Quote, error)
	List(ctx context.Context) ([]entities.Quote, error)
	Delete(ctx context.Context, id string) error
}

type QuoteUseCase struct {
	repo    interfaces.IQuoteRepository
	clients interfaces.IClientRepository
	linkage ILinkageUseCase
}

var _ IQuoteUseCase = (*QuoteUseCase)(nil)

func NewQuoteUseCase(repo interfaces.IQuoteRepository, clients interfaces.IClientRepository, linkage ILinkageUseCase) *QuoteUseCase {
	return &QuoteUseCase{repo: repo, clients: clients, linkage: linkage}
}

func (u *QuoteUseCase) Create(ctx context.Context, in QuoteInput) (entities.Quote, error) {
	if in.Status == "" {
		in.Status = entities.QuoteStatusSent
	}
	effect, err := transition.QuoteTransition("", in.Status)
	if err != nil {
		return entities.Quote{}, err
	}
	q, err := u.build(ctx, entities.Quote{}, in)
	if err != nil {
		return entities.Quote{}, err
	}

	created, err := u.repo.Create(ctx, q)
	if err != nil {
		return entities.Quote{}, err
	}
	if err := u.apply(ctx, created, effect); err != nil {
		return created, err
	}
	return created, nil
}

func (u *QuoteUseCase) Update(ctx context.Context, id string, in QuoteInput) (entities.Quote, error) {
	existing, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Quote{}, err
	}
	if in.Status == "" {
		in.Status = existing.Status
	}
	effect, err := transition.QuoteTransition(existing.Status, in.Status)
	if err != nil {
		return entities.Quote{}, err
	}
	q, err := u.build(ctx, existing, in)
	if err != nil {
		return entities.Quote{}, err
	}

	updated, err := u.repo.Update(ctx, q)
	if err != nil {
		return entities.Quote{}, err
	}
	if updated.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	if err := u.apply(ctx, updated, effect); err != nil {
		return updated, err
	}
	return updated, nil
}

func (u *QuoteUseCase) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Quote{}, ErrInvalidQuoteID
	}
	q, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Quote{}, err
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

func (u *QuoteUseCase) List(ctx context.Context) ([]entities.Quote, error) {
	return u.repo.List(ctx)
}

// Delete detaches every payment linked to the quote and then removes it.
func (u *QuoteUseCase) Delete(ctx context.Context, id string) error {
	q, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return u.linkage.UnlinkPaymentsForDeletedQuote(ctx, q.ID)
}

func (u *QuoteUseCase) apply(ctx context.Context, q entities.Quote, effect transition.QuoteEffect) error {
	if !effect.EnsurePayment {
		return nil
	}
	if _, err := u.linkage.EnsurePaymentForApprovedQuote(ctx, q.Snapshot()); err != nil {
		return fmt.Errorf("%w: %w", ErrQuotePaymentNotSaved, err)
	}
	return nil
}

// build merges in onto base. The client name snapshot is refreshed only when
// a client id is given; otherwise the caller's name is kept as typed.
func (u *QuoteUseCase) build(ctx context.Context, base entities.Quote, in QuoteInput) (entities.Quote, error) {
	service := strings.TrimSpace(in.Service)
	if service == "" {
		return entities.Quote{}, ErrInvalidQuoteService
	}
	value, err := entities.ValidateMoney(in.Value)
	if err != nil {
		return entities.Quote{}, err
	}
	clientID, clientName, err := resolveClient(ctx, u.clients, in.ClientID, in.ClientName)
	if err != nil {
		return entities.Quote{}, err
	}
	if clientID == nil && clientName == "" {
		return entities.Quote{}, ErrQuoteClientRequired
	}

	base.ClientID = clientID
	base.ClientName = clientName
	base.Service = service
	base.Value = value
	base.Status = in.Status
	return base, nil
}

// resolveClient returns the client reference and the name snapshot to store.
func resolveClient(ctx context.Context, clients interfaces.IClientRepository, clientID *string, name string) (*string, string, error) {
	name = strings.TrimSpace(name)
	if clientID == nil || strings.TrimSpace(*clientID) == "" {
		return nil, name, nil
	}
	id := strings.TrimSpace(*clientID)
	c, err := clients.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if c.ID == "" {
		return nil, "", ErrUnknownClient
	}
	return &id, c.Name, nil
}
