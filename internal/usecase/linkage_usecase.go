package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"bizdesk/internal/domain/account"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"go.uber.org/zap"
)

const (
	LinkageOpEnsure = "ensure"
	LinkageOpUnlink = "unlink"

	LinkageOutcomeCreated      = "created"
	LinkageOutcomeSynced       = "synced"
	LinkageOutcomeUnchanged    = "unchanged"
	LinkageOutcomeDeduplicated = "deduplicated"
	LinkageOutcomeUnlinked     = "unlinked"
	LinkageOutcomeError        = "error"
)

// ErrLinkageConflict reports that another payment for the same quote appeared
// while ours was being inserted. The inserted row has been removed again.
var ErrLinkageConflict = fmt.Errorf("%w: another payment was linked to the quote concurrently", entities.ErrReferentialConflict)

// ILinkageUseCase keeps every approved quote linked to exactly one payment.
type ILinkageUseCase interface {
	EnsurePaymentForApprovedQuote(ctx context.Context, q entities.QuoteSnapshot) (entities.Payment, error)
	UnlinkPaymentsForDeletedQuote(ctx context.Context, quoteID string) error
	WithQuoteLock(ctx context.Context, quoteID string, fn func(ctx context.Context) error) error
}

type LinkageUseCase struct {
	quotes   interfaces.IQuoteRepository
	payments interfaces.IPaymentRepository
	locker   interfaces.ILocker
	observer interfaces.ILinkageObserver
	logger   *zap.Logger
}

var _ ILinkageUseCase = (*LinkageUseCase)(nil)

func NewLinkageUseCase(
	quotes interfaces.IQuoteRepository,
	payments interfaces.IPaymentRepository,
	locker interfaces.ILocker,
	observer interfaces.ILinkageObserver,
	logger *zap.Logger,
) *LinkageUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkageUseCase{
		quotes:   quotes,
		payments: payments,
		locker:   locker,
		observer: observer,
		logger:   logger.With(zap.String("component", "linkage")),
	}
}

// WithQuoteLock runs fn while holding the per-quote lock of the current
// account. Ensure and unlink take the same lock.
func (u *LinkageUseCase) WithQuoteLock(ctx context.Context, quoteID string, fn func(ctx context.Context) error) error {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return err
	}
	return u.locker.WithLock(ctx, "quote-payment:"+accountID+":"+quoteID, fn)
}

func (u *LinkageUseCase) EnsurePaymentForApprovedQuote(ctx context.Context, q entities.QuoteSnapshot) (entities.Payment, error) {
	if q.ID == "" {
		return entities.Payment{}, fmt.Errorf("%w: quote id is required", entities.ErrInvalidValue)
	}
	q.Value = entities.RoundCurrency(q.Value)

	var (
		result  entities.Payment
		outcome string
	)
	err := u.WithQuoteLock(ctx, q.ID, func(ctx context.Context) error {
		var err error
		result, outcome, err = u.ensureLocked(ctx, q)
		return err
	})
	if err != nil {
		u.observer.LinkageOperation(LinkageOpEnsure, LinkageOutcomeError)
		u.logger.Warn("ensure payment failed", zap.String("quote_id", q.ID), zap.Error(err))
		return entities.Payment{}, err
	}
	u.observer.LinkageOperation(LinkageOpEnsure, outcome)
	u.logger.Debug("ensure payment", zap.String("quote_id", q.ID), zap.String("payment_id", result.ID), zap.String("outcome", outcome))
	return result, nil
}

func (u *LinkageUseCase) ensureLocked(ctx context.Context, q entities.QuoteSnapshot) (entities.Payment, string, error) {
	linked, err := u.payments.ListByQuoteID(ctx, q.ID)
	if err != nil {
		return entities.Payment{}, "", err
	}

	switch len(linked) {
	case 0:
		return u.createLinked(ctx, q)
	case 1:
		return u.syncLinked(ctx, linked[0], q)
	default:
		kept, err := u.dedupe(ctx, linked)
		if err != nil {
			return entities.Payment{}, "", err
		}
		p, _, err := u.syncLinked(ctx, kept, q)
		return p, LinkageOutcomeDeduplicated, err
	}
}

func (u *LinkageUseCase) createLinked(ctx context.Context, q entities.QuoteSnapshot) (entities.Payment, string, error) {
	quoteID := q.ID
	created, err := u.payments.Create(ctx, entities.Payment{
		QuoteID:    &quoteID,
		ClientID:   q.ClientID,
		ClientName: q.ClientName,
		Service:    q.Service,
		Value:      q.Value,
		Status:     entities.PaymentStatusPending,
	})
	if err != nil {
		if !errors.Is(err, entities.ErrReferentialConflict) {
			return entities.Payment{}, "", err
		}
		// A unique index on quote_id rejected us: converge onto the row that won.
		linked, lerr := u.payments.ListByQuoteID(ctx, q.ID)
		if lerr != nil {
			return entities.Payment{}, "", lerr
		}
		if len(linked) == 0 {
			return entities.Payment{}, "", err
		}
		kept := linked[0]
		if len(linked) > 1 {
			if kept, err = u.dedupe(ctx, linked); err != nil {
				return entities.Payment{}, "", err
			}
		}
		return u.syncLinked(ctx, kept, q)
	}

	// Re-check so a racing writer outside our lock cannot leave two links.
	linked, err := u.payments.ListByQuoteID(ctx, q.ID)
	if err != nil {
		return entities.Payment{}, "", err
	}
	if len(linked) > 1 {
		if derr := u.payments.Delete(ctx, created.ID); derr != nil {
			u.logger.Error("failed to roll back duplicate payment",
				zap.String("quote_id", q.ID), zap.String("payment_id", created.ID), zap.Error(derr))
		}
		return entities.Payment{}, "", ErrLinkageConflict
	}
	return created, LinkageOutcomeCreated, nil
}

func (u *LinkageUseCase) syncLinked(ctx context.Context, p entities.Payment, q entities.QuoteSnapshot) (entities.Payment, string, error) {
	if p.InSyncWith(q) {
		return p, LinkageOutcomeUnchanged, nil
	}
	if err := u.payments.SyncFromQuote(ctx, p.ID, q); err != nil {
		return entities.Payment{}, "", err
	}
	p.ClientID = q.ClientID
	p.ClientName = q.ClientName
	p.Service = q.Service
	p.Value = q.Value
	return p, LinkageOutcomeSynced, nil
}

// dedupe keeps the oldest linked payment and detaches the others. Detached
// payments keep every other field; nothing is deleted.
func (u *LinkageUseCase) dedupe(ctx context.Context, linked []entities.Payment) (entities.Payment, error) {
	ordered := append([]entities.Payment(nil), linked...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})
	for _, extra := range ordered[1:] {
		if err := u.payments.SetQuoteID(ctx, extra.ID, nil); err != nil {
			return entities.Payment{}, err
		}
		u.logger.Warn("detached duplicate quote payment",
			zap.String("quote_id", derefString(extra.QuoteID)), zap.String("payment_id", extra.ID), zap.String("kept_payment_id", ordered[0].ID))
	}
	return ordered[0], nil
}

func (u *LinkageUseCase) UnlinkPaymentsForDeletedQuote(ctx context.Context, quoteID string) error {
	if quoteID == "" {
		return fmt.Errorf("%w: quote id is required", entities.ErrInvalidValue)
	}
	var outcome string
	err := u.WithQuoteLock(ctx, quoteID, func(ctx context.Context) error {
		var err error
		outcome, err = u.unlinkLocked(ctx, quoteID)
		return err
	})
	if err != nil {
		u.observer.LinkageOperation(LinkageOpUnlink, LinkageOutcomeError)
		u.logger.Warn("unlink payments failed", zap.String("quote_id", quoteID), zap.Error(err))
		return err
	}
	u.observer.LinkageOperation(LinkageOpUnlink, outcome)
	return nil
}

func (u *LinkageUseCase) unlinkLocked(ctx context.Context, quoteID string) (string, error) {
	linked, err := u.payments.ListByQuoteID(ctx, quoteID)
	if err != nil {
		return "", err
	}

	unlinked := make([]string, 0, len(linked))
	for _, p := range linked {
		if err := u.payments.SetQuoteID(ctx, p.ID, nil); err != nil {
			u.relink(ctx, quoteID, unlinked)
			return "", err
		}
		unlinked = append(unlinked, p.ID)
	}

	if err := u.quotes.Delete(ctx, quoteID); err != nil {
		u.relink(ctx, quoteID, unlinked)
		return "", err
	}
	if len(unlinked) == 0 {
		return LinkageOutcomeUnchanged, nil
	}
	return LinkageOutcomeUnlinked, nil
}

// relink restores links removed by a failed unlink. Best effort.
func (u *LinkageUseCase) relink(ctx context.Context, quoteID string, paymentIDs []string) {
	for _, id := range paymentIDs {
		qid := quoteID
		if err := u.payments.SetQuoteID(ctx, id, &qid); err != nil {
			u.logger.Error("failed to restore quote link",
				zap.String("quote_id", quoteID), zap.String("payment_id", id), zap.Error(err))
		}
	}
}

type noopObserver struct{}

func (noopObserver) LinkageOperation(string, string) {}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
