package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bizdesk/internal/adapter/persistence/repository"
	"bizdesk/internal/adapter/persistence/store"
	"bizdesk/internal/domain/aggregation"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/infrastructure/locking"
)

type app struct {
	store    *store.MemoryStore
	payRepo  *repository.PaymentRepository
	linkage  *LinkageUseCase
	quotes   *QuoteUseCase
	payments *PaymentUseCase
	clients  *ClientUseCase
}

func newApp(t *testing.T) app {
	t.Helper()
	s := store.NewMemoryStore()
	quoteRepo := repository.NewQuoteRepository(s)
	payRepo := repository.NewPaymentRepository(s)
	clientRepo := repository.NewClientRepository(s)
	linkage := NewLinkageUseCase(quoteRepo, payRepo, locking.NewKeyedMutex(), nil, nil)
	return app{
		store:    s,
		payRepo:  payRepo,
		linkage:  linkage,
		quotes:   NewQuoteUseCase(quoteRepo, clientRepo, linkage),
		payments: NewPaymentUseCase(payRepo, quoteRepo, clientRepo, linkage, nil, "", nil),
		clients:  NewClientUseCase(clientRepo),
	}
}

func (a app) linked(t *testing.T, ctx context.Context, quoteID string) []entities.Payment {
	t.Helper()
	ps, err := a.payRepo.ListByQuoteID(ctx, quoteID)
	if err != nil {
		t.Fatalf("list linked: %v", err)
	}
	return ps
}

func TestIntegration_IdempotentLinkage(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	q, err := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusApproved})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if _, err := a.linkage.EnsurePaymentForApprovedQuote(ctx, q.Snapshot()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := a.quotes.Update(ctx, q.ID, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusApproved}); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	if got := a.linked(t, ctx, q.ID); len(got) != 1 {
		t.Fatalf("expected exactly one linked payment, got %d", len(got))
	}
}

func TestIntegration_ValuePropagationKeepsPaidState(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	q, err := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100.00"), Status: entities.QuoteStatusApproved})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	p := a.linked(t, ctx, q.ID)[0]
	pix := entities.PaymentMethodPix
	paid, err := a.payments.MarkAsPaid(ctx, p.ID, &pix)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if _, err := a.quotes.Update(ctx, q.ID, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("150.00"), Status: entities.QuoteStatusApproved}); err != nil {
		t.Fatalf("update quote: %v", err)
	}

	got := a.linked(t, ctx, q.ID)
	if len(got) != 1 {
		t.Fatalf("expected one linked payment, got %d", len(got))
	}
	if !got[0].Value.Equal(money("150")) {
		t.Fatalf("expected value 150.00, got %s", got[0].Value)
	}
	if got[0].Status != entities.PaymentStatusPaid || got[0].Method == nil || *got[0].Method != pix {
		t.Fatalf("paid state lost: %+v", got[0])
	}
	if got[0].PaidAt == nil || !got[0].PaidAt.Equal(*paid.PaidAt) {
		t.Fatalf("paid_at changed: %v vs %v", got[0].PaidAt, paid.PaidAt)
	}
}

// syncingPaymentRepo runs beforeWrite once, right after the first GetByID, to
// let a quote save land between a payment read and its write.
type syncingPaymentRepo struct {
	*repository.PaymentRepository
	beforeWrite func()
}

func (r *syncingPaymentRepo) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	p, err := r.PaymentRepository.GetByID(ctx, id)
	if hook := r.beforeWrite; hook != nil {
		r.beforeWrite = nil
		hook()
	}
	return p, err
}

func TestIntegration_StatusChangeKeepsConcurrentSync(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	q, err := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusApproved})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	p := a.linked(t, ctx, q.ID)[0]

	quoteRepo := repository.NewQuoteRepository(a.store)
	clientRepo := repository.NewClientRepository(a.store)
	hooked := &syncingPaymentRepo{PaymentRepository: a.payRepo}
	hooked.beforeWrite = func() {
		if _, err := a.quotes.Update(ctx, q.ID, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("150"), Status: entities.QuoteStatusApproved}); err != nil {
			t.Fatalf("update quote: %v", err)
		}
	}
	payments := NewPaymentUseCase(hooked, quoteRepo, clientRepo, a.linkage, nil, "", nil)

	cash := entities.PaymentMethodCash
	if _, err := payments.MarkAsPaid(ctx, p.ID, &cash); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	got := a.linked(t, ctx, q.ID)
	if len(got) != 1 {
		t.Fatalf("expected one linked payment, got %d", len(got))
	}
	if !got[0].Value.Equal(money("150")) {
		t.Fatalf("status change overwrote synced value: got %s, want 150", got[0].Value)
	}
	if got[0].Status != entities.PaymentStatusPaid || got[0].Method == nil || *got[0].Method != cash {
		t.Fatalf("unexpected payment %+v", got[0])
	}
}

func TestIntegration_UnlinkNotDelete(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	q, _ := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusApproved})
	p := a.linked(t, ctx, q.ID)[0]
	cash := entities.PaymentMethodCash
	paid, err := a.payments.MarkAsPaid(ctx, p.ID, &cash)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if err := a.quotes.Delete(ctx, q.ID); err != nil {
		t.Fatalf("delete quote: %v", err)
	}
	if _, err := a.quotes.GetByID(ctx, q.ID); !errors.Is(err, ErrQuoteNotFound) {
		t.Fatalf("expected quote gone, got %v", err)
	}

	got, err := a.payments.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("payment lost: %v", err)
	}
	if got.QuoteID != nil {
		t.Fatalf("expected quote_id to be cleared, got %v", *got.QuoteID)
	}
	if got.Status != paid.Status || *got.Method != cash || !got.Value.Equal(paid.Value) || got.ClientName != paid.ClientName || !got.PaidAt.Equal(*paid.PaidAt) {
		t.Fatalf("payment fields changed: %+v vs %+v", got, paid)
	}
}

func TestIntegration_ApprovalReversalKeepsPayment(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	q, _ := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusApproved})
	if _, err := a.quotes.Update(ctx, q.ID, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("90"), Status: entities.QuoteStatusLost}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := a.linked(t, ctx, q.ID)
	if len(got) != 1 || !got[0].Value.Equal(money("100")) {
		t.Fatalf("expected untouched payment, got %+v", got)
	}
}

func TestIntegration_ConcurrentApprovals(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	q, err := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusSent})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.linkage.EnsurePaymentForApprovedQuote(ctx, q.Snapshot()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("ensure failed: %v", err)
	}

	if got := a.linked(t, ctx, q.ID); len(got) != 1 {
		t.Fatalf("expected exactly one linked payment, got %d", len(got))
	}
}

func TestIntegration_LegacyDuplicatesAreDetached(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	q, _ := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusSent})
	for i := 0; i < 3; i++ {
		if _, err := a.payRepo.Create(ctx, entities.Payment{QuoteID: &q.ID, ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.PaymentStatusPending}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if _, err := a.linkage.EnsurePaymentForApprovedQuote(ctx, q.Snapshot()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got := a.linked(t, ctx, q.ID); len(got) != 1 {
		t.Fatalf("expected one linked payment, got %d", len(got))
	}
	all, _ := a.payments.List(ctx)
	if len(all) != 3 {
		t.Fatalf("expected no payment to be deleted, got %d", len(all))
	}
}

func TestIntegration_ManualPaymentLink(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	sent, _ := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusSent})
	if _, err := a.payments.Create(ctx, PaymentInput{QuoteID: &sent.ID, ClientName: "Ana", Service: "Repair", Value: money("100")}); err != nil {
		t.Fatalf("link manual payment: %v", err)
	}
	if _, err := a.payments.Create(ctx, PaymentInput{QuoteID: &sent.ID, ClientName: "Ana", Service: "Repair", Value: money("100")}); !errors.Is(err, ErrQuoteAlreadyLinked) {
		t.Fatalf("expected ErrQuoteAlreadyLinked, got %v", err)
	}

	// Approving later reuses the manual payment.
	if _, err := a.quotes.Update(ctx, sent.ID, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("100"), Status: entities.QuoteStatusApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := a.linked(t, ctx, sent.ID); len(got) != 1 {
		t.Fatalf("expected one linked payment, got %d", len(got))
	}
}

func TestIntegration_ClientDeletionGuard(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	c, err := a.clients.Create(ctx, ClientInput{Name: "Ana", Phone: "555", ServiceType: "cleaning"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	q, err := a.quotes.Create(ctx, QuoteInput{ClientID: &c.ID, Service: "Repair", Value: money("100"), Status: entities.QuoteStatusApproved})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if q.ClientName != "Ana" {
		t.Fatalf("expected client name snapshot, got %q", q.ClientName)
	}

	if err := a.clients.Delete(ctx, c.ID); !errors.Is(err, ErrClientInUse) {
		t.Fatalf("expected ErrClientInUse, got %v", err)
	}

	if _, err := a.clients.Update(ctx, c.ID, ClientInput{Name: "Ana Maria", Phone: "555", ServiceType: "cleaning"}); err != nil {
		t.Fatalf("rename client: %v", err)
	}
	p := a.linked(t, ctx, q.ID)[0]
	if p.ClientName != "Ana" {
		t.Fatalf("snapshot rewritten to %q", p.ClientName)
	}
}

func TestIntegration_DashboardReflectsLinkage(t *testing.T) {
	a := newApp(t)
	ctx := acctCtx()

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	dash := NewDashboardUseCase(a.payRepo, repository.NewQuoteRepository(a.store), loc)

	q, _ := a.quotes.Create(ctx, QuoteInput{ClientName: "Ana", Service: "Repair", Value: money("800"), Status: entities.QuoteStatusApproved})
	p := a.linked(t, ctx, q.ID)[0]
	pix := entities.PaymentMethodPix
	if _, err := a.payments.MarkAsPaid(ctx, p.ID, &pix); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := a.payments.Create(ctx, PaymentInput{ClientName: "Bia", Service: "Install", Value: money("350")}); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if _, err := a.quotes.Create(ctx, QuoteInput{ClientName: "Caio", Service: "Paint", Value: money("500"), Status: entities.QuoteStatusLost}); err != nil {
		t.Fatalf("create lost quote: %v", err)
	}

	got, err := dash.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := aggregation.Summary{Received: money("800"), Pending: money("350"), LostThisMonth: money("500")}
	if !got.Summary.Received.Equal(want.Received) || !got.Summary.Pending.Equal(want.Pending) || !got.Summary.LostThisMonth.Equal(want.LostThisMonth) {
		t.Fatalf("unexpected summary: %+v", got.Summary)
	}
	if len(got.RecentActivity) != 2 {
		t.Fatalf("expected 2 activity rows, got %d", len(got.RecentActivity))
	}
}
