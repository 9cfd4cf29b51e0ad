package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/sangkips/brokerbill-api/pkg/logger"
	"github.com/sangkips/brokerbill-api/pkg/retry"
	"github.com/shopspring/decimal"
)

// memStore backs every fake repository. Each call locks individually, so
// concurrent issuers can interleave between MaxSeq and Create the same way
// they do against a real database.
type memStore struct {
	mu       sync.Mutex
	firms    map[uuid.UUID]*entity.Firm
	parties  map[uuid.UUID]*entity.Party
	trades   []entity.Trade
	bills    map[uuid.UUID]*entity.PartyBill
	receipts map[uuid.UUID]*entity.Receipt
	periods  map[uuid.UUID]*entity.FiscalPeriod

	// createFailures makes the next n bill inserts fail as duplicates
	createFailures int
	creates        int
}

func newMemStore() *memStore {
	return &memStore{
		firms:    make(map[uuid.UUID]*entity.Firm),
		parties:  make(map[uuid.UUID]*entity.Party),
		bills:    make(map[uuid.UUID]*entity.PartyBill),
		receipts: make(map[uuid.UUID]*entity.Receipt),
		periods:  make(map[uuid.UUID]*entity.FiscalPeriod),
	}
}

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// firms

type fakeFirmRepo struct{ s *memStore }

func (r fakeFirmRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Firm, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.firms[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r fakeFirmRepo) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.s.firms))
	for id := range r.s.firms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// parties

type fakePartyRepo struct{ s *memStore }

func (r fakePartyRepo) GetByID(_ context.Context, firmID, id uuid.UUID) (*entity.Party, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parties[id]
	if !ok || p.FirmID != firmID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r fakePartyRepo) GetByIDs(_ context.Context, firmID uuid.UUID, ids []uuid.UUID) ([]entity.Party, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Party{}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		p, ok := r.s.parties[id]
		if !ok || p.FirmID != firmID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, *p)
	}
	return out, nil
}

// trades

type fakeTradeRepo struct{ s *memStore }

func (r fakeTradeRepo) ListForParty(_ context.Context, firmID, partyID uuid.UUID, from, to time.Time) ([]entity.Trade, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Trade{}
	for _, t := range r.s.trades {
		if t.FirmID != firmID || t.DeletedAt.Valid {
			continue
		}
		if t.SellerID != partyID && t.BuyerID != partyID {
			continue
		}
		if dateutil.Within(t.OrderDate, from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r fakeTradeRepo) ExistsForParty(ctx context.Context, firmID, partyID uuid.UUID, from, to time.Time) (bool, error) {
	trades, err := r.ListForParty(ctx, firmID, partyID, from, to)
	return len(trades) > 0, err
}

func (r fakeTradeRepo) PartiesWithTrades(_ context.Context, firmID uuid.UUID, from, to time.Time) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	out := []uuid.UUID{}
	for _, t := range r.s.trades {
		if t.FirmID != firmID || t.DeletedAt.Valid || !dateutil.Within(t.OrderDate, from, to) {
			continue
		}
		for _, id := range []uuid.UUID{t.SellerID, t.BuyerID} {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// bills

type fakeBillRepo struct{ s *memStore }

func (r fakeBillRepo) Create(_ context.Context, bill *entity.PartyBill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.creates++
	if r.s.createFailures > 0 {
		r.s.createFailures--
		return fmt.Errorf("%w: injected", repository.ErrDuplicateKey)
	}

	key := bill.Scope().Key()
	for _, b := range r.s.bills {
		if b.FirmID != bill.FirmID || b.ScopeKey != key {
			continue
		}
		if b.PartyID == bill.PartyID || b.BillNo == bill.BillNo {
			return fmt.Errorf("%w: idx_party_bills_scope", repository.ErrDuplicateKey)
		}
	}

	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	bill.ScopeKey = key
	bill.CreatedAt = time.Now()
	cp := *bill
	r.s.bills[bill.ID] = &cp
	return nil
}

func (r fakeBillRepo) GetByID(_ context.Context, firmID, id uuid.UUID) (*entity.PartyBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bills[id]
	if !ok || b.FirmID != firmID {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r fakeBillRepo) GetByParty(_ context.Context, firmID uuid.UUID, scope entity.FiscalScope, partyID uuid.UUID) (*entity.PartyBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bills {
		if b.FirmID == firmID && b.ScopeKey == scope.Key() && b.PartyID == partyID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeBillRepo) BillNoExists(_ context.Context, firmID uuid.UUID, scope entity.FiscalScope, billNo string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bills {
		if b.FirmID == firmID && b.ScopeKey == scope.Key() && b.BillNo == billNo {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeBillRepo) MaxSeq(_ context.Context, firmID uuid.UUID, scope entity.FiscalScope) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var seq int64
	for _, b := range r.s.bills {
		if b.FirmID == firmID && b.ScopeKey == scope.Key() && b.BillSeq > seq {
			seq = b.BillSeq
		}
	}
	return seq, nil
}

func (r fakeBillRepo) Update(_ context.Context, bill *entity.PartyBill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bills[bill.ID]
	if !ok || b.FirmID != bill.FirmID {
		return nil
	}
	b.FromDate, b.ToDate, b.BillDate, b.Brokerage = bill.FromDate, bill.ToDate, bill.BillDate, bill.Brokerage
	return nil
}

func (r fakeBillRepo) Delete(_ context.Context, firmID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bills[id]; ok && b.FirmID == firmID {
		delete(r.s.bills, id)
	}
	return nil
}

func (r fakeBillRepo) List(_ context.Context, firmID uuid.UUID, params *repository.PartyBillFilterParams) ([]entity.PartyBill, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.PartyBill{}
	for _, b := range r.s.bills {
		if b.FirmID != firmID {
			continue
		}
		if params.PartyID != nil && b.PartyID != *params.PartyID {
			continue
		}
		if params.FiscalPeriodID != nil {
			match := b.FiscalPeriodID != nil && *b.FiscalPeriodID == *params.FiscalPeriodID
			if !match && !(params.IncludeUnscoped && b.FiscalPeriodID == nil) {
				continue
			}
		}
		if params.BillDateFrom != nil && b.BillDate.Before(*params.BillDateFrom) {
			continue
		}
		if params.BillDateTo != nil && b.BillDate.After(*params.BillDateTo) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BillDate.Equal(out[j].BillDate) {
			return out[i].BillDate.After(out[j].BillDate)
		}
		return out[i].BillSeq > out[j].BillSeq
	})

	total := int64(len(out))
	if p := params.Pagination; p != nil {
		start := p.Offset()
		if start > len(out) {
			start = len(out)
		}
		end := start + p.PerPage
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

// receipts

type fakeReceiptRepo struct{ s *memStore }

func (r fakeReceiptRepo) Create(_ context.Context, receipt *entity.Receipt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	receipt.CreatedAt = time.Now()
	cp := *receipt
	r.s.receipts[receipt.ID] = &cp
	return nil
}

func (r fakeReceiptRepo) GetByID(_ context.Context, firmID, billID, id uuid.UUID) (*entity.Receipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rc, ok := r.s.receipts[id]
	if !ok || rc.FirmID != firmID || rc.PartyBillID != billID {
		return nil, nil
	}
	cp := *rc
	return &cp, nil
}

func (r fakeReceiptRepo) Delete(_ context.Context, firmID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rc, ok := r.s.receipts[id]; ok && rc.FirmID == firmID {
		delete(r.s.receipts, id)
	}
	return nil
}

func (r fakeReceiptRepo) DeleteByBill(_ context.Context, firmID, billID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rc := range r.s.receipts {
		if rc.FirmID == firmID && rc.PartyBillID == billID {
			delete(r.s.receipts, id)
		}
	}
	return nil
}

func (r fakeReceiptRepo) ListByBills(_ context.Context, firmID uuid.UUID, billIDs []uuid.UUID) ([]entity.Receipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range billIDs {
		want[id] = true
	}
	out := []entity.Receipt{}
	for _, rc := range r.s.receipts {
		if rc.FirmID == firmID && want[rc.PartyBillID] {
			out = append(out, *rc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceiveDate.Before(out[j].ReceiveDate) })
	return out, nil
}

// fiscal periods

type fakePeriodRepo struct{ s *memStore }

func (r fakePeriodRepo) GetByID(_ context.Context, firmID, id uuid.UUID) (*entity.FiscalPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok || p.FirmID != firmID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r fakePeriodRepo) GetByLabel(_ context.Context, firmID uuid.UUID, label string) (*entity.FiscalPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.periods {
		if p.FirmID == firmID && p.Label == label {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakePeriodRepo) CreateIfAbsent(_ context.Context, period *entity.FiscalPeriod) (*entity.FiscalPeriod, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.periods {
		if p.FirmID == period.FirmID && p.Label == period.Label {
			cp := *p
			return &cp, false, nil
		}
	}
	if period.ID == uuid.Nil {
		period.ID = uuid.New()
	}
	cp := *period
	r.s.periods[period.ID] = &cp
	return period, true, nil
}

func (r fakePeriodRepo) List(_ context.Context, firmID uuid.UUID) ([]entity.FiscalPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.FiscalPeriod
	for _, p := range r.s.periods {
		if p.FirmID == firmID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// fixture wires every service over one memStore
type fixture struct {
	t        *testing.T
	store    *memStore
	firm     *entity.Firm
	billing  *BillingService
	invoices *InvoiceService
	receipts *ReceiptService
	recv     *ReceivablesService
	behavior *BehaviorService
	reports  *ReportService
	periods  *FiscalPeriodService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	gstNo := "27ABCDE1234F1Z5"
	firm := &entity.Firm{ID: uuid.New(), Name: "Shah Brokers", GSTNo: &gstNo}
	s.firms[firm.ID] = firm

	log := logger.Discard()
	billing := NewBillingService(fakeFirmRepo{s}, fakePartyRepo{s}, fakeTradeRepo{s}, fakeBillRepo{s}, BillingSettings{
		DefaultRate: decimal.NewFromInt(30),
		DueDays:     30,
	})
	policy := retry.Policy{MaxAttempts: 5, MinBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

	return &fixture{
		t:        t,
		store:    s,
		firm:     firm,
		billing:  billing,
		invoices: NewInvoiceService(fakeTx{}, fakeBillRepo{s}, fakeReceiptRepo{s}, fakePartyRepo{s}, fakePeriodRepo{s}, fakeTradeRepo{s}, billing, policy, log),
		receipts: NewReceiptService(fakeTx{}, fakeBillRepo{s}, fakeReceiptRepo{s}, log),
		recv:     NewReceivablesService(fakeFirmRepo{s}, fakeBillRepo{s}, fakeReceiptRepo{s}, billing),
		behavior: NewBehaviorService(fakeBillRepo{s}, fakeReceiptRepo{s}, billing),
		reports:  NewReportService(fakeBillRepo{s}, billing),
		periods:  NewFiscalPeriodService(fakePeriodRepo{s}, log),
	}
}

func (f *fixture) unregister() {
	f.store.firms[f.firm.ID].GSTNo = nil
}

func (f *fixture) party(name string, j enum.Jurisdiction) *entity.Party {
	p := &entity.Party{
		ID:           uuid.New(),
		FirmID:       f.firm.ID,
		Name:         name,
		Jurisdiction: j,
		CGSTRate:     decimal.NewFromInt(9),
		SGSTRate:     decimal.NewFromInt(9),
		IGSTRate:     decimal.NewFromInt(18),
	}
	f.store.parties[p.ID] = p
	return p
}

type tradeOpt func(*entity.Trade)

func sellerRate(r string) tradeOpt {
	return func(t *entity.Trade) { t.SellerBrokerage = dec(r) }
}

func buyerRate(r string) tradeOpt {
	return func(t *entity.Trade) { t.BuyerBrokerage = dec(r) }
}

func (f *fixture) trade(seller, buyer *entity.Party, date, qty string, opts ...tradeOpt) entity.Trade {
	t := entity.Trade{
		ID:        uuid.New(),
		FirmID:    f.firm.ID,
		SellerID:  seller.ID,
		BuyerID:   buyer.ID,
		OrderDate: day(date),
		MaxQty:    dec(qty),
		Unit:      "QTL",
	}
	for _, o := range opts {
		o(&t)
	}
	f.store.trades = append(f.store.trades, t)
	return t
}

func (f *fixture) period(label string) *entity.FiscalPeriod {
	var start int
	_, _ = fmt.Sscanf(label, "%d-", &start)
	p := entity.FiscalYear{StartYear: start}.Period(f.firm.ID)
	p.ID = uuid.New()
	f.store.periods[p.ID] = p
	return p
}

func (f *fixture) issue(p *entity.Party, from, to, billDate string) *entity.PartyBill {
	f.t.Helper()
	bill, err := f.invoices.IssueInvoice(context.Background(), &IssueInvoiceInput{
		FirmID:   f.firm.ID,
		Scope:    entity.Unscoped(),
		PartyID:  p.ID,
		From:     day(from),
		To:       day(to),
		BillDate: day(billDate),
	})
	if err != nil {
		f.t.Fatalf("issue invoice: %v", err)
	}
	return bill
}

func (f *fixture) pay(bill *entity.PartyBill, date, amount string) {
	f.t.Helper()
	_, err := f.receipts.AddReceipt(context.Background(), &AddReceiptInput{
		FirmID:      f.firm.ID,
		BillID:      bill.ID,
		ReceiveDate: day(date),
		Amount:      decimal.RequireFromString(amount),
		Mode:        "bank",
	})
	if err != nil {
		f.t.Fatalf("add receipt: %v", err)
	}
}

func day(s string) time.Time {
	d, err := dateutil.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
