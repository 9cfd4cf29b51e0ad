package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// BillingSettings are the system-wide billing defaults
type BillingSettings struct {
	DefaultRate decimal.Decimal
	DueDays     int
}

// BillingService computes party bills from the trade ledger. Nothing it
// returns is stored; every call recomputes from current trades.
type BillingService struct {
	firmRepo  repository.FirmRepository
	partyRepo repository.PartyRepository
	tradeRepo repository.TradeRepository
	billRepo  repository.PartyBillRepository
	settings  BillingSettings
}

// NewBillingService creates a new billing service
func NewBillingService(
	firmRepo repository.FirmRepository,
	partyRepo repository.PartyRepository,
	tradeRepo repository.TradeRepository,
	billRepo repository.PartyBillRepository,
	settings BillingSettings,
) *BillingService {
	return &BillingService{
		firmRepo:  firmRepo,
		partyRepo: partyRepo,
		tradeRepo: tradeRepo,
		billRepo:  billRepo,
		settings:  settings,
	}
}

// BillLine is one trade on a bill
type BillLine struct {
	SerialNo       int
	TradeID        uuid.UUID
	OrderDate      time.Time
	ContractNo     *string
	Role           enum.PartyRole
	CounterpartyID uuid.UUID
	Counterparty   string
	Quantity       decimal.Decimal
	Unit           string
	Rate           decimal.Decimal
	Amount         decimal.Decimal
}

// BillComputation is the full priced bill for a party and date range
type BillComputation struct {
	Party          entity.PartyRef
	FirmRegistered bool
	From           time.Time
	To             time.Time
	Override       *decimal.Decimal
	Items          []BillLine
	Subtotal       decimal.Decimal
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	IGST           decimal.Decimal
	TaxTotal       decimal.Decimal
	Total          decimal.Decimal
}

// ComputeBillInput represents the bill preview input
type ComputeBillInput struct {
	FirmID    uuid.UUID
	PartyID   uuid.UUID
	From      time.Time
	To        time.Time
	Brokerage *decimal.Decimal
}

// ComputeBill prices every live trade of the party dated within [From, To]
func (s *BillingService) ComputeBill(ctx context.Context, input *ComputeBillInput) (*BillComputation, error) {
	if input.From.After(input.To) {
		return nil, apperror.ErrInvalidDateRange
	}
	if err := checkOverride(input.Brokerage); err != nil {
		return nil, err
	}

	firm, err := s.getFirm(ctx, input.FirmID)
	if err != nil {
		return nil, err
	}
	party, err := s.getParty(ctx, input.FirmID, input.PartyID)
	if err != nil {
		return nil, err
	}

	return s.compute(ctx, firm, party, input.From, input.To, input.Brokerage, true)
}

// ComputeInvoice recomputes a stored bill with its stored range and override
func (s *BillingService) ComputeInvoice(ctx context.Context, firmID, billID uuid.UUID) (*entity.PartyBill, *BillComputation, error) {
	inv, err := s.loadInvoice(ctx, firmID, billID)
	if err != nil {
		return nil, nil, err
	}
	return inv.bill, inv.comp, nil
}

// invoiceView is a stored bill with everything needed to price it
type invoiceView struct {
	bill  *entity.PartyBill
	firm  *entity.Firm
	party *entity.Party
	comp  *BillComputation
}

func (s *BillingService) loadInvoice(ctx context.Context, firmID, billID uuid.UUID) (*invoiceView, error) {
	bill, err := s.billRepo.GetByID(ctx, firmID, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.ErrInvoiceNotFound
	}

	firm, err := s.getFirm(ctx, firmID)
	if err != nil {
		return nil, err
	}
	party, err := s.getParty(ctx, firmID, bill.PartyID)
	if err != nil {
		return nil, err
	}

	comp, err := s.compute(ctx, firm, party, bill.FromDate, bill.ToDate, bill.Brokerage, true)
	if err != nil {
		return nil, err
	}
	return &invoiceView{bill: bill, firm: firm, party: party, comp: comp}, nil
}

// BillTotals recomputes the totals of bills owned by firm. parties must
// contain every bill's party.
func (s *BillingService) BillTotals(ctx context.Context, firm *entity.Firm, bills []entity.PartyBill, parties map[uuid.UUID]*entity.Party) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(bills))
	for i := range bills {
		bill := &bills[i]
		party, ok := parties[bill.PartyID]
		if !ok {
			return nil, apperror.NewNotFoundError("Party")
		}
		comp, err := s.compute(ctx, firm, party, bill.FromDate, bill.ToDate, bill.Brokerage, false)
		if err != nil {
			return nil, err
		}
		totals[bill.ID] = comp.Total
	}
	return totals, nil
}

// PartiesOf loads the distinct parties of bills, keyed by id
func (s *BillingService) PartiesOf(ctx context.Context, firmID uuid.UUID, bills []entity.PartyBill) (map[uuid.UUID]*entity.Party, error) {
	ids := make([]uuid.UUID, 0, len(bills))
	seen := make(map[uuid.UUID]struct{}, len(bills))
	for _, b := range bills {
		if _, ok := seen[b.PartyID]; !ok {
			seen[b.PartyID] = struct{}{}
			ids = append(ids, b.PartyID)
		}
	}
	return s.partyMap(ctx, firmID, ids)
}

// DueDays resolves the payment term: party, then firm, then system default
func (s *BillingService) DueDays(firm *entity.Firm, party *entity.Party) int {
	if party != nil && party.DueDays != nil && *party.DueDays > 0 {
		return *party.DueDays
	}
	if firm != nil && firm.DefaultDueDays != nil && *firm.DefaultDueDays > 0 {
		return *firm.DefaultDueDays
	}
	return s.settings.DueDays
}

func (s *BillingService) compute(
	ctx context.Context,
	firm *entity.Firm,
	party *entity.Party,
	from, to time.Time,
	override *decimal.Decimal,
	withNames bool,
) (*BillComputation, error) {
	trades, err := s.tradeRepo.ListForParty(ctx, firm.ID, party.ID, from, to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Before(&trades[j]) })

	var names map[uuid.UUID]*entity.Party
	if withNames {
		ids := make([]uuid.UUID, 0, len(trades))
		for i := range trades {
			ids = append(ids, trades[i].CounterpartyID(trades[i].RoleOf(party.ID)))
		}
		if names, err = s.partyMap(ctx, firm.ID, ids); err != nil {
			return nil, err
		}
	}

	items := make([]BillLine, 0, len(trades))
	subtotal := decimal.Zero
	for i := range trades {
		t := &trades[i]
		role := t.RoleOf(party.ID)
		qty := t.Quantity()
		rate := ResolveRate(override, t.BrokerageFor(role), s.settings.DefaultRate)
		amount := round2(qty.Mul(rate))
		subtotal = subtotal.Add(amount)

		line := BillLine{
			SerialNo:       i + 1,
			TradeID:        t.ID,
			OrderDate:      t.OrderDate,
			ContractNo:     t.ContractNo,
			Role:           role,
			CounterpartyID: t.CounterpartyID(role),
			Quantity:       qty,
			Unit:           t.Unit,
			Rate:           rate,
			Amount:         amount,
		}
		if cp, ok := names[line.CounterpartyID]; ok {
			line.Counterparty = cp.Name
		}
		items = append(items, line)
	}

	registered := firm.TaxRegistered()
	tax := ResolveTax(subtotal, registered, party.Jurisdiction, TaxRates{
		CGST: party.CGSTRate,
		SGST: party.SGSTRate,
		IGST: party.IGSTRate,
	})

	var storedOverride *decimal.Decimal
	if isSet(override) {
		storedOverride = override
	}

	return &BillComputation{
		Party:          party.Ref(),
		FirmRegistered: registered,
		From:           from,
		To:             to,
		Override:       storedOverride,
		Items:          items,
		Subtotal:       round2(subtotal),
		CGST:           tax.CGST,
		SGST:           tax.SGST,
		IGST:           tax.IGST,
		TaxTotal:       tax.TaxTotal,
		Total:          tax.Total,
	}, nil
}

func (s *BillingService) getFirm(ctx context.Context, firmID uuid.UUID) (*entity.Firm, error) {
	firm, err := s.firmRepo.GetByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	if firm == nil {
		return nil, apperror.NewNotFoundError("Firm")
	}
	return firm, nil
}

func (s *BillingService) getParty(ctx context.Context, firmID, partyID uuid.UUID) (*entity.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, firmID, partyID)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, apperror.NewNotFoundError("Party")
	}
	return party, nil
}

func (s *BillingService) partyMap(ctx context.Context, firmID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*entity.Party, error) {
	parties, err := s.partyRepo.GetByIDs(ctx, firmID, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*entity.Party, len(parties))
	for i := range parties {
		out[parties[i].ID] = &parties[i]
	}
	return out, nil
}
