package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestResolveRate(t *testing.T) {
	def := decimal.NewFromInt(30)

	tests := []struct {
		name      string
		override  *decimal.Decimal
		tradeRate *decimal.Decimal
		want      string
	}{
		{"override wins", dec("10"), dec("25"), "10"},
		{"trade rate", nil, dec("25"), "25"},
		{"default", nil, nil, "30"},
		{"zero override is unset", dec("0"), dec("25"), "25"},
		{"zero trade rate is unset", nil, dec("0"), "30"},
		{"fractional override", dec("12.5"), nil, "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRate(tt.override, tt.tradeRate, def)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestResolveTax(t *testing.T) {
	subtotal := decimal.NewFromInt(3000)
	rates := TaxRates{CGST: decimal.NewFromInt(9), SGST: decimal.NewFromInt(9), IGST: decimal.NewFromInt(18)}

	tests := []struct {
		name         string
		registered   bool
		jurisdiction enum.Jurisdiction
		cgst, sgst   string
		igst, total  string
	}{
		{"intra state", true, enum.JurisdictionIntra, "270", "270", "0", "3540"},
		{"inter state", true, enum.JurisdictionInter, "0", "0", "540", "3540"},
		{"unknown jurisdiction is intra", true, enum.Jurisdiction("OTHER"), "270", "270", "0", "3540"},
		{"unregistered firm", false, enum.JurisdictionIntra, "0", "0", "0", "3000"},
		{"unregistered inter", false, enum.JurisdictionInter, "0", "0", "0", "3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTax(subtotal, tt.registered, tt.jurisdiction, rates)
			assert.Equal(t, tt.cgst, got.CGST.String())
			assert.Equal(t, tt.sgst, got.SGST.String())
			assert.Equal(t, tt.igst, got.IGST.String())
			assert.Equal(t, tt.total, got.Total.String())
			assert.True(t, got.CGST.IsZero() || got.IGST.IsZero(), "CGST/SGST and IGST must not both apply")
		})
	}
}

func TestResolveTax_RoundsTotalFromRawComponents(t *testing.T) {
	// 9% of 33.33 is 2.9997 each; displayed 3.00 + 3.00, total from raw sum
	got := ResolveTax(decimal.RequireFromString("33.33"), true, enum.JurisdictionIntra, TaxRates{
		CGST: decimal.NewFromInt(9),
		SGST: decimal.NewFromInt(9),
	})
	assert.Equal(t, "3", got.CGST.String())
	assert.Equal(t, "6", got.TaxTotal.String())
	assert.Equal(t, "39.33", got.Total.String())
}

func TestComputeBill_LinesOrderedAndPriced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party("Patel Traders", enum.JurisdictionIntra)
	q := f.party("Quality Mills", enum.JurisdictionIntra)
	r := f.party("Raj Oils", enum.JurisdictionIntra)

	f.trade(p, q, "2024-05-02", "100", sellerRate("25"))
	f.trade(r, p, "2024-05-01", "50")
	f.trade(q, r, "2024-05-01", "70") // not p's trade
	f.trade(p, q, "2024-06-01", "10") // out of range

	comp, err := f.billing.ComputeBill(ctx, &ComputeBillInput{
		FirmID:  f.firm.ID,
		PartyID: p.ID,
		From:    day("2024-05-01"),
		To:      day("2024-05-31"),
	})
	require.NoError(t, err)
	require.Len(t, comp.Items, 2)

	first, second := comp.Items[0], comp.Items[1]
	assert.Equal(t, 1, first.SerialNo)
	assert.Equal(t, enum.PartyRoleBuyer, first.Role)
	assert.Equal(t, "Raj Oils", first.Counterparty)
	assert.Equal(t, "30", first.Rate.String())
	assert.Equal(t, "1500", first.Amount.String())

	assert.Equal(t, 2, second.SerialNo)
	assert.Equal(t, enum.PartyRoleSeller, second.Role)
	assert.Equal(t, q.ID, second.CounterpartyID)
	assert.Equal(t, "25", second.Rate.String())
	assert.Equal(t, "2500", second.Amount.String())

	assert.Equal(t, "4000", comp.Subtotal.String())
	assert.Equal(t, "360", comp.CGST.String())
	assert.Equal(t, "360", comp.SGST.String())
	assert.Equal(t, "4720", comp.Total.String())
	assert.Nil(t, comp.Override)
}

func TestComputeBill_OverrideAppliesToEveryLine(t *testing.T) {
	f := newFixture(t)
	f.unregister()
	p := f.party("Patel Traders", enum.JurisdictionIntra)
	q := f.party("Quality Mills", enum.JurisdictionIntra)
	f.trade(p, q, "2024-05-02", "100", sellerRate("25"))
	f.trade(q, p, "2024-05-03", "50", buyerRate("40"))

	comp, err := f.billing.ComputeBill(context.Background(), &ComputeBillInput{
		FirmID:    f.firm.ID,
		PartyID:   p.ID,
		From:      day("2024-05-01"),
		To:        day("2024-05-31"),
		Brokerage: dec("10"),
	})
	require.NoError(t, err)

	for _, line := range comp.Items {
		assert.Equal(t, "10", line.Rate.String())
	}
	assert.Equal(t, "1500", comp.Subtotal.String())
	assert.Equal(t, "1500", comp.Total.String())
	require.NotNil(t, comp.Override)
	assert.Equal(t, "10", comp.Override.String())
}

func TestComputeBill_UnregisteredFirmChargesNoTax(t *testing.T) {
	f := newFixture(t)
	f.unregister()
	p := f.party("Patel Traders", enum.JurisdictionInter)
	q := f.party("Quality Mills", enum.JurisdictionIntra)
	f.trade(p, q, "2024-05-02", "100")

	comp, err := f.billing.ComputeBill(context.Background(), &ComputeBillInput{
		FirmID: f.firm.ID, PartyID: p.ID, From: day("2024-05-01"), To: day("2024-05-31"),
	})
	require.NoError(t, err)
	assert.False(t, comp.FirmRegistered)
	assert.Equal(t, "3000", comp.Subtotal.String())
	assert.True(t, comp.TaxTotal.IsZero())
	assert.Equal(t, "3000", comp.Total.String())
}

func TestComputeBill_IsDeterministic(t *testing.T) {
	f := newFixture(t)
	p := f.party("Patel Traders", enum.JurisdictionIntra)
	q := f.party("Quality Mills", enum.JurisdictionIntra)
	for i := 0; i < 5; i++ {
		f.trade(p, q, "2024-05-02", "33.333", sellerRate("7.25"))
	}

	input := &ComputeBillInput{FirmID: f.firm.ID, PartyID: p.ID, From: day("2024-05-01"), To: day("2024-05-31")}
	a, err := f.billing.ComputeBill(context.Background(), input)
	require.NoError(t, err)
	b, err := f.billing.ComputeBill(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestComputeBill_SkipsDeletedTrades(t *testing.T) {
	f := newFixture(t)
	p := f.party("Patel Traders", enum.JurisdictionIntra)
	q := f.party("Quality Mills", enum.JurisdictionIntra)
	f.trade(p, q, "2024-05-02", "100")
	f.store.trades[0].DeletedAt = gorm.DeletedAt{Time: day("2024-05-03"), Valid: true}

	comp, err := f.billing.ComputeBill(context.Background(), &ComputeBillInput{
		FirmID: f.firm.ID, PartyID: p.ID, From: day("2024-05-01"), To: day("2024-05-31"),
	})
	require.NoError(t, err)
	assert.Empty(t, comp.Items)
	assert.True(t, comp.Total.IsZero())
}

func TestComputeBill_Errors(t *testing.T) {
	f := newFixture(t)
	p := f.party("Patel Traders", enum.JurisdictionIntra)
	ctx := context.Background()

	_, err := f.billing.ComputeBill(ctx, &ComputeBillInput{
		FirmID: f.firm.ID, PartyID: p.ID, From: day("2024-06-01"), To: day("2024-05-01"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidDateRange)

	// same rule as issuance
	_, err = f.billing.ComputeBill(ctx, &ComputeBillInput{
		FirmID: f.firm.ID, PartyID: p.ID, From: day("2024-05-01"), To: day("2024-05-31"), Brokerage: dec("-5"),
	})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 422, appErr.Code)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "brokerage", appErr.Errors[0].Field)

	_, err = f.billing.ComputeBill(ctx, &ComputeBillInput{
		FirmID: f.firm.ID, PartyID: uuid.New(), From: day("2024-05-01"), To: day("2024-05-31"),
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	// another firm's party is invisible
	_, err = f.billing.ComputeBill(ctx, &ComputeBillInput{
		FirmID: uuid.New(), PartyID: p.ID, From: day("2024-05-01"), To: day("2024-05-31"),
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestDueDays(t *testing.T) {
	f := newFixture(t)
	partyDays, firmDays := 15, 45

	p := f.party("Patel Traders", enum.JurisdictionIntra)
	assert.Equal(t, 30, f.billing.DueDays(f.firm, p))

	f.firm.DefaultDueDays = &firmDays
	assert.Equal(t, 45, f.billing.DueDays(f.firm, p))

	p.DueDays = &partyDays
	assert.Equal(t, 15, f.billing.DueDays(f.firm, p))
}
