package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpos/internal/core/apperror"
	"tillpos/internal/core/types"
)

func money(s string) types.Money { return types.MustMoney(s) }

func moneyPtr(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func assertMoney(t *testing.T, want string, got types.Money) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestComputeScenarioA(t *testing.T) {
	// One item price 100 × qty 2, 10% discount on products, fixed fee 5, no delivery.
	items := []LineItem{{ProductID: "1", Price: money("100"), Quantity: 2}}
	params := Params{
		DiscountType:      DiscountPercentage,
		DiscountValue:     money("10"),
		DiscountApplyMode: ApplyProducts,
		ExtraFeeType:      FeeFixed,
		ExtraFeeValue:     money("5"),
		OrderType:         OrderPickup,
	}

	res, err := Compute(items, nil, params)
	require.NoError(t, err)

	assertMoney(t, "200", res.Summary.Subtotal)
	assertMoney(t, "20", res.Summary.Discount.Amount)
	assertMoney(t, "185", res.Summary.Total)
	assert.Equal(t, PaymentPaidFull, res.PaymentStatus)
}

func TestComputeScenarioBHalfPaidDelivery(t *testing.T) {
	items := []LineItem{{ProductID: "1", Price: money("130"), Quantity: 1}}
	params := Params{
		DiscountType:      DiscountFixed,
		DiscountApplyMode: ApplyBoth,
		ExtraFeeType:      FeeFixed,
		OrderType:         OrderDelivery,
		DeliveryFee:       money("20"),
		DeliveryPayment: &DeliveryPayment{
			Status:     DeliveryHalfPaid,
			PaidAmount: money("50"),
		},
	}

	res, err := Compute(items, nil, params)
	require.NoError(t, err)

	assertMoney(t, "150", res.Summary.Total)
	assert.Equal(t, PaymentPartial, res.PaymentStatus)
	require.NotNil(t, res.DeliveryPayment)
	assertMoney(t, "100", res.DeliveryPayment.RemainingAmount)
}

func TestComputeRejectsNegativeTotal(t *testing.T) {
	items := []LineItem{{ProductID: "1", Price: money("10"), Quantity: 1}}
	params := Params{
		DiscountType:      DiscountFixed,
		DiscountValue:     money("50"),
		DiscountApplyMode: ApplyBoth,
	}

	_, err := Compute(items, nil, params)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTotal))
}

func TestComputeTotalInvariant(t *testing.T) {
	items := []LineItem{
		{ProductID: "1", Price: money("33.50"), Quantity: 3},
		{ProductID: "2", Price: money("7.25"), Quantity: 2},
	}
	services := []ServiceLine{{ID: "s1", Description: "install", Amount: money("40")}}
	params := Params{
		DiscountType:      DiscountPercentage,
		DiscountValue:     money("7.5"),
		DiscountApplyMode: ApplyBoth,
		ExtraFeeType:      FeePercentage,
		ExtraFeeValue:     money("2"),
		OrderType:         OrderDelivery,
		DeliveryFee:       money("12"),
	}

	res, err := Compute(items, services, params)
	require.NoError(t, err)

	s := res.Summary
	want := s.Subtotal.Sub(s.Discount.Amount).Add(s.ExtraFee).Add(s.DeliveryFee)
	assert.True(t, want.Equal(s.Total), "total must equal subtotal - discount + fee + delivery")
}

func TestProfitApportionmentBothChannels(t *testing.T) {
	// Products 100 (profit 40), services 100, fixed discount 50 on both:
	// products carry 25 of it, services the other 25.
	items := []LineItem{{ProductID: "1", Price: money("100"), PurchasePrice: moneyPtr("60"), Quantity: 1}}
	services := []ServiceLine{{ID: "s1", Amount: money("100")}}
	params := Params{
		DiscountType:      DiscountFixed,
		DiscountValue:     money("50"),
		DiscountApplyMode: ApplyBoth,
	}

	res, err := Compute(items, services, params)
	require.NoError(t, err)

	assertMoney(t, "40", res.Summary.ProductsProfit)
	assertMoney(t, "15", res.Summary.FinalProductsProfit)
	assertMoney(t, "75", res.Summary.FinalServicesProfit)
	assertMoney(t, "90", res.Summary.TotalProfit)
}

func TestProfitClampedAtZeroPerChannel(t *testing.T) {
	items := []LineItem{{ProductID: "1", Price: money("100"), PurchasePrice: moneyPtr("95"), Quantity: 1}}
	params := Params{
		DiscountType:      DiscountFixed,
		DiscountValue:     money("30"),
		DiscountApplyMode: ApplyProducts,
	}

	res, err := Compute(items, nil, params)
	require.NoError(t, err)

	assertMoney(t, "5", res.Summary.ProductsProfit)
	assertMoney(t, "0", res.Summary.FinalProductsProfit)
}

func TestUnknownPurchasePriceExcludedFromProfit(t *testing.T) {
	items := []LineItem{
		{ProductID: "known", Price: money("50"), PurchasePrice: moneyPtr("30"), Quantity: 2},
		{ProductID: "mystery", Price: money("80"), Quantity: 1},
	}

	res, err := Compute(items, nil, Params{DiscountApplyMode: ApplyBoth})
	require.NoError(t, err)

	assertMoney(t, "40", res.Summary.ProductsProfit)
	assert.Equal(t, []string{"mystery"}, res.Summary.ProfitUnknownItems)
}

func TestCashOnDeliveryIsUnpaid(t *testing.T) {
	items := []LineItem{{ProductID: "1", Price: money("60"), Quantity: 1}}
	params := Params{
		OrderType:       OrderDelivery,
		DeliveryFee:     money("10"),
		DeliveryPayment: &DeliveryPayment{Status: DeliveryCashOnDelivery},
	}

	res, err := Compute(items, nil, params)
	require.NoError(t, err)

	assert.Equal(t, PaymentUnpaid, res.PaymentStatus)
	assertMoney(t, "70", res.DeliveryPayment.RemainingAmount)
	assertMoney(t, "0", res.DeliveryPayment.PaidAmount)
}

func TestFullyPaidDeliveryHasNoRemainder(t *testing.T) {
	items := []LineItem{{ProductID: "1", Price: money("60"), Quantity: 1}}
	params := Params{
		OrderType: OrderDelivery,
		DeliveryPayment: &DeliveryPayment{
			Status:     DeliveryFullyPaid,
			PaidAmount: money("60"),
		},
	}

	res, err := Compute(items, nil, params)
	require.NoError(t, err)

	assert.Equal(t, PaymentPaidFull, res.PaymentStatus)
	assertMoney(t, "0", res.DeliveryPayment.RemainingAmount)
}

func TestZeroSubtotalApportionsNothing(t *testing.T) {
	res, err := Compute(nil, nil, Params{
		DiscountType:      DiscountFixed,
		DiscountValue:     money("0"),
		DiscountApplyMode: ApplyBoth,
	})
	require.NoError(t, err)
	assertMoney(t, "0", res.Summary.Total)
}
