package checkout

import (
	"tillpos/internal/core/apperror"
	"tillpos/internal/core/types"
)

// Compute derives a complete invoice draft from cart lines, service lines
// and payment parameters. It rejects negative totals (InvalidTotal) rather
// than clamping them; the caller must not commit anything on error.
func Compute(items []LineItem, services []ServiceLine, params Params) (Result, error) {
	productsSubtotal := types.Zero()
	for _, it := range items {
		productsSubtotal = productsSubtotal.Add(it.Price.Mul(types.NewMoneyFromInt(int64(it.Quantity))))
	}

	servicesTotal := types.Zero()
	for _, sv := range services {
		servicesTotal = servicesTotal.Add(sv.Amount)
	}

	subtotal := productsSubtotal.Add(servicesTotal)

	discountBase := subtotal
	switch params.DiscountApplyMode {
	case ApplyProducts:
		discountBase = productsSubtotal
	case ApplyServices:
		discountBase = servicesTotal
	}

	discountAmount := params.DiscountValue
	if params.DiscountType == DiscountPercentage {
		discountAmount = types.Percent(discountBase, params.DiscountValue)
	}

	extraFee := params.ExtraFeeValue
	if params.ExtraFeeType == FeePercentage {
		extraFee = types.Percent(subtotal, params.ExtraFeeValue)
	}

	deliveryFee := types.Zero()
	if params.OrderType == OrderDelivery {
		deliveryFee = params.DeliveryFee
	}

	total := subtotal.Sub(discountAmount).Add(extraFee).Add(deliveryFee)
	if total.IsNegative() {
		return Result{}, apperror.NewInvalidTotal(total.String())
	}

	productsProfit, unknown := productsProfit(items)

	discountOnProducts, discountOnServices := apportion(
		discountAmount, params.DiscountApplyMode, productsSubtotal, subtotal,
	)

	finalProductsProfit := types.MaxZero(productsProfit.Sub(discountOnProducts))
	finalServicesProfit := types.MaxZero(servicesTotal.Sub(discountOnServices))

	// Extra fee and delivery fee carry no cost, so both count as pure margin.
	totalProfit := finalProductsProfit.Add(finalServicesProfit).Add(extraFee).Add(deliveryFee)

	summary := Summary{
		ProductsSubtotal: productsSubtotal,
		ServicesTotal:    servicesTotal,
		Subtotal:         subtotal,
		Discount: Discount{
			Type:      params.DiscountType,
			Value:     params.DiscountValue,
			Amount:    discountAmount,
			ApplyMode: params.DiscountApplyMode,
		},
		ExtraFee:      extraFee,
		ExtraFeeType:  params.ExtraFeeType,
		ExtraFeeValue: params.ExtraFeeValue,
		DeliveryFee:   deliveryFee,
		Total:         total,

		TotalProfit:         totalProfit,
		ProductsProfit:      productsProfit,
		FinalProductsProfit: finalProductsProfit,
		FinalServicesProfit: finalServicesProfit,
		ProfitUnknownItems:  unknown,
	}

	status, deliveryPayment := derivePayment(params, total)

	return Result{
		Summary:         summary,
		PaymentStatus:   status,
		DeliveryPayment: deliveryPayment,
	}, nil
}

// productsProfit sums (selling − purchase) × quantity over items with a
// known purchase price. Items lacking one are excluded and reported, which
// preserves correctness instead of assuming zero profit.
func productsProfit(items []LineItem) (types.Money, []string) {
	profit := types.Zero()
	var unknown []string

	for _, it := range items {
		if it.PurchasePrice == nil {
			unknown = append(unknown, it.ProductID)
			continue
		}
		margin := it.Price.Sub(*it.PurchasePrice)
		profit = profit.Add(margin.Mul(types.NewMoneyFromInt(int64(it.Quantity))))
	}

	return profit, unknown
}

// apportion splits the discount between the products and services channels.
// ApplyBoth splits by each channel's share of the subtotal; a named mode
// puts the whole amount on that channel. The ratio formula is used in every
// code path, checkout and edit alike.
func apportion(discount types.Money, mode ApplyMode, productsSubtotal, subtotal types.Money) (onProducts, onServices types.Money) {
	switch mode {
	case ApplyProducts:
		return discount, types.Zero()
	case ApplyServices:
		return types.Zero(), discount
	}

	if subtotal.IsZero() {
		return types.Zero(), types.Zero()
	}

	onProducts = discount.Mul(productsSubtotal).Div(subtotal)
	onServices = discount.Sub(onProducts)
	return onProducts, onServices
}

// derivePayment maps the delivery payment state onto the invoice payment
// status. Non-delivery orders are always fully paid at the register.
func derivePayment(params Params, total types.Money) (PaymentStatus, *DeliveryPayment) {
	if params.OrderType != OrderDelivery || params.DeliveryPayment == nil {
		return PaymentPaidFull, nil
	}

	dp := *params.DeliveryPayment
	dp.RemainingAmount = total.Sub(dp.PaidAmount)

	switch dp.Status {
	case DeliveryCashOnDelivery:
		dp.RemainingAmount = total
		dp.PaidAmount = types.Zero()
		return PaymentUnpaid, &dp
	case DeliveryHalfPaid, DeliveryFullyPaidNoDeliver:
		return PaymentPartial, &dp
	case DeliveryFullyPaid:
		dp.RemainingAmount = types.Zero()
		return PaymentPaidFull, &dp
	}
	return PaymentUnpaid, &dp
}
