package handlers

import "fmt"

type discountUpdateInput struct {
	Price           *float64
	DiscountPercent *float64
}

type discountUpdateResult struct {
	Price              float64
	DiscountPercent    float64
	SetDiscountPercent bool
}

func validateDiscountFields(price, discountPercent float64) error {
	if price <= 0 {
		return fmt.Errorf("price must be greater than 0")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return fmt.Errorf("discountPercent must be between 0 and 100")
	}
	return nil
}

// resolveDiscountUpdate merges a partial price/discount patch over the
// existing values and validates the combination.
func resolveDiscountUpdate(existingPrice, existingDiscount float64, input discountUpdateInput) (discountUpdateResult, error) {
	result := discountUpdateResult{
		Price:           existingPrice,
		DiscountPercent: existingDiscount,
	}

	if input.Price != nil {
		result.Price = *input.Price
	}

	if input.DiscountPercent != nil {
		result.DiscountPercent = *input.DiscountPercent
		result.SetDiscountPercent = true
	}

	if err := validateDiscountFields(result.Price, result.DiscountPercent); err != nil {
		return discountUpdateResult{}, err
	}

	return result, nil
}
