package product

import (
	"strings"
	"unicode/utf8"

	"github.com/xenking/steezy-shop/internal/domain/validate"
)

// MaxTitleLen is the longest accepted title, in characters.
const MaxTitleLen = 255

// Validate checks the admin form rules: a title of at most MaxTitleLen
// characters, a category, non-negative price and stock, and a discount price
// that is non-negative and does not exceed the price.
func Validate(it Item) error {
	errs := validate.Errors{}

	title := strings.TrimSpace(it.Title)
	switch {
	case title == "":
		errs.Add("title", "is required")
	case utf8.RuneCountInString(title) > MaxTitleLen:
		errs.Add("title", "must be at most 255 characters")
	}
	if strings.TrimSpace(it.CategoryID) == "" {
		errs.Add("category", "is required")
	}
	if it.Price.IsNegative() {
		errs.Add("price", "must not be negative")
	}
	if it.DiscountPrice.IsNegative() {
		errs.Add("discount", "must not be negative")
	} else if it.DiscountPrice.GreaterThan(it.Price) {
		errs.Add("discount", "must not exceed price")
	}
	if it.Stock < 0 {
		errs.Add("stock", "must not be negative")
	}

	return errs.Err("product")
}
