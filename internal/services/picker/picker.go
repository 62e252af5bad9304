// Package picker assembles an order from a menu through a sequence of customer choices.
package picker

import (
	"context"
	"errors"
	"fmt"

	"mcorder/internal/models"
)

// PromotionsCategory is the pseudo category listed after the menu categories
const PromotionsCategory = "Promotions"

var ErrInvalidChoice = errors.New("choice is out of range")

// ErrNoPromotion is returned by a PromotionFunc when there is nothing to offer.
// The picker hides the promotions category and goes back to the categories.
var ErrNoPromotion = errors.New("no promotion available")

// Chooser answers the questions of the picker loop
type Chooser interface {
	// Category returns the index of the chosen category name.
	Category(ctx context.Context, names []string) (int, error)
	// Item returns the index of the chosen item, ok is false to go back to the categories.
	Item(ctx context.Context, category models.Category) (index int, ok bool, err error)
	// Quantity returns how many of the item to add. Zero means the default of one.
	Quantity(ctx context.Context, item models.MenuItem) (int, error)
	// Done reports whether the order is complete.
	Done(ctx context.Context) (bool, error)
}

// PromotionFunc resolves the single promotion an order may carry
type PromotionFunc func(ctx context.Context) (models.Promotion, error)

// Build runs the picker loop until the chooser is done. A nil promoFn hides the
// promotions category.
func Build(ctx context.Context, menu *models.Menu, chooser Chooser, promoFn PromotionFunc) (models.Order, error) {
	var order models.Order
	promotionUsed := promoFn == nil

	categories := make([]models.Category, 0, len(menu.Categories))
	for _, category := range menu.Categories {
		if len(category.Items) > 0 {
			categories = append(categories, category)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return models.Order{}, err
		}

		names := make([]string, 0, len(categories)+1)
		for _, category := range categories {
			names = append(names, category.Name)
		}
		if !promotionUsed {
			names = append(names, PromotionsCategory)
		}
		if len(names) == 0 {
			return order, nil
		}

		index, err := chooser.Category(ctx, names)
		if err != nil {
			return models.Order{}, err
		}
		if index < 0 || index >= len(names) {
			return models.Order{}, fmt.Errorf("category %d: %w", index+1, ErrInvalidChoice)
		}

		if index == len(categories) {
			deal, err := promoFn(ctx)
			if errors.Is(err, ErrNoPromotion) {
				promotionUsed = true
				continue
			}
			if err != nil {
				return models.Order{}, fmt.Errorf("promotion: %w", err)
			}
			order.Deals = append(order.Deals, deal)
			// one promotion per order
			promotionUsed = true
		} else {
			added, err := pickItem(ctx, categories[index], chooser, &order)
			if err != nil {
				return models.Order{}, err
			}
			if !added {
				continue
			}
		}

		done, err := chooser.Done(ctx)
		if err != nil {
			return models.Order{}, err
		}
		if done {
			return order, nil
		}
	}
}

func pickItem(ctx context.Context, category models.Category, chooser Chooser, order *models.Order) (bool, error) {
	index, ok, err := chooser.Item(ctx, category)
	if err != nil || !ok {
		return false, err
	}
	if index < 0 || index >= len(category.Items) {
		return false, fmt.Errorf("item %d in %s: %w", index+1, category.Name, ErrInvalidChoice)
	}
	item := category.Items[index]

	quantity, err := chooser.Quantity(ctx, item)
	if err != nil {
		return false, err
	}
	if quantity < 0 {
		return false, fmt.Errorf("quantity %d: %w", quantity, ErrInvalidChoice)
	}
	if quantity == 0 {
		quantity = 1
	}

	order.Normal = append(order.Normal, models.NormalItem{Code: item.Code, Quantity: quantity})
	return true, nil
}
