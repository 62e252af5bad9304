// Package promotion turns an offer into a concrete promotion by filling each of its
// product sets with one product.
package promotion

import (
	"context"
	"errors"
	"fmt"

	"mcorder/internal/models"
)

var (
	ErrNoCandidates   = errors.New("product set has no candidates")
	ErrInvalidChoice  = errors.New("choice is out of range")
	ErrEmptyAnyChoice = errors.New("no product code given for an any product set")
)

// Candidate is one product a set may be filled with. Name is empty when unknown.
type Candidate struct {
	Code models.ProductCode
	Name string
}

// Chooser makes the decisions a customer makes while filling an offer
type Chooser interface {
	// AnyProduct returns a free-form product code for a set that accepts any product.
	AnyProduct(ctx context.Context, offer models.Offer, set models.ProductSet) (models.ProductCode, error)
	// Candidate returns the index of the chosen candidate.
	Candidate(ctx context.Context, offer models.Offer, set models.ProductSet, candidates []Candidate) (int, error)
}

// Namer resolves display names, looking them up remotely only when lookup is set
type Namer interface {
	ItemName(ctx context.Context, code models.ProductCode, lookup, includePromotions bool) (string, bool, error)
}

type Options struct {
	// LookupItems looks up every candidate missing from the known items table.
	LookupItems bool
	// LookupPromotions also names candidates that are not Core items.
	LookupPromotions bool
	// MinProducts looks up missing names for sets with at most this many candidates.
	MinProducts int
}

// Resolve fills every product set of the offer in order. The result has exactly one
// part per set and the discount type of the first set that carries one.
func Resolve(ctx context.Context, offer models.Offer, namer Namer, chooser Chooser, opts Options) (models.Promotion, error) {
	promotion := models.Promotion{
		OfferID: offer.ID,
		Parts:   make([]models.PromotionPart, 0, len(offer.ProductSets)),
	}
	discountSet := false

	for i, set := range offer.ProductSets {
		if set.Action != nil && !discountSet {
			promotion.DiscountType = set.Action.DiscountType
			discountSet = true
		}

		code, err := fill(ctx, offer, set, namer, chooser, opts)
		if err != nil {
			return models.Promotion{}, fmt.Errorf("offer %d set %d: %w", offer.ID, i+1, err)
		}
		promotion.Parts = append(promotion.Parts, models.PromotionPart{
			Code:  code,
			Alias: set.Alias,
		})
	}

	return promotion, nil
}

func fill(ctx context.Context, offer models.Offer, set models.ProductSet, namer Namer, chooser Chooser, opts Options) (models.ProductCode, error) {
	if set.AnyProduct {
		code, err := chooser.AnyProduct(ctx, offer, set)
		if err != nil {
			return "", err
		}
		if code == "" {
			return "", ErrEmptyAnyChoice
		}
		return code, nil
	}

	if len(set.Products) == 0 {
		return "", ErrNoCandidates
	}

	lookup := opts.LookupItems || len(set.Products) <= opts.MinProducts
	candidates := make([]Candidate, 0, len(set.Products))
	for _, code := range set.Products {
		name, ok, err := namer.ItemName(ctx, code, lookup, opts.LookupPromotions)
		if err != nil {
			return "", err
		}
		if !ok {
			name = ""
		}
		candidates = append(candidates, Candidate{Code: code, Name: name})
	}

	index, err := chooser.Candidate(ctx, offer, set, candidates)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(candidates) {
		return "", fmt.Errorf("%w: %d of %d", ErrInvalidChoice, index+1, len(candidates))
	}
	return candidates[index].Code, nil
}

// Visible returns the offers a customer may pick. Only deals with a negative id are
// orderable this way unless allDeals is set.
func Visible(offers []models.Offer, allDeals bool) []models.Offer {
	visible := make([]models.Offer, 0, len(offers))
	for _, offer := range offers {
		if offer.ID < 0 || allDeals {
			visible = append(visible, offer)
		}
	}
	return visible
}
