package mcd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mcorder/internal/models"
)

const (
	tagCore        = "Core"
	tagPromotional = "Promotional"
)

// MenuOptions controls which items Menu includes
type MenuOptions struct {
	// ShowPromotions includes items that are not tagged Core.
	ShowPromotions bool
	// LookupPromoBases resolves composite promotional codes ("123-456") to their base item.
	LookupPromoBases bool
}

type storeInfoResponse struct {
	Data struct {
		OutageProductCodes []models.ProductCode `json:"OutageProductCodes"`
	} `json:"Data"`
}

type categoryListResponse struct {
	Categories struct {
		Category []struct {
			ID json.Number `json:"category_id"`
		} `json:"category"`
	} `json:"categories"`
}

type menuItem struct {
	ExternalID models.ProductCode `json:"external_id"`
	Name       string             `json:"item_name"`
	DoNotShow  string             `json:"do_not_show"`
}

type categoryResponse struct {
	Error    json.RawMessage `json:"error"`
	Category struct {
		Name  string `json:"category_name"`
		Items struct {
			Item []menuItem `json:"item"`
		} `json:"items"`
	} `json:"category"`
}

type itemLookupResponse struct {
	Error json.RawMessage `json:"error"`
	Items struct {
		Item menuItem `json:"item"`
	} `json:"items"`
}

// Menu builds the menu of a store. Items on the store's outage list are never included.
func (c *Client) Menu(ctx context.Context, store models.Store, opts MenuOptions) (*models.Menu, error) {
	if err := c.requireSignIn(); err != nil {
		return nil, err
	}

	outages, err := c.outages(ctx, store)
	if err != nil {
		return nil, err
	}

	params := c.menuParams()
	params.Set("showLiveData", "1")
	params.Set("categoryType", "1")

	body, err := c.get(ctx, menuCategoriesPath, params)
	if err != nil {
		return nil, fmt.Errorf("menu categories: %w", err)
	}
	var list categoryListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", menuCategoriesPath, err)
	}

	menu := &models.Menu{}
	for _, entry := range list.Categories.Category {
		params := c.menuParams()
		params.Set("showLiveData", "1")
		params.Set("categoryId", entry.ID.String())

		body, err := c.get(ctx, menuCategoryPath, params)
		if err != nil {
			return nil, fmt.Errorf("menu category %s: %w", entry.ID, err)
		}
		var detail categoryResponse
		if err := json.Unmarshal(body, &detail); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", menuCategoryPath, err)
		}
		if hasError(detail.Error) {
			return nil, &APIError{Endpoint: menuCategoryPath, StatusCode: http.StatusOK, Body: body}
		}

		category := menu.Category(detail.Category.Name)
		for _, item := range detail.Category.Items.Item {
			if err := c.addMenuItem(ctx, category, item, outages, opts); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Info("menu_built", "Built store menu", "", map[string]interface{}{
		"store_id":   store.ID,
		"categories": len(menu.Categories),
		"outages":    len(outages),
	})

	return menu, nil
}

func (c *Client) addMenuItem(ctx context.Context, category *models.Category, item menuItem, outages map[models.ProductCode]bool, opts MenuOptions) error {
	if !outages[item.ExternalID] && (item.DoNotShow == tagCore || opts.ShowPromotions) {
		category.Put(item.Name, item.ExternalID)
		if err := c.items.Put(item.ExternalID, item.Name); err != nil {
			return err
		}
	}

	if !opts.LookupPromoBases || item.DoNotShow != tagPromotional {
		return nil
	}
	base, ok := item.ExternalID.Base()
	if !ok || outages[base] {
		return nil
	}

	name, found, err := c.LookupItem(ctx, base, false)
	if err != nil {
		return err
	}
	if found {
		category.Put(name, base)
	}
	return nil
}

func (c *Client) outages(ctx context.Context, store models.Store) (map[models.ProductCode]bool, error) {
	params := c.appParams()
	params.Set("storeNumber", store.ID)

	body, err := c.get(ctx, storeInfoPath, params)
	if err != nil {
		return nil, fmt.Errorf("store information: %w", err)
	}
	var info storeInfoResponse
	if err := decodeResult(storeInfoPath, body, &info); err != nil {
		return nil, fmt.Errorf("store information: %w", err)
	}

	outages := make(map[models.ProductCode]bool, len(info.Data.OutageProductCodes))
	for _, code := range info.Data.OutageProductCodes {
		outages[code] = true
	}
	return outages, nil
}

// LookupItem returns the display name of a single product. ok is false when the API
// does not know the code, or when the item is not Core and includePromotions is false.
func (c *Client) LookupItem(ctx context.Context, code models.ProductCode, includePromotions bool) (name string, ok bool, err error) {
	params := c.menuParams()
	params.Set("externalItemId", code.String())

	body, err := c.get(ctx, lookupItemPath, params)
	if err != nil {
		return "", false, fmt.Errorf("lookup item %s: %w", code, err)
	}

	var resp itemLookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false, fmt.Errorf("failed to decode %s response: %w", lookupItemPath, err)
	}
	if hasError(resp.Error) {
		c.logger.Debug("item_not_found", "Item lookup found nothing", "", map[string]interface{}{
			"code": code.String(),
		})
		return "", false, nil
	}

	item := resp.Items.Item
	if item.DoNotShow != tagCore && !includePromotions {
		return "", false, nil
	}
	if err := c.items.Put(code, item.Name); err != nil {
		return "", false, err
	}
	return item.Name, true, nil
}

// ItemName resolves a code through the known items table, falling back to a lookup
// when lookup is set.
func (c *Client) ItemName(ctx context.Context, code models.ProductCode, lookup, includePromotions bool) (string, bool, error) {
	name, ok, err := c.items.Get(code)
	if err != nil || ok || !lookup {
		return name, ok, err
	}
	return c.LookupItem(ctx, code, includePromotions)
}

func hasError(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
