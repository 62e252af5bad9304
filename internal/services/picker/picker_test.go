package picker

import (
	"context"
	"errors"
	"testing"

	"mcorder/internal/models"
)

type step struct {
	category int
	item     int
	cancel   bool
	quantity int
	done     bool
}

type scriptedChooser struct {
	steps     []step
	current   step
	seenNames [][]string
}

func (c *scriptedChooser) Category(ctx context.Context, names []string) (int, error) {
	c.seenNames = append(c.seenNames, names)
	c.current, c.steps = c.steps[0], c.steps[1:]
	return c.current.category, nil
}

func (c *scriptedChooser) Item(ctx context.Context, category models.Category) (int, bool, error) {
	return c.current.item, !c.current.cancel, nil
}

func (c *scriptedChooser) Quantity(ctx context.Context, item models.MenuItem) (int, error) {
	return c.current.quantity, nil
}

func (c *scriptedChooser) Done(ctx context.Context) (bool, error) {
	return c.current.done, nil
}

func testMenu() *models.Menu {
	menu := &models.Menu{}
	menu.Category("Burgers").Put("Big Mac", "1001")
	menu.Category("Burgers").Put("McDouble", "1003")
	menu.Category("Empty")
	menu.Category("Fries & Sides").Put("Medium Fries", "2001")
	return menu
}

func TestBuild(t *testing.T) {
	chooser := &scriptedChooser{steps: []step{
		{category: 0, item: 1, quantity: 3},
		{category: 0, cancel: true},
		{category: 2},
		{category: 1, item: 0, done: true},
	}}
	promotions := 0
	promoFn := func(ctx context.Context) (models.Promotion, error) {
		promotions++
		return models.Promotion{OfferID: -7, Parts: []models.PromotionPart{{Code: "1001"}}}, nil
	}

	order, err := Build(context.Background(), testMenu(), chooser, promoFn)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []models.NormalItem{{Code: "1003", Quantity: 3}, {Code: "2001", Quantity: 1}}
	if len(order.Normal) != len(want) {
		t.Fatalf("normal items = %+v, want %+v", order.Normal, want)
	}
	for i := range want {
		if order.Normal[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, order.Normal[i], want[i])
		}
	}
	if promotions != 1 || len(order.Deals) != 1 || order.Deals[0].OfferID != -7 {
		t.Errorf("deals = %+v after %d promotion calls", order.Deals, promotions)
	}

	first := chooser.seenNames[0]
	if len(first) != 3 || first[2] != PromotionsCategory {
		t.Errorf("first categories = %v, want empty categories skipped and promotions last", first)
	}
	last := chooser.seenNames[len(chooser.seenNames)-1]
	if len(last) != 2 {
		t.Errorf("promotions must disappear after use, got %v", last)
	}
}

func TestBuild_WithoutPromotions(t *testing.T) {
	chooser := &scriptedChooser{steps: []step{{category: 0, item: 0, done: true}}}

	order, err := Build(context.Background(), testMenu(), chooser, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(order.Normal) != 1 || len(chooser.seenNames[0]) != 2 {
		t.Errorf("order = %+v, categories = %v", order, chooser.seenNames[0])
	}
}

func TestBuild_InvalidChoices(t *testing.T) {
	tests := []struct {
		name string
		step step
	}{
		{name: "category out of range", step: step{category: 5}},
		{name: "item out of range", step: step{category: 0, item: 9}},
		{name: "negative quantity", step: step{category: 0, item: 0, quantity: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chooser := &scriptedChooser{steps: []step{tt.step}}
			_, err := Build(context.Background(), testMenu(), chooser, nil)
			if !errors.Is(err, ErrInvalidChoice) {
				t.Errorf("Build() error = %v, want ErrInvalidChoice", err)
			}
		})
	}
}

func TestBuild_PromotionError(t *testing.T) {
	boom := errors.New("offers unavailable")
	chooser := &scriptedChooser{steps: []step{{category: 2}}}

	_, err := Build(context.Background(), testMenu(), chooser, func(ctx context.Context) (models.Promotion, error) {
		return models.Promotion{}, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Build() error = %v, want %v", err, boom)
	}
}

func TestBuild_NoPromotionReturnsToCategories(t *testing.T) {
	chooser := &scriptedChooser{steps: []step{
		{category: 2},
		{category: 0, item: 1, done: true},
	}}

	order, err := Build(context.Background(), testMenu(), chooser, func(ctx context.Context) (models.Promotion, error) {
		return models.Promotion{}, ErrNoPromotion
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(order.Deals) != 0 || len(order.Normal) != 1 || order.Normal[0].Code != "1003" {
		t.Errorf("unexpected order: %+v", order)
	}
	if len(chooser.seenNames) != 2 || len(chooser.seenNames[1]) != 2 {
		t.Errorf("promotions must be hidden after an empty offer list, saw %v", chooser.seenNames)
	}
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, testMenu(), &scriptedChooser{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}
