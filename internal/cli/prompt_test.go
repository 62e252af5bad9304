package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"mcorder/internal/models"
	"mcorder/internal/services/picker"
	"mcorder/internal/services/promotion"
)

var (
	_ picker.Chooser    = (*Prompter)(nil)
	_ promotion.Chooser = (*Prompter)(nil)
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewPrompter(strings.NewReader(input), &out), &out
}

func TestPrompter_CategoryRetriesInvalidInput(t *testing.T) {
	p, out := newTestPrompter("abc\n7\n2\n")

	index, err := p.Category(context.Background(), []string{"Burgers", "Promotions"})
	if err != nil {
		t.Fatalf("Category() error = %v", err)
	}
	if index != 1 {
		t.Errorf("Category() = %d, want 1", index)
	}
	if strings.Count(out.String(), "Invalid choice") != 2 {
		t.Errorf("expected two retries, output:\n%s", out.String())
	}
}

func TestPrompter_ItemCancel(t *testing.T) {
	p, _ := newTestPrompter("0\n")
	category := models.Category{Name: "Burgers", Items: []models.MenuItem{{Name: "Big Mac", Code: "1001"}}}

	_, ok, err := p.Item(context.Background(), category)
	if err != nil || ok {
		t.Errorf("Item() = %v, %v; want cancel", ok, err)
	}
}

func TestPrompter_QuantityDefault(t *testing.T) {
	p, _ := newTestPrompter("\n4\n")
	ctx := context.Background()

	if n, err := p.Quantity(ctx, models.MenuItem{}); err != nil || n != 1 {
		t.Errorf("Quantity() = %d, %v; want default 1", n, err)
	}
	if n, err := p.Quantity(ctx, models.MenuItem{}); err != nil || n != 4 {
		t.Errorf("Quantity() = %d, %v; want 4", n, err)
	}
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"y", true},
	}

	for _, tt := range tests {
		p, _ := newTestPrompter(tt.input)
		got, err := p.Confirm(context.Background(), "Done")
		if err != nil || got != tt.want {
			t.Errorf("Confirm(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
}

func TestPrompter_EOF(t *testing.T) {
	p, _ := newTestPrompter("")
	_, err := p.Category(context.Background(), []string{"Burgers"})
	if !errors.Is(err, ErrInputClosed) || !errors.Is(err, context.Canceled) {
		t.Errorf("Category() error = %v, want ErrInputClosed", err)
	}
}

func TestPrompter_LastLineWithoutNewline(t *testing.T) {
	p, _ := newTestPrompter("yes")
	done, err := p.Done(context.Background())
	if err != nil || !done {
		t.Fatalf("Done() = %v, %v; want true, nil", done, err)
	}
	if _, err := p.Line(context.Background(), "Again"); !errors.Is(err, ErrInputClosed) {
		t.Errorf("Line() after EOF error = %v, want ErrInputClosed", err)
	}
}

func TestPrompter_LineCancelledWhileWaiting(t *testing.T) {
	in, w := io.Pipe()
	defer w.Close()
	p := NewPrompter(in, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := p.Line(ctx, "Category #")
		errc <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Line() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Line() still waiting after the context was cancelled")
	}

	// the pending read is handed to the next prompt
	go w.Write([]byte("3\n"))
	line, err := p.Line(context.Background(), "Category #")
	if err != nil || line != "3" {
		t.Errorf("Line() = %q, %v; want 3, nil", line, err)
	}
}

func TestPrompter_Candidate(t *testing.T) {
	p, out := newTestPrompter("2\n")
	candidates := []promotion.Candidate{{Code: "1001", Name: "Big Mac"}, {Code: "3001"}}

	index, err := p.Candidate(context.Background(), models.Offer{}, models.ProductSet{Alias: "Buy"}, candidates)
	if err != nil || index != 1 {
		t.Fatalf("Candidate() = %d, %v", index, err)
	}
	if !strings.Contains(out.String(), "[2] unknown item (3001)") || !strings.Contains(out.String(), "Buy") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestPrompter_AnyProductRequiresNumber(t *testing.T) {
	p, _ := newTestPrompter("fries\n2001\n")

	code, err := p.AnyProduct(context.Background(), models.Offer{}, models.ProductSet{AnyProduct: true})
	if err != nil || code != "2001" {
		t.Errorf("AnyProduct() = %q, %v", code, err)
	}
}

func TestPrompter_Card(t *testing.T) {
	cards := []models.PaymentCard{{CustomerPaymentMethodID: 1, NickName: "Visa"}, {CustomerPaymentMethodID: 2}}

	p, _ := newTestPrompter("\n")
	card, err := p.Card(context.Background(), cards)
	if err != nil || card.CustomerPaymentMethodID != 1 {
		t.Errorf("Card() default = %+v, %v", card, err)
	}

	p, _ = newTestPrompter("")
	if _, err := p.Card(context.Background(), nil); err == nil {
		t.Errorf("Card() without cards must fail")
	}
}

func TestPrompter_StoreDefaultsToFirst(t *testing.T) {
	stores := []models.Store{{ID: "1234", Address: "100 Market St"}, {ID: "5678", Address: "9 Chestnut St"}}

	p, out := newTestPrompter("\n")
	store, err := p.Store(context.Background(), stores)
	if err != nil || store.ID != "1234" {
		t.Errorf("Store() = %+v, %v", store, err)
	}
	if !strings.Contains(out.String(), "[2] 9 Chestnut St") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
