// Package cli implements the terminal prompts of the ordering program.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"mcorder/internal/models"
	"mcorder/internal/services/promotion"
)

// ErrInputClosed is returned once the input reaches EOF. It counts as a cancellation.
var ErrInputClosed = fmt.Errorf("input closed: %w", context.Canceled)

type readResult struct {
	line string
	err  error
}

// Prompter asks questions on a line-based terminal. Invalid answers are asked again.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer

	start sync.Once
	lines chan readResult
	err   error
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(in),
		out:    out,
		lines:  make(chan readResult, 1),
	}
}

// readLines feeds input lines to Line until the reader fails
func (p *Prompter) readLines() {
	for {
		line, err := p.reader.ReadString('\n')
		p.lines <- readResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}

// Line prints a prompt and returns the trimmed answer. A cancelled context
// interrupts the wait.
func (p *Prompter) Line(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.err != nil {
		return "", p.err
	}
	p.start.Do(func() { go p.readLines() })
	fmt.Fprintf(p.out, "%s > ", prompt)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.lines:
		if r.err == nil {
			return strings.TrimSpace(r.line), nil
		}
		p.err = r.err
		if errors.Is(r.err, io.EOF) {
			p.err = ErrInputClosed
			if r.line != "" {
				return strings.TrimSpace(r.line), nil
			}
		}
		return "", p.err
	}
}

// number asks until the answer is an integer in [lo, hi]. An empty answer returns def
// when def is in range.
func (p *Prompter) number(ctx context.Context, prompt string, lo, hi, def int) (int, error) {
	for {
		input, err := p.Line(ctx, prompt)
		if err != nil {
			return 0, err
		}
		if input == "" && def >= lo && def <= hi {
			return def, nil
		}
		n, err := strconv.Atoi(input)
		if err == nil && n >= lo && n <= hi {
			return n, nil
		}
		fmt.Fprintln(p.out, "Invalid choice. Please try again.")
	}
}

// Confirm asks a y/n question, only "y" or "yes" count as yes
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	input, err := p.Line(ctx, prompt+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *Prompter) Category(ctx context.Context, names []string) (int, error) {
	for i, name := range names {
		fmt.Fprintf(p.out, "[%d] %s\n", i+1, name)
	}
	n, err := p.number(ctx, "Category number", 1, len(names), -1)
	return n - 1, err
}

func (p *Prompter) Item(ctx context.Context, category models.Category) (int, bool, error) {
	for i, item := range category.Items {
		fmt.Fprintf(p.out, "[%d] %s (%s)\n", i+1, item.Name, item.Code)
	}
	n, err := p.number(ctx, "Item number (0 to cancel)", 0, len(category.Items), -1)
	if err != nil || n == 0 {
		return 0, false, err
	}
	return n - 1, true, nil
}

func (p *Prompter) Quantity(ctx context.Context, item models.MenuItem) (int, error) {
	return p.number(ctx, "Amount (default:1)", 1, 99, 1)
}

func (p *Prompter) Done(ctx context.Context) (bool, error) {
	return p.Confirm(ctx, "Done")
}

// Offer lets the customer pick one offer
func (p *Prompter) Offer(ctx context.Context, offers []models.Offer) (models.Offer, error) {
	if len(offers) == 0 {
		return models.Offer{}, errors.New("no offers available")
	}
	for i, offer := range offers {
		fmt.Fprintf(p.out, "[%d] %s (%d)\n", i+1, offer.Name, offer.ID)
	}
	n, err := p.number(ctx, "Offer #", 1, len(offers), -1)
	if err != nil {
		return models.Offer{}, err
	}
	return offers[n-1], nil
}

func (p *Prompter) AnyProduct(ctx context.Context, offer models.Offer, set models.ProductSet) (models.ProductCode, error) {
	for {
		input, err := p.Line(ctx, "Pick any product id")
		if err != nil {
			return "", err
		}
		if code := models.ProductCode(input); code.IsNumeric() {
			return code, nil
		}
		fmt.Fprintln(p.out, "Product ids are numbers. Please try again.")
	}
}

func (p *Prompter) Candidate(ctx context.Context, offer models.Offer, set models.ProductSet, candidates []promotion.Candidate) (int, error) {
	for i, candidate := range candidates {
		name := candidate.Name
		if name == "" {
			name = "unknown item"
		}
		fmt.Fprintf(p.out, "[%d] %s (%s)\n", i+1, name, candidate.Code)
	}
	if set.Alias == "" {
		fmt.Fprintln(p.out, "Item to buy for promotion")
	} else {
		fmt.Fprintln(p.out, set.Alias)
	}
	n, err := p.number(ctx, "Pick item for this category", 1, len(candidates), -1)
	return n - 1, err
}

// Card lets the customer pick a stored payment card
func (p *Prompter) Card(ctx context.Context, cards []models.PaymentCard) (models.PaymentCard, error) {
	if len(cards) == 0 {
		return models.PaymentCard{}, errors.New("no payment cards on file")
	}
	if len(cards) == 1 {
		return cards[0], nil
	}
	for i, card := range cards {
		name := card.NickName
		if name == "" {
			name = fmt.Sprintf("card %d", card.CustomerPaymentMethodID)
		}
		fmt.Fprintf(p.out, "[%d] %s\n", i+1, name)
	}
	n, err := p.number(ctx, "Card #", 1, len(cards), 1)
	if err != nil {
		return models.PaymentCard{}, err
	}
	return cards[n-1], nil
}

// Store lets the customer pick a store, the first one is the default
func (p *Prompter) Store(ctx context.Context, stores []models.Store) (models.Store, error) {
	if len(stores) == 0 {
		return models.Store{}, errors.New("no open stores nearby")
	}
	for i, store := range stores {
		fmt.Fprintf(p.out, "[%d] %s (%.1f mi, %s)\n", i+1, store.Address, store.Distance, store.Phone)
	}
	n, err := p.number(ctx, "Store # (default:1)", 1, len(stores), 1)
	if err != nil {
		return models.Store{}, err
	}
	return stores[n-1], nil
}
