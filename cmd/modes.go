package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"mcorder/internal/cli"
	"mcorder/internal/config"
	"mcorder/internal/database"
	"mcorder/internal/knownitems"
	"mcorder/internal/logger"
	"mcorder/internal/mcd"
	"mcorder/internal/messaging"
	"mcorder/internal/models"
	"mcorder/internal/services/journal"
	"mcorder/internal/services/notification"
	"mcorder/internal/services/picker"
	"mcorder/internal/services/promotion"
)

// abortDelay is how long the customer can still cancel after seeing the price
const abortDelay = 5 * time.Second

var errAborted = errors.New("transaction cancelled")

// runOrder walks through the whole ordering flow, from sign in to pickup
func runOrder(ctx context.Context, cfg *config.Config, log *logger.Logger, opts options) error {
	prompter := cli.NewPrompter(os.Stdin, os.Stdout)

	client, closeClient, err := newClient(cfg, log, opts)
	if err != nil {
		return err
	}
	defer closeClient()

	if err := signIn(ctx, client, prompter, opts); err != nil {
		return err
	}
	coords, err := client.LookupZip(ctx, opts.zip)
	if err != nil {
		return err
	}
	stores, err := client.FindStores(ctx, coords, opts.radius)
	if err != nil {
		return err
	}
	store, err := prompter.Store(ctx, stores)
	if err != nil {
		return err
	}

	menu, err := client.Menu(ctx, store, mcd.MenuOptions{
		ShowPromotions:   opts.showPromotions,
		LookupPromoBases: true,
	})
	if err != nil {
		return err
	}

	promoFn := func(ctx context.Context) (models.Promotion, error) {
		offers, err := client.Offers(ctx, mcd.OfferScope{Store: &store})
		if err != nil {
			return models.Promotion{}, err
		}
		visible := promotion.Visible(offers, opts.allDeals)
		if len(visible) == 0 {
			fmt.Println("No deals available at this store.")
			return models.Promotion{}, picker.ErrNoPromotion
		}
		offer, err := prompter.Offer(ctx, visible)
		if err != nil {
			return models.Promotion{}, err
		}
		return promotion.Resolve(ctx, offer, client, prompter, promotion.Options{
			LookupItems:      opts.lookupItems,
			LookupPromotions: opts.lookupPromo,
			MinProducts:      opts.minProducts,
		})
	}

	order, err := picker.Build(ctx, menu, prompter, promoFn)
	if err != nil {
		return err
	}

	cards, err := client.Cards(ctx)
	if err != nil {
		return err
	}
	card, err := prompter.Card(ctx, cards)
	if err != nil {
		return err
	}

	session, err := client.Price(ctx, store, order)
	if err != nil {
		return err
	}

	fmt.Printf("Paying $%s at %s. Press Ctrl+C within %d seconds to cancel.\n",
		session.Total.StringFixed(2), store.Address, int(abortDelay.Seconds()))
	if err := abortWindow(ctx, abortDelay); err != nil {
		fmt.Println("Transaction canceled.")
		return nil
	}

	fmt.Println("Ordering food ...")
	if err := client.Submit(ctx, session, card); err != nil {
		return err
	}
	number, err := client.ConfirmPickup(ctx, session)
	if err != nil {
		return fmt.Errorf("order %s stopped in state %s: %w", session.CheckInCode, session.State, err)
	}
	fmt.Printf("Your order number is %s.\n", number)

	recordPickup(ctx, cfg, log, session, client.Username())
	return nil
}

// abortWindow waits for the delay unless the context is cancelled first
func abortWindow(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errAborted
	}
}

func runRegister(ctx context.Context, cfg *config.Config, log *logger.Logger, opts options) error {
	prompter := cli.NewPrompter(os.Stdin, os.Stdout)

	client, closeClient, err := newClient(cfg, log, opts)
	if err != nil {
		return err
	}
	defer closeClient()

	email, err := valueOrPrompt(ctx, prompter, opts.email, "Email")
	if err != nil {
		return err
	}
	password, err := valueOrPrompt(ctx, prompter, opts.password, "Password")
	if err != nil {
		return err
	}
	zip, err := valueOrPrompt(ctx, prompter, opts.zip, "Zip code")
	if err != nil {
		return err
	}

	err = client.Register(ctx, mcd.RegisterRequest{
		Email:     email,
		Password:  password,
		ZipCode:   zip,
		FirstName: opts.firstName,
		LastName:  opts.lastName,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s.\n", email)
	return nil
}

func runStores(ctx context.Context, cfg *config.Config, log *logger.Logger, opts options) error {
	client, closeClient, err := newClient(cfg, log, opts)
	if err != nil {
		return err
	}
	defer closeClient()

	if err := signIn(ctx, client, cli.NewPrompter(os.Stdin, os.Stdout), opts); err != nil {
		return err
	}
	coords, err := client.LookupZip(ctx, opts.zip)
	if err != nil {
		return err
	}
	stores, err := client.FindStores(ctx, coords, opts.radius)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STORE\tMILES\tSTATUS\tADDRESS\tPHONE")
	for _, store := range stores {
		fmt.Fprintf(w, "%s\t%.1f\t%s\t%s\t%s\n", store.ID, store.Distance, store.Status, store.Address, store.Phone)
	}
	return w.Flush()
}

func runOffers(ctx context.Context, cfg *config.Config, log *logger.Logger, opts options) error {
	client, closeClient, err := newClient(cfg, log, opts)
	if err != nil {
		return err
	}
	defer closeClient()

	if err := signIn(ctx, client, cli.NewPrompter(os.Stdin, os.Stdout), opts); err != nil {
		return err
	}
	coords, err := client.LookupZip(ctx, opts.zip)
	if err != nil {
		return err
	}
	offers, err := client.Offers(ctx, mcd.OfferScope{Coords: &coords})
	if err != nil {
		return err
	}

	for _, offer := range promotion.Visible(offers, opts.allDeals) {
		fmt.Printf("%6d  %s (%d product sets)\n", offer.ID, offer.Name, len(offer.ProductSets))
	}
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, log *logger.Logger, opts options) error {
	if !cfg.JournalEnabled() {
		return errors.New("history needs a database section in the configuration")
	}
	email, err := valueOrPrompt(ctx, cli.NewPrompter(os.Stdin, os.Stdout), opts.email, "Email")
	if err != nil {
		return err
	}

	service, closeJournal, err := openJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeJournal()

	entries, err := service.History(ctx, email, opts.limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PICKED UP\tORDER\tSTORE\tLINES\tTOTAL\tADDRESS")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t$%s\t%s\n",
			entry.PickedUpAt.Local().Format("2006-01-02 15:04"),
			entry.OrderNumber,
			entry.StoreID,
			entry.Lines,
			entry.Total.StringFixed(2),
			entry.StoreAddress,
		)
	}
	return w.Flush()
}

func runNotify(ctx context.Context, cfg *config.Config, log *logger.Logger, opts options) error {
	if !cfg.EventsEnabled() {
		return errors.New("notify needs a rabbitmq section in the configuration")
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, messaging.PickupQueue, "mcorder-notify", 1)
	subscriber := notification.NewSubscriber(consumer, log, os.Stdout)

	fmt.Println("Waiting for pickups. Press Ctrl+C to stop.")
	return subscriber.Start(ctx)
}

func newClient(cfg *config.Config, log *logger.Logger, opts options) (*mcd.Client, func(), error) {
	var clientOpts []mcd.Option
	var items *knownitems.Table
	if opts.itemsCache != "" {
		table, err := knownitems.NewFile(opts.itemsCache)
		if err != nil {
			return nil, nil, err
		}
		items = table
		clientOpts = append(clientOpts, mcd.WithKnownItems(table))
	}

	client := mcd.New(cfg.API, log, clientOpts...)
	return client, func() {
		if items != nil {
			items.Close()
		}
	}, nil
}

func signIn(ctx context.Context, client *mcd.Client, prompter *cli.Prompter, opts options) error {
	email, err := valueOrPrompt(ctx, prompter, opts.email, "Email")
	if err != nil {
		return err
	}
	password, err := valueOrPrompt(ctx, prompter, opts.password, "Password")
	if err != nil {
		return err
	}
	return client.SignIn(ctx, email, password)
}

func valueOrPrompt(ctx context.Context, prompter *cli.Prompter, value, prompt string) (string, error) {
	for value == "" {
		answer, err := prompter.Line(ctx, prompt)
		if err != nil {
			return "", err
		}
		value = answer
	}
	return value, nil
}

func openJournal(ctx context.Context, cfg *config.Config, log *logger.Logger) (*journal.Service, func(), error) {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return journal.NewService(db, log), db.Close, nil
}

// recordPickup feeds the optional journal and event bus. The order already went
// through, so failures here are only logged.
func recordPickup(ctx context.Context, cfg *config.Config, log *logger.Logger, session *models.OrderSession, username string) {
	requestID := logger.GenerateRequestID()

	if cfg.JournalEnabled() {
		service, closeJournal, err := openJournal(ctx, cfg, log)
		if err == nil {
			err = service.Record(ctx, session, username)
			closeJournal()
		}
		if err != nil {
			log.Warn("journal_skipped", "Pickup was not recorded in the journal", requestID, map[string]interface{}{
				"order_number": session.OrderNumber,
				"error":        err.Error(),
			})
		}
	}

	if cfg.EventsEnabled() {
		conn, err := messaging.New(cfg, log)
		if err == nil {
			publisher := messaging.NewPublisher(conn, log)
			err = publisher.PublishPickup(ctx, models.NewPickupMessage(session, username))
			publisher.Close()
		}
		if err != nil {
			log.Warn("event_skipped", "Pickup event was not published", requestID, map[string]interface{}{
				"order_number": session.OrderNumber,
				"error":        err.Error(),
			})
		}
	}
}
