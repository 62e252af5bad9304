// Package journal records completed pickups in PostgreSQL.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mcorder/internal/database"
	"mcorder/internal/logger"
	"mcorder/internal/models"
)

var ErrNotPickedUp = errors.New("only picked up orders are recorded")

// Entry is one recorded pickup
type Entry struct {
	ID           int
	OrderNumber  string
	StoreID      string
	StoreAddress string
	CheckInCode  string
	Total        decimal.Decimal
	PickedUpAt   time.Time
	Lines        int
}

// itemRow is one pickup_order_items row. Promotion parts carry their offer id.
type itemRow struct {
	Code     models.ProductCode
	Quantity int
	OfferID  *int
	Alias    *string
}

type Service struct {
	db     *database.DB
	logger *logger.Logger
}

func NewService(db *database.DB, logger *logger.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// Record stores a picked up order and its lines in one transaction
func (s *Service) Record(ctx context.Context, session *models.OrderSession, username string) error {
	if session.State != models.StatePickedUp {
		return ErrNotPickedUp
	}
	requestID := logger.GenerateRequestID()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		id         int
		pickedUpAt time.Time
	)
	err = tx.QueryRow(ctx, database.InsertPickupOrderSQL,
		session.OrderNumber,
		username,
		session.Store.ID,
		session.Store.Address,
		session.CheckInCode,
		session.PaymentID,
		session.Total.String(),
	).Scan(&id, &pickedUpAt)
	if err != nil {
		s.logger.Error("db_insert_failed", "Failed to record pickup", requestID, err, map[string]interface{}{
			"order_number": session.OrderNumber,
		})
		return fmt.Errorf("failed to insert pickup order: %w", err)
	}

	for _, row := range itemRows(session.Food) {
		if _, err := tx.Exec(ctx, database.InsertPickupOrderItemSQL, id, row.Code.String(), row.Quantity, row.OfferID, row.Alias); err != nil {
			return fmt.Errorf("failed to insert pickup item %s: %w", row.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit pickup: %w", err)
	}

	s.logger.Info("pickup_recorded", "Recorded pickup in journal", requestID, map[string]interface{}{
		"order_number": session.OrderNumber,
		"journal_id":   id,
	})

	return nil
}

// History returns the most recent pickups of a customer, newest first
func (s *Service) History(ctx context.Context, username string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, database.GetPickupHistorySQL, username, limit)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry Entry
			total string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.OrderNumber,
			&entry.StoreID,
			&entry.StoreAddress,
			&entry.CheckInCode,
			&total,
			&entry.PickedUpAt,
			&entry.Lines,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pickup: %w", err)
		}
		if entry.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("invalid total %q: %w", total, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func itemRows(order models.Order) []itemRow {
	rows := make([]itemRow, 0, len(order.Normal))
	for _, item := range order.Normal {
		rows = append(rows, itemRow{Code: item.Code, Quantity: item.Quantity})
	}
	for _, deal := range order.Deals {
		offerID := deal.OfferID
		for _, part := range deal.Parts {
			alias := part.Alias
			rows = append(rows, itemRow{Code: part.Code, Quantity: 1, OfferID: &offerID, Alias: &alias})
		}
	}
	return rows
}
