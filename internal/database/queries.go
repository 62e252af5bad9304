package database

// Migration bookkeeping
const (
	CreateMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	SelectAppliedMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	InsertMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Journal queries
const (
	InsertPickupOrderSQL = `
		INSERT INTO pickup_orders (order_number, username, store_id, store_address, check_in_code, payment_id, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
		RETURNING id, picked_up_at`

	InsertPickupOrderItemSQL = `
		INSERT INTO pickup_order_items (order_id, product_code, quantity, offer_id, alias)
		VALUES ($1, $2, $3, $4, $5)`

	GetPickupHistorySQL = `
		SELECT o.id, o.order_number, o.store_id, o.store_address, o.check_in_code, o.total::text, o.picked_up_at,
			   (SELECT COUNT(*) FROM pickup_order_items i WHERE i.order_id = o.id)
		FROM pickup_orders o
		WHERE o.username = $1
		ORDER BY o.picked_up_at DESC
		LIMIT $2`
)
