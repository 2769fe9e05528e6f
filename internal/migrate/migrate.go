package migrate

import (
	"context"

	"aleenascuisine/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, uuid-ossp, pg_trgm
	CreateChecks           bool // CHECK constraints for data integrity
	CreateIndexes          bool // indexes beyond GORM tags
	CreateFKsViaSQL        bool // FKs via SQL on top of GORM constraints
	CreateUpdatedAtTrigger bool // updated_at trigger
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateStoreDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("starting store database migration")

	// Extensions
	if opt.CreateExtensions {
		log.Info("creating postgres extensions")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("failed to enable pgcrypto extension", zap.Error(err))
			return err
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
			log.Error("failed to enable uuid-ossp extension", zap.Error(err))
			return err
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error; err != nil {
			log.Error("failed to enable pg_trgm extension", zap.Error(err))
			return err
		}
		log.Info("postgres extensions ready")
	}

	// Tables
	log.Info("creating tables")
	if err := db.AutoMigrate(
		&models.Cake{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Refund{},
		&models.ProviderEvent{},
		&models.Invoice{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}
	log.Info("tables ready")

	// updated_at trigger for the mutable tables
	if opt.CreateUpdatedAtTrigger {
		log.Info("creating updated_at triggers")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_cakes_updated ON cakes;
CREATE TRIGGER trg_cakes_updated
BEFORE UPDATE ON cakes
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_carts_updated ON carts;
CREATE TRIGGER trg_carts_updated
BEFORE UPDATE ON carts
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_payments_updated ON payments;
CREATE TRIGGER trg_payments_updated
BEFORE UPDATE ON payments
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_refunds_updated ON refunds;
CREATE TRIGGER trg_refunds_updated
BEFORE UPDATE ON refunds
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("failed to create updated_at triggers", zap.Error(err))
			return err
		}
		log.Info("updated_at triggers ready")
	}

	// CHECK constraints
	if opt.CreateChecks {
		log.Info("creating CHECK constraints")

		// Stock can never go negative, even under concurrent releases.
		if err := db.Exec(`
ALTER TABLE cakes
  DROP CONSTRAINT IF EXISTS chk_cakes_stock_non_negative;
ALTER TABLE cakes
  ADD CONSTRAINT chk_cakes_stock_non_negative
  CHECK (stock_quantity >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for cakes.stock_quantity", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE cakes
  DROP CONSTRAINT IF EXISTS chk_cakes_price_non_negative;
ALTER TABLE cakes
  ADD CONSTRAINT chk_cakes_price_non_negative
  CHECK (price >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for cakes.price", zap.Error(err))
			return err
		}

		// Line quantities strictly positive on both cart and order sides.
		if err := db.Exec(`
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS chk_cart_items_quantity_gt_zero;
ALTER TABLE cart_items
  ADD CONSTRAINT chk_cart_items_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for cart_items.quantity", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for order_items.quantity", zap.Error(err))
			return err
		}

		// Money amounts non-negative
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_prices_non_negative;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_prices_non_negative
  CHECK (price_each >= 0 AND line_total >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for order_items prices", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_amounts_non_negative;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_amounts_non_negative
  CHECK (subtotal >= 0 AND taxes >= 0 AND shipping >= 0 AND total >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for orders amounts", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE payments
  DROP CONSTRAINT IF EXISTS chk_payments_amount_non_negative;
ALTER TABLE payments
  ADD CONSTRAINT chk_payments_amount_non_negative
  CHECK (amount >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for payments.amount", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE refunds
  DROP CONSTRAINT IF EXISTS chk_refunds_amount_non_negative;
ALTER TABLE refunds
  ADD CONSTRAINT chk_refunds_amount_non_negative
  CHECK (amount >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for refunds.amount", zap.Error(err))
			return err
		}

		// Status allow-lists (stored as TEXT)
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('created','pending','confirmed','processing','shipped','delivered','cancelled','refunded','payment_failed','expired','refund_initiated'));
`).Error; err != nil {
			log.Error("failed to create CHECK for orders.status", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE refunds
  DROP CONSTRAINT IF EXISTS chk_refunds_status_allowed;
ALTER TABLE refunds
  ADD CONSTRAINT chk_refunds_status_allowed
  CHECK (status IN ('requested','processed','failed'));
`).Error; err != nil {
			log.Error("failed to create CHECK for refunds.status", zap.Error(err))
			return err
		}

		// Currency codes exactly 3 characters
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_currency_len;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_currency_len
  CHECK (char_length(currency) = 3);
`).Error; err != nil {
			log.Error("failed to create CHECK for orders.currency", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE payments
  DROP CONSTRAINT IF EXISTS chk_payments_currency_len;
ALTER TABLE payments
  ADD CONSTRAINT chk_payments_currency_len
  CHECK (char_length(currency) = 3);
`).Error; err != nil {
			log.Error("failed to create CHECK for payments.currency", zap.Error(err))
			return err
		}

		log.Info("CHECK constraints ready")
	}

	// Indexes
	if opt.CreateIndexes {
		log.Info("creating indexes")

		// Trigram index backing catalog search
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_cakes_name_trgm
ON cakes USING gin (lower(name) gin_trgm_ops);
`).Error; err != nil {
			log.Error("failed to create index ix_cakes_name_trgm", zap.Error(err))
			return err
		}

		// Catalog browse: category + availability
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_cakes_category_available
ON cakes (category, is_available);
`).Error; err != nil {
			log.Error("failed to create index ix_cakes_category_available", zap.Error(err))
			return err
		}

		// Customer order history, newest first
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_customer_created
ON orders (customer_id, created_at DESC);
`).Error; err != nil {
			log.Error("failed to create index ix_orders_customer_created", zap.Error(err))
			return err
		}

		// Exactly the sweeper predicate, partial to stay tiny.
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_reservation_sweep
ON orders (reservation_expires_at)
WHERE status IN ('created','pending')
  AND payment_status = 'pending'
  AND inventory_released = false
  AND reservation_expires_at IS NOT NULL;
`).Error; err != nil {
			log.Error("failed to create index ix_orders_reservation_sweep", zap.Error(err))
			return err
		}

		log.Info("indexes ready")
	}

	// Foreign keys
	if opt.CreateFKsViaSQL {
		log.Info("creating foreign keys")

		if err := db.Exec(`
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS fk_cart_items_cart,
  ADD CONSTRAINT fk_cart_items_cart
    FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("failed to create FK cart_items.cart_id -> carts.id", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS fk_cart_items_cake,
  ADD CONSTRAINT fk_cart_items_cake
    FOREIGN KEY (cake_id) REFERENCES cakes(id) ON DELETE RESTRICT;
`).Error; err != nil {
			log.Error("failed to create FK cart_items.cake_id -> cakes.id", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  ADD CONSTRAINT fk_order_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("failed to create FK order_items.order_id -> orders.id", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_cake,
  ADD CONSTRAINT fk_order_items_cake
    FOREIGN KEY (cake_id) REFERENCES cakes(id) ON DELETE RESTRICT;
`).Error; err != nil {
			log.Error("failed to create FK order_items.cake_id -> cakes.id", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE payments
  DROP CONSTRAINT IF EXISTS fk_payments_order,
  ADD CONSTRAINT fk_payments_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("failed to create FK payments.order_id -> orders.id", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE refunds
  DROP CONSTRAINT IF EXISTS fk_refunds_payment,
  ADD CONSTRAINT fk_refunds_payment
    FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("failed to create FK refunds.payment_id -> payments.id", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE invoices
  DROP CONSTRAINT IF EXISTS fk_invoices_order,
  ADD CONSTRAINT fk_invoices_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("failed to create FK invoices.order_id -> orders.id", zap.Error(err))
			return err
		}

		log.Info("foreign keys ready")
	}

	log.Info("store database migration complete")
	return nil
}
