package persistence

import (
	"context"
	"errors"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/infrastructure/persistence/models"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/repo"
)

var ErrOrderNotFound = gerrors.New("purchase order not found")

const poColumns = `
	id, po_number, vendor_code, client, collection, program_description,
	merchandiser, merchandising_manager, po_date, original_ship_date,
	revised_ship_date, original_cancel_date, revised_cancel_date, revised_by,
	quantity, total_value_cents, shipped_value_cents, status, shipment_status,
	is_sample`

type PgOrderRepository struct{}

func NewOrderRepository() order.Repository {
	return &PgOrderRepository{}
}

func (r *PgOrderRepository) GetByNumber(ctx context.Context, poNumber string) (order.PurchaseOrder, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return order.PurchaseOrder{}, err
	}

	row := models.PurchaseOrder{}
	err = tx.QueryRow(ctx, `
		SELECT `+poColumns+`
		FROM merch_purchase_orders
		WHERE po_number = $1`, poNumber,
	).Scan(scanPODest(&row)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.PurchaseOrder{}, ErrOrderNotFound
		}
		return order.PurchaseOrder{}, err
	}

	children, err := r.loadChildren(ctx, []string{poNumber})
	if err != nil {
		return order.PurchaseOrder{}, err
	}
	c := children[poNumber]
	return toDomainPurchaseOrder(&row, c.lineItems, c.shipments, c.milestones), nil
}

func (r *PgOrderRepository) Find(ctx context.Context, params *order.FindParams) ([]order.PurchaseOrder, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &order.FindParams{}
	}

	filters := repo.NewFilterSet().
		Add(repo.Eq("vendor_code", params.VendorCode)).
		Add(repo.Eq("client", params.Client)).
		Add(repo.Eq("merchandiser", params.Merchandiser)).
		Add(repo.Eq("merchandising_manager", params.MerchandisingManager))
	if params.From != nil {
		filters.Add(repo.Gte("po_date", *params.From))
	}
	if params.To != nil {
		filters.Add(repo.Lte("po_date", *params.To))
	}
	where, args := filters.Build(0)

	query := `
		SELECT ` + poColumns + `
		FROM merch_purchase_orders
		WHERE ` + where + `
		ORDER BY po_number`
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
	}
	if params.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var headers []models.PurchaseOrder
	var poNumbers []string
	for rows.Next() {
		var row models.PurchaseOrder
		if err := rows.Scan(scanPODest(&row)...); err != nil {
			return nil, err
		}
		headers = append(headers, row)
		poNumbers = append(poNumbers, row.PONumber)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	children, err := r.loadChildren(ctx, poNumbers)
	if err != nil {
		return nil, err
	}
	out := make([]order.PurchaseOrder, 0, len(headers))
	for i := range headers {
		c := children[headers[i].PONumber]
		out = append(out, toDomainPurchaseOrder(&headers[i], c.lineItems, c.shipments, c.milestones))
	}
	return out, nil
}

func (r *PgOrderRepository) ListNumbers(ctx context.Context) ([]string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT po_number FROM merch_purchase_orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *PgOrderRepository) CreateBatch(ctx context.Context, orders []order.PurchaseOrder) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, po := range orders {
		d := po.Details()
		if _, err := tx.Exec(ctx, `
			INSERT INTO merch_purchase_orders (
				po_number, vendor_code, client, collection, program_description,
				merchandiser, merchandising_manager, po_date, original_ship_date,
				revised_ship_date, original_cancel_date, revised_cancel_date,
				revised_by, quantity, total_value_cents, shipped_value_cents,
				status, shipment_status, is_sample
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
			d.PONumber, d.VendorCode, d.Client, d.Collection, d.ProgramDescription,
			d.Merchandiser, d.MerchandisingManager, d.PODate, d.OriginalShipDate,
			d.RevisedShipDate, d.OriginalCancelDate, d.RevisedCancelDate,
			d.RevisedBy, d.Quantity, d.TotalValueCents, d.ShippedValueCents,
			string(d.Status), string(d.ShipmentStatus), d.IsSample,
		); err != nil {
			return gerrors.Wrapf(err, "insert purchase order %s", d.PONumber)
		}
		if err := r.replaceLineItems(ctx, d.PONumber, d.LineItems); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgOrderRepository) UpdateBatch(ctx context.Context, orders []order.PurchaseOrder) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, po := range orders {
		d := po.Details()
		if _, err := tx.Exec(ctx, `
			UPDATE merch_purchase_orders SET
				vendor_code = $2, client = $3, collection = $4,
				program_description = $5, merchandiser = $6,
				merchandising_manager = $7, po_date = $8,
				original_ship_date = $9, revised_ship_date = $10,
				original_cancel_date = $11, revised_cancel_date = $12,
				revised_by = $13, quantity = $14, total_value_cents = $15,
				shipped_value_cents = $16, status = $17, shipment_status = $18,
				is_sample = $19, updated_at = now()
			WHERE po_number = $1`,
			d.PONumber, d.VendorCode, d.Client, d.Collection,
			d.ProgramDescription, d.Merchandiser,
			d.MerchandisingManager, d.PODate,
			d.OriginalShipDate, d.RevisedShipDate,
			d.OriginalCancelDate, d.RevisedCancelDate,
			d.RevisedBy, d.Quantity, d.TotalValueCents,
			d.ShippedValueCents, string(d.Status), string(d.ShipmentStatus),
			d.IsSample,
		); err != nil {
			return gerrors.Wrapf(err, "update purchase order %s", d.PONumber)
		}
		if err := r.replaceLineItems(ctx, d.PONumber, d.LineItems); err != nil {
			return err
		}
	}
	return nil
}

// replaceLineItems swaps the line set whole. Lines carry no user edits, so
// replace is simpler and equivalent to a keyed upsert.
func (r *PgOrderRepository) replaceLineItems(ctx context.Context, poNumber string, lines []order.LineItem) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM merch_po_line_items WHERE po_number = $1`, poNumber); err != nil {
		return err
	}
	for _, li := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO merch_po_line_items (po_number, sku, description, quantity, unit_price_cents, value_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			poNumber, li.SKU, li.Description, li.Quantity, li.UnitPriceCents, li.ValueCents,
		); err != nil {
			return gerrors.Wrapf(err, "insert line item %s/%s", poNumber, li.SKU)
		}
	}
	return nil
}

func (r *PgOrderRepository) UpsertShipments(ctx context.Context, poNumber string, shipments []order.Shipment) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, s := range shipments {
		if _, err := tx.Exec(ctx, `
			INSERT INTO merch_po_shipments (
				po_number, sequence, delivery_to_consolidator,
				actual_sailing_date, qty_shipped, shipped_value_cents
			) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (po_number, sequence) DO UPDATE SET
				delivery_to_consolidator = EXCLUDED.delivery_to_consolidator,
				actual_sailing_date = EXCLUDED.actual_sailing_date,
				qty_shipped = EXCLUDED.qty_shipped,
				shipped_value_cents = EXCLUDED.shipped_value_cents`,
			poNumber, s.Sequence, s.DeliveryToConsolidator,
			s.ActualSailingDate, s.QtyShipped, s.ShippedValueCents,
		); err != nil {
			return gerrors.Wrapf(err, "upsert shipment %s/%d", poNumber, s.Sequence)
		}
	}
	return nil
}

func (r *PgOrderRepository) SaveClassifications(ctx context.Context, rows []order.Classification) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, c := range rows {
		if _, err := tx.Exec(ctx, `
			UPDATE merch_purchase_orders SET is_at_risk = $2, updated_at = now()
			WHERE po_number = $1`,
			c.PONumber, c.AtRisk,
		); err != nil {
			return gerrors.Wrapf(err, "save classification %s", c.PONumber)
		}
		for _, s := range c.Shipments {
			if _, err := tx.Exec(ctx, `
				UPDATE merch_po_shipments SET
					otd_status = $3, original_otd_status = $4, days_late = $5
				WHERE po_number = $1 AND sequence = $2`,
				c.PONumber, s.Sequence, s.OTDStatus, s.OriginalOTDStatus, s.DaysLate,
			); err != nil {
				return gerrors.Wrapf(err, "save shipment classification %s/%d", c.PONumber, s.Sequence)
			}
		}
	}
	return nil
}

func (r *PgOrderRepository) ListLineItemCandidates(ctx context.Context, q order.LineItemQuery) ([]order.LineItemCandidate, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	match := "li.sku = $4"
	matchArg := q.SKU
	if q.SKU == "" {
		match = "o.collection = $4"
		matchArg = q.Collection
	}

	rows, err := tx.Query(ctx, `
		SELECT o.po_number, o.po_date, o.vendor_code, li.sku, o.collection, li.quantity, li.value_cents
		FROM merch_po_line_items li
		JOIN merch_purchase_orders o ON o.po_number = li.po_number
		WHERE o.vendor_code = $1
		  AND o.po_date IS NOT NULL
		  AND o.po_date BETWEEN $2 AND $3
		  AND `+match+`
		ORDER BY o.po_date, o.po_number`,
		q.VendorCode, q.From, q.To, matchArg,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.LineItemCandidate
	for rows.Next() {
		var c order.LineItemCandidate
		if err := rows.Scan(&c.PONumber, &c.PODate, &c.VendorCode, &c.SKU, &c.Collection, &c.Quantity, &c.ValueCents); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ShippedValueByVendor recognizes each shipped order's header value once,
// in the year of its earliest actual sailing date.
func (r *PgOrderRepository) ShippedValueByVendor(ctx context.Context, year int) (map[string]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		WITH sailed AS (
			SELECT po_number, MIN(actual_sailing_date) AS min_sailing
			FROM merch_po_shipments
			WHERE actual_sailing_date IS NOT NULL
			GROUP BY po_number
		)
		SELECT o.vendor_code, COALESCE(SUM(o.shipped_value_cents), 0)
		FROM merch_purchase_orders o
		JOIN sailed s ON s.po_number = o.po_number
		WHERE o.shipment_status = $1
		  AND EXTRACT(YEAR FROM s.min_sailing)::int = $2
		GROUP BY o.vendor_code`,
		string(order.ShipmentStatusShipped), year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var code string
		var cents int64
		if err := rows.Scan(&code, &cents); err != nil {
			return nil, err
		}
		out[code] = cents
	}
	return out, rows.Err()
}

func (r *PgOrderRepository) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	for _, child := range []string{"merch_po_milestones", "merch_po_shipments", "merch_po_line_items"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+child); err != nil {
			return 0, err
		}
	}
	tag, err := tx.Exec(ctx, `DELETE FROM merch_purchase_orders`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type poChildren struct {
	lineItems  []order.LineItem
	shipments  []order.Shipment
	milestones []order.Milestone
}

func (r *PgOrderRepository) loadChildren(ctx context.Context, poNumbers []string) (map[string]poChildren, error) {
	out := make(map[string]poChildren, len(poNumbers))
	if len(poNumbers) == 0 {
		return out, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT po_number, sku, description, quantity, unit_price_cents, value_cents
		FROM merch_po_line_items
		WHERE po_number = ANY($1)
		ORDER BY po_number, sku`, poNumbers)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var row models.LineItem
		if err := rows.Scan(&row.PONumber, &row.SKU, &row.Description, &row.Quantity, &row.UnitPriceCents, &row.ValueCents); err != nil {
			rows.Close()
			return nil, err
		}
		c := out[row.PONumber]
		c.lineItems = append(c.lineItems, toDomainLineItem(&row))
		out[row.PONumber] = c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `
		SELECT po_number, sequence, delivery_to_consolidator, actual_sailing_date, qty_shipped, shipped_value_cents
		FROM merch_po_shipments
		WHERE po_number = ANY($1)
		ORDER BY po_number, sequence`, poNumbers)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var row models.Shipment
		if err := rows.Scan(&row.PONumber, &row.Sequence, &row.DeliveryToConsolidator, &row.ActualSailingDate, &row.QtyShipped, &row.ShippedValueCents); err != nil {
			rows.Close()
			return nil, err
		}
		c := out[row.PONumber]
		c.shipments = append(c.shipments, toDomainShipment(&row))
		out[row.PONumber] = c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `
		SELECT po_number, name, planned_date, revised_date, actual_date
		FROM merch_po_milestones
		WHERE po_number = ANY($1)
		ORDER BY po_number, name`, poNumbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var row models.Milestone
		if err := rows.Scan(&row.PONumber, &row.Name, &row.PlannedDate, &row.RevisedDate, &row.ActualDate); err != nil {
			return nil, err
		}
		c := out[row.PONumber]
		c.milestones = append(c.milestones, toDomainMilestone(&row))
		out[row.PONumber] = c
	}
	return out, rows.Err()
}

func scanPODest(row *models.PurchaseOrder) []any {
	return []any{
		&row.ID, &row.PONumber, &row.VendorCode, &row.Client, &row.Collection,
		&row.ProgramDescription, &row.Merchandiser, &row.MerchandisingManager,
		&row.PODate, &row.OriginalShipDate, &row.RevisedShipDate,
		&row.OriginalCancelDate, &row.RevisedCancelDate, &row.RevisedBy,
		&row.Quantity, &row.TotalValueCents, &row.ShippedValueCents,
		&row.Status, &row.ShipmentStatus, &row.IsSample,
	}
}
