package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/projection"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/infrastructure/persistence/models"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
)

type PgSnapshotRepository struct{}

func NewSnapshotRepository() projection.SnapshotRepository {
	return &PgSnapshotRepository{}
}

func (r *PgSnapshotRepository) AppendBatch(ctx context.Context, snapshots []projection.Snapshot) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, s := range snapshots {
		if _, err := tx.Exec(ctx, `
			INSERT INTO merch_projection_snapshots (
				vendor_code, sku, year, month, import_date, order_type,
				quantity, value_cents, collection, client
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			s.VendorCode(), s.SKU(), s.Year(), int(s.Month()), s.ImportDate(),
			string(s.OrderType()), s.Quantity(), s.ValueCents(), s.Collection(), s.Client(),
		); err != nil {
			return gerrors.Wrapf(err, "append snapshot %s %d-%02d", s.SKU(), s.Year(), s.Month())
		}
	}
	return nil
}

// ListLatest keeps the newest import per (sku, year, month) via a window
// function, ties broken by insertion order.
func (r *PgSnapshotRepository) ListLatest(ctx context.Context) ([]projection.Snapshot, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT vendor_code, sku, year, month, import_date, order_type,
		       quantity, value_cents, collection, client
		FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY sku, year, month
				ORDER BY import_date DESC, id DESC
			) AS rn
			FROM merch_projection_snapshots
		) latest
		WHERE rn = 1
		ORDER BY vendor_code, sku, year, month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projection.Snapshot
	for rows.Next() {
		var row models.ProjectionSnapshot
		if err := rows.Scan(
			&row.VendorCode, &row.SKU, &row.Year, &row.Month, &row.ImportDate,
			&row.OrderType, &row.Quantity, &row.ValueCents, &row.Collection, &row.Client,
		); err != nil {
			return nil, err
		}
		out = append(out, toDomainSnapshot(&row))
	}
	return out, rows.Err()
}

const activeProjectionColumns = `
	vendor_code, sku, year, month, order_type, quantity, value_cents,
	collection, client, comment, match_status, matched_po_number,
	actual_quantity, actual_value_cents, quantity_variance, value_variance,
	variance_pct`

type PgActiveProjectionRepository struct{}

func NewActiveProjectionRepository() projection.ActiveRepository {
	return &PgActiveProjectionRepository{}
}

func (r *PgActiveProjectionRepository) ListAll(ctx context.Context) ([]projection.ActiveProjection, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+activeProjectionColumns+`
		FROM merch_active_projections
		ORDER BY vendor_code, sku, year, month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projection.ActiveProjection
	for rows.Next() {
		var row models.ActiveProjection
		if err := rows.Scan(
			&row.VendorCode, &row.SKU, &row.Year, &row.Month, &row.OrderType,
			&row.Quantity, &row.ValueCents, &row.Collection, &row.Client,
			&row.Comment, &row.MatchStatus, &row.MatchedPONumber,
			&row.ActualQuantity, &row.ActualValueCents, &row.QuantityVariance,
			&row.ValueVariance, &row.VariancePct,
		); err != nil {
			return nil, err
		}
		out = append(out, toDomainActiveProjection(&row))
	}
	return out, rows.Err()
}

func (r *PgActiveProjectionRepository) ReplaceAll(ctx context.Context, projections []projection.ActiveProjection) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM merch_active_projections`); err != nil {
		return err
	}
	for _, p := range projections {
		if _, err := tx.Exec(ctx, `
			INSERT INTO merch_active_projections (`+activeProjectionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			p.VendorCode, p.SKU, p.Year, int(p.Month), string(p.OrderType),
			p.Quantity, p.ValueCents, p.Collection, p.Client, p.Comment,
			string(p.MatchStatus), p.MatchedPONumber, p.ActualQuantity,
			p.ActualValueCents, p.QuantityVariance, p.ValueVariance, p.VariancePct,
		); err != nil {
			return gerrors.Wrapf(err, "insert active projection %s %d-%02d", p.SKU, p.Year, p.Month)
		}
	}
	return nil
}

func (r *PgActiveProjectionRepository) SaveMatches(ctx context.Context, projections []projection.ActiveProjection) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, p := range projections {
		if _, err := tx.Exec(ctx, `
			UPDATE merch_active_projections SET
				match_status = $5, matched_po_number = $6, actual_quantity = $7,
				actual_value_cents = $8, quantity_variance = $9,
				value_variance = $10, variance_pct = $11
			WHERE vendor_code = $1 AND sku = $2 AND year = $3 AND month = $4`,
			p.VendorCode, p.SKU, p.Year, int(p.Month),
			string(p.MatchStatus), p.MatchedPONumber, p.ActualQuantity,
			p.ActualValueCents, p.QuantityVariance, p.ValueVariance, p.VariancePct,
		); err != nil {
			return gerrors.Wrapf(err, "save match %s %d-%02d", p.SKU, p.Year, p.Month)
		}
	}
	return nil
}
