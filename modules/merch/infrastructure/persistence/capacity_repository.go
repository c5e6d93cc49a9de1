package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/capacity"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/infrastructure/persistence/models"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
)

type PgCapacityRepository struct{}

func NewCapacityRepository() capacity.Repository {
	return &PgCapacityRepository{}
}

func (r *PgCapacityRepository) ListByYear(ctx context.Context, year int) ([]capacity.VendorCapacityData, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT vendor_code, client, year, month, shipment_confirmed_cents,
		       shipment_unconfirmed_cents, projection_total_cents,
		       reserved_capacity_cents, factory_overall_capacity_cents, is_locked
		FROM merch_vendor_capacity
		WHERE year = $1
		ORDER BY vendor_code, client, month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []capacity.VendorCapacityData
	for rows.Next() {
		var row models.VendorCapacity
		if err := rows.Scan(
			&row.VendorCode, &row.Client, &row.Year, &row.Month,
			&row.ShipmentConfirmedCents, &row.ShipmentUnconfirmedCents,
			&row.ProjectionTotalCents, &row.ReservedCapacityCents,
			&row.FactoryOverallCapacityCents, &row.IsLocked,
		); err != nil {
			return nil, err
		}
		out = append(out, toDomainCapacity(&row))
	}
	return out, rows.Err()
}

// UpsertBatch writes rows keyed by (vendor, client, year, month). The
// conflict update carries a NOT is_locked guard so a feed can never
// overwrite a locked row, even if the caller's lock check raced.
func (r *PgCapacityRepository) UpsertBatch(ctx context.Context, rows []capacity.VendorCapacityData) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		d := row.Details()
		if _, err := tx.Exec(ctx, `
			INSERT INTO merch_vendor_capacity (
				vendor_code, client, year, month, shipment_confirmed_cents,
				shipment_unconfirmed_cents, projection_total_cents,
				reserved_capacity_cents, factory_overall_capacity_cents, is_locked
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false)
			ON CONFLICT (vendor_code, client, year, month) DO UPDATE SET
				shipment_confirmed_cents = EXCLUDED.shipment_confirmed_cents,
				shipment_unconfirmed_cents = EXCLUDED.shipment_unconfirmed_cents,
				projection_total_cents = EXCLUDED.projection_total_cents,
				reserved_capacity_cents = EXCLUDED.reserved_capacity_cents,
				factory_overall_capacity_cents = EXCLUDED.factory_overall_capacity_cents
			WHERE NOT merch_vendor_capacity.is_locked`,
			d.VendorCode, d.Client, d.Year, int(d.Month),
			d.ShipmentConfirmedCents, d.ShipmentUnconfirmedCents,
			d.ProjectionTotalCents, d.ReservedCapacityCents,
			d.FactoryOverallCapacityCents,
		); err != nil {
			return gerrors.Wrapf(err, "upsert capacity %s %d-%02d", d.VendorCode, d.Year, d.Month)
		}
	}
	return nil
}

func (r *PgCapacityRepository) LockYear(ctx context.Context, year int) (capacity.LockResult, error) {
	return r.setLock(ctx, year, true)
}

func (r *PgCapacityRepository) UnlockYear(ctx context.Context, year int) (capacity.LockResult, error) {
	return r.setLock(ctx, year, false)
}

func (r *PgCapacityRepository) setLock(ctx context.Context, year int, locked bool) (capacity.LockResult, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return capacity.LockResult{}, err
	}

	dataTag, err := tx.Exec(ctx, `
		UPDATE merch_vendor_capacity SET is_locked = $2
		WHERE year = $1 AND is_locked <> $2`, year, locked)
	if err != nil {
		return capacity.LockResult{}, err
	}
	summaryTag, err := tx.Exec(ctx, `
		UPDATE merch_capacity_summary SET is_locked = $2
		WHERE year = $1 AND is_locked <> $2`, year, locked)
	if err != nil {
		return capacity.LockResult{}, err
	}
	return capacity.LockResult{
		DataRows:    dataTag.RowsAffected(),
		SummaryRows: summaryTag.RowsAffected(),
	}, nil
}

// DeleteUnlocked is one statement per table: the is_locked check cannot
// race a concurrent lock. The returned count covers data rows only.
func (r *PgCapacityRepository) DeleteUnlocked(ctx context.Context, years []int) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `
		DELETE FROM merch_vendor_capacity
		WHERE year = ANY($1) AND NOT is_locked`, years)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM merch_capacity_summary
		WHERE year = ANY($1) AND NOT is_locked`, years); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RefreshSummary re-derives vendor-year roll-ups from the monthly rows.
// The conflict update carries the same NOT is_locked guard as the data
// upsert.
func (r *PgCapacityRepository) RefreshSummary(ctx context.Context, years []int) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO merch_capacity_summary (vendor_code, year, total_shipment_cents, total_reserved_cents)
		SELECT vendor_code, year,
		       SUM(shipment_confirmed_cents + shipment_unconfirmed_cents),
		       SUM(reserved_capacity_cents)
		FROM merch_vendor_capacity
		WHERE year = ANY($1)
		GROUP BY vendor_code, year
		ON CONFLICT (vendor_code, year) DO UPDATE SET
			total_shipment_cents = EXCLUDED.total_shipment_cents,
			total_reserved_cents = EXCLUDED.total_reserved_cents
		WHERE NOT merch_capacity_summary.is_locked`, years)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgCapacityRepository) ListSummaries(ctx context.Context, year int) ([]capacity.Summary, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT vendor_code, year, total_shipment_cents, total_reserved_cents, is_locked
		FROM merch_capacity_summary
		WHERE year = $1
		ORDER BY vendor_code`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []capacity.Summary
	for rows.Next() {
		var s capacity.Summary
		if err := rows.Scan(&s.VendorCode, &s.Year, &s.TotalShipmentCents, &s.TotalReservedCents, &s.IsLocked); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PgCapacityRepository) CountByYear(ctx context.Context, year int) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM merch_vendor_capacity WHERE year = $1`, year,
	).Scan(&count)
	return count, err
}

func (r *PgCapacityRepository) CountLocked(ctx context.Context, years []int) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM merch_vendor_capacity
		WHERE year = ANY($1) AND is_locked`, years,
	).Scan(&count)
	return count, err
}
