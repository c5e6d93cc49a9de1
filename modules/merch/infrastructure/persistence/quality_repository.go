package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/quality"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/infrastructure/persistence/models"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
)

// PgQualityRepository stores inspections and lab tests. The composite_key
// column holds the natural identity so re-imports update instead of
// duplicating, keeping linked child records alive.
type PgQualityRepository struct{}

func NewQualityRepository() quality.Repository {
	return &PgQualityRepository{}
}

func (r *PgQualityRepository) ListInspectionsByPO(ctx context.Context, poNumbers []string) (map[string][]quality.Inspection, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT sku, inspection_type, inspection_date, po_number, booked, result
		FROM merch_inspections
		WHERE po_number = ANY($1)
		ORDER BY po_number, inspection_date NULLS LAST`, poNumbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]quality.Inspection)
	for rows.Next() {
		var row models.Inspection
		if err := rows.Scan(&row.SKU, &row.InspectionType, &row.InspectionDate, &row.PONumber, &row.Booked, &row.Result); err != nil {
			return nil, err
		}
		out[row.PONumber] = append(out[row.PONumber], toDomainInspection(&row))
	}
	return out, rows.Err()
}

func (r *PgQualityRepository) ListTestsByPO(ctx context.Context, poNumbers []string) (map[string][]quality.QualityTest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT sku, test_type, test_date, po_number, submitted, result
		FROM merch_quality_tests
		WHERE po_number = ANY($1)
		ORDER BY po_number, test_date NULLS LAST`, poNumbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]quality.QualityTest)
	for rows.Next() {
		var row models.QualityTest
		if err := rows.Scan(&row.SKU, &row.TestType, &row.TestDate, &row.PONumber, &row.Submitted, &row.Result); err != nil {
			return nil, err
		}
		out[row.PONumber] = append(out[row.PONumber], toDomainQualityTest(&row))
	}
	return out, rows.Err()
}

func (r *PgQualityRepository) ListInspectionKeys(ctx context.Context) (map[string]bool, error) {
	return r.listKeys(ctx, "merch_inspections")
}

func (r *PgQualityRepository) ListTestKeys(ctx context.Context) (map[string]bool, error) {
	return r.listKeys(ctx, "merch_quality_tests")
}

func (r *PgQualityRepository) listKeys(ctx context.Context, table string) (map[string]bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT composite_key FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out[key] = true
	}
	return out, rows.Err()
}

func (r *PgQualityRepository) CreateInspections(ctx context.Context, rows []quality.Inspection) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO merch_inspections (composite_key, sku, inspection_type, inspection_date, po_number, booked, result)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			row.CompositeKey(), row.SKU, string(row.InspectionType), row.InspectionDate, row.PONumber, row.Booked, string(row.Result),
		); err != nil {
			return gerrors.Wrapf(err, "insert inspection %s", row.CompositeKey())
		}
	}
	return nil
}

func (r *PgQualityRepository) UpdateInspections(ctx context.Context, rows []quality.Inspection) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := tx.Exec(ctx, `
			UPDATE merch_inspections SET booked = $2, result = $3
			WHERE composite_key = $1`,
			row.CompositeKey(), row.Booked, string(row.Result),
		); err != nil {
			return gerrors.Wrapf(err, "update inspection %s", row.CompositeKey())
		}
	}
	return nil
}

func (r *PgQualityRepository) CreateTests(ctx context.Context, rows []quality.QualityTest) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO merch_quality_tests (composite_key, sku, test_type, test_date, po_number, submitted, result)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			row.CompositeKey(), row.SKU, row.TestType, row.TestDate, row.PONumber, row.Submitted, string(row.Result),
		); err != nil {
			return gerrors.Wrapf(err, "insert quality test %s", row.CompositeKey())
		}
	}
	return nil
}

func (r *PgQualityRepository) UpdateTests(ctx context.Context, rows []quality.QualityTest) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := tx.Exec(ctx, `
			UPDATE merch_quality_tests SET submitted = $2, result = $3
			WHERE composite_key = $1`,
			row.CompositeKey(), row.Submitted, string(row.Result),
		); err != nil {
			return gerrors.Wrapf(err, "update quality test %s", row.CompositeKey())
		}
	}
	return nil
}

func (r *PgQualityRepository) CountInspections(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM merch_inspections`).Scan(&count)
	return count, err
}
