package quality

import "context"

type Repository interface {
	ListInspectionsByPO(ctx context.Context, poNumbers []string) (map[string][]Inspection, error)
	ListTestsByPO(ctx context.Context, poNumbers []string) (map[string][]QualityTest, error)
	ListInspectionKeys(ctx context.Context) (map[string]bool, error)
	ListTestKeys(ctx context.Context) (map[string]bool, error)
	CreateInspections(ctx context.Context, rows []Inspection) error
	UpdateInspections(ctx context.Context, rows []Inspection) error
	CreateTests(ctx context.Context, rows []QualityTest) error
	UpdateTests(ctx context.Context, rows []QualityTest) error
	CountInspections(ctx context.Context) (int64, error)
}
