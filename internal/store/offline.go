package store

import (
	"context"
	"time"

	"github.com/zulandar/qadesk/internal/models"
)

// Offline is the backend used when none is configured or reachable.
// Every call fails with ErrUnavailable so callers fall back to local data.
type Offline struct{}

func (Offline) ListRequirements(context.Context) ([]models.Requirement, error) {
	return nil, ErrUnavailable
}

func (Offline) RequirementsBySystem(context.Context, string) ([]models.Requirement, error) {
	return nil, ErrUnavailable
}

func (Offline) CreateRequirement(context.Context, *models.Requirement) error { return ErrUnavailable }

func (Offline) UpdateRequirement(context.Context, string, func(*models.Requirement)) (*models.Requirement, error) {
	return nil, ErrUnavailable
}

func (Offline) ImportRequirements(context.Context, []string, string, time.Time) error {
	return ErrUnavailable
}

func (Offline) ListPlans(context.Context) ([]models.TestPlan, error) { return nil, ErrUnavailable }

func (Offline) GetPlan(context.Context, string) (*models.TestPlan, error) {
	return nil, ErrUnavailable
}

func (Offline) CreatePlan(context.Context, *models.TestPlan) error { return ErrUnavailable }

func (Offline) UpdatePlan(context.Context, string, func(*models.TestPlan)) (*models.TestPlan, error) {
	return nil, ErrUnavailable
}

func (Offline) UpdatePlanProgress(context.Context, string, int) error { return ErrUnavailable }

func (Offline) UpdateBurndown(context.Context, string, []models.BurndownPoint) error {
	return ErrUnavailable
}

func (Offline) DeletePlan(context.Context, string) error { return ErrUnavailable }

func (Offline) ListExecutions(context.Context, string) ([]models.TestCaseExecution, error) {
	return nil, ErrUnavailable
}

func (Offline) CreateExecution(context.Context, *models.TestCaseExecution) error {
	return ErrUnavailable
}

func (Offline) UpdateExecution(context.Context, uint, string, *float64) (*models.TestCaseExecution, error) {
	return nil, ErrUnavailable
}

func (Offline) Stats(context.Context) (*Stats, error) { return nil, ErrUnavailable }

var (
	_ Backend = (*Gorm)(nil)
	_ Backend = Offline{}
)
