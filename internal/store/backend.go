// Package store is the persistence adapter in front of the relational
// backend. Callers treat every failure as recoverable: the state layer
// applies changes locally whether or not the backend accepted them.
package store

import (
	"context"
	"time"

	"github.com/zulandar/qadesk/internal/models"
)

// RequirementBackend persists requirements.
type RequirementBackend interface {
	ListRequirements(ctx context.Context) ([]models.Requirement, error)
	RequirementsBySystem(ctx context.Context, system string) ([]models.Requirement, error)
	CreateRequirement(ctx context.Context, r *models.Requirement) error
	UpdateRequirement(ctx context.Context, id string, mutate func(*models.Requirement)) (*models.Requirement, error)
	ImportRequirements(ctx context.Context, ids []string, planID string, at time.Time) error
}

// PlanBackend persists test plans.
type PlanBackend interface {
	ListPlans(ctx context.Context) ([]models.TestPlan, error)
	GetPlan(ctx context.Context, id string) (*models.TestPlan, error)
	CreatePlan(ctx context.Context, p *models.TestPlan) error
	UpdatePlan(ctx context.Context, id string, mutate func(*models.TestPlan)) (*models.TestPlan, error)
	UpdatePlanProgress(ctx context.Context, id string, progress int) error
	UpdateBurndown(ctx context.Context, id string, points []models.BurndownPoint) error
	DeletePlan(ctx context.Context, id string) error
}

// ExecutionBackend persists per-plan test case executions.
type ExecutionBackend interface {
	ListExecutions(ctx context.Context, planID string) ([]models.TestCaseExecution, error)
	CreateExecution(ctx context.Context, e *models.TestCaseExecution) error
	UpdateExecution(ctx context.Context, id uint, status string, actual *float64) (*models.TestCaseExecution, error)
}

// Backend is the full persistence surface.
type Backend interface {
	RequirementBackend
	PlanBackend
	ExecutionBackend
	Stats(ctx context.Context) (*Stats, error)
}
