package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/qadesk/internal/models"
	"gorm.io/gorm"
)

// Gorm implements Backend on a gorm connection.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) fail(op string, err error) error {
	return fmt.Errorf("store: %s: %w", op, Classify(err))
}

// ListRequirements returns all requirements, newest first.
func (g *Gorm) ListRequirements(ctx context.Context) ([]models.Requirement, error) {
	var reqs []models.Requirement
	if err := g.db.WithContext(ctx).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, g.fail("list requirements", err)
	}
	return reqs, nil
}

// RequirementsBySystem returns the requirements of one system, newest first.
func (g *Gorm) RequirementsBySystem(ctx context.Context, system string) ([]models.Requirement, error) {
	var reqs []models.Requirement
	if err := g.db.WithContext(ctx).Where(&models.Requirement{System: system}).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, g.fail("list requirements by system", err)
	}
	return reqs, nil
}

// CreateRequirement inserts a requirement.
func (g *Gorm) CreateRequirement(ctx context.Context, r *models.Requirement) error {
	if err := g.db.WithContext(ctx).Create(r).Error; err != nil {
		return g.fail("create requirement", err)
	}
	return nil
}

// UpdateRequirement loads a requirement, applies mutate and saves it.
func (g *Gorm) UpdateRequirement(ctx context.Context, id string, mutate func(*models.Requirement)) (*models.Requirement, error) {
	var r models.Requirement
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
			return err
		}
		mutate(&r)
		return tx.Save(&r).Error
	})
	if err != nil {
		return nil, g.fail("update requirement "+id, err)
	}
	return &r, nil
}

// ImportRequirements marks requirements as imported into planID.
func (g *Gorm) ImportRequirements(ctx context.Context, ids []string, planID string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := g.db.WithContext(ctx).Model(&models.Requirement{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":       models.RequirementImported,
			"imported_at":  at,
			"test_plan_id": planID,
		}).Error
	if err != nil {
		return g.fail("import requirements", err)
	}
	return nil
}

// ListPlans returns all test plans, newest first.
func (g *Gorm) ListPlans(ctx context.Context) ([]models.TestPlan, error) {
	var plans []models.TestPlan
	if err := g.db.WithContext(ctx).Order("created_at DESC").Find(&plans).Error; err != nil {
		return nil, g.fail("list plans", err)
	}
	return plans, nil
}

// GetPlan loads one plan by its business id.
func (g *Gorm) GetPlan(ctx context.Context, id string) (*models.TestPlan, error) {
	var p models.TestPlan
	if err := g.db.WithContext(ctx).Where("plan_id = ?", id).First(&p).Error; err != nil {
		return nil, g.fail("get plan "+id, err)
	}
	return &p, nil
}

// CreatePlan inserts a plan.
func (g *Gorm) CreatePlan(ctx context.Context, p *models.TestPlan) error {
	if err := g.db.WithContext(ctx).Create(p).Error; err != nil {
		return g.fail("create plan", err)
	}
	return nil
}

// UpdatePlan loads a plan, applies mutate and saves it.
func (g *Gorm) UpdatePlan(ctx context.Context, id string, mutate func(*models.TestPlan)) (*models.TestPlan, error) {
	var p models.TestPlan
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).First(&p).Error; err != nil {
			return err
		}
		mutate(&p)
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, g.fail("update plan "+id, err)
	}
	return &p, nil
}

// UpdatePlanProgress sets a plan's progress column.
func (g *Gorm) UpdatePlanProgress(ctx context.Context, id string, progress int) error {
	return g.updatePlanColumn(ctx, "update plan progress", id, "progress", progress)
}

// UpdateBurndown replaces a plan's burndown series.
func (g *Gorm) UpdateBurndown(ctx context.Context, id string, points []models.BurndownPoint) error {
	_, err := g.UpdatePlan(ctx, id, func(p *models.TestPlan) { p.BurndownData = points })
	return err
}

func (g *Gorm) updatePlanColumn(ctx context.Context, op, id, column string, value any) error {
	res := g.db.WithContext(ctx).Model(&models.TestPlan{}).Where("plan_id = ?", id).Update(column, value)
	if res.Error != nil {
		return g.fail(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return g.fail(op, gorm.ErrRecordNotFound)
	}
	return nil
}

// DeletePlan removes a plan and its executions.
func (g *Gorm) DeletePlan(ctx context.Context, id string) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_plan_id = ?", id).Delete(&models.TestCaseExecution{}).Error; err != nil {
			return err
		}
		res := tx.Where("plan_id = ?", id).Delete(&models.TestPlan{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return g.fail("delete plan "+id, err)
	}
	return nil
}

// ListExecutions returns a plan's executions, newest first.
func (g *Gorm) ListExecutions(ctx context.Context, planID string) ([]models.TestCaseExecution, error) {
	var execs []models.TestCaseExecution
	if err := g.db.WithContext(ctx).Where("test_plan_id = ?", planID).Order("created_at DESC").Find(&execs).Error; err != nil {
		return nil, g.fail("list executions", err)
	}
	return execs, nil
}

// CreateExecution inserts an execution row.
func (g *Gorm) CreateExecution(ctx context.Context, e *models.TestCaseExecution) error {
	if err := g.db.WithContext(ctx).Create(e).Error; err != nil {
		return g.fail("create execution", err)
	}
	return nil
}

// UpdateExecution sets an execution's status and, if given, its actual time.
func (g *Gorm) UpdateExecution(ctx context.Context, id uint, status string, actual *float64) (*models.TestCaseExecution, error) {
	var e models.TestCaseExecution
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, id).Error; err != nil {
			return err
		}
		e.Status = status
		if actual != nil {
			e.ActualExecutionTime = actual
		}
		return tx.Save(&e).Error
	})
	if err != nil {
		return nil, g.fail(fmt.Sprintf("update execution %d", id), err)
	}
	return &e, nil
}

// Stats summarises every table.
func (g *Gorm) Stats(ctx context.Context) (*Stats, error) {
	var (
		reqs  []models.Requirement
		plans []models.TestPlan
		execs []models.TestCaseExecution
	)
	db := g.db.WithContext(ctx)
	if err := db.Select("status").Find(&reqs).Error; err != nil {
		return nil, g.fail("stats requirements", err)
	}
	if err := db.Select("status", "progress").Find(&plans).Error; err != nil {
		return nil, g.fail("stats plans", err)
	}
	if err := db.Select("status").Find(&execs).Error; err != nil {
		return nil, g.fail("stats executions", err)
	}
	return ComputeStats(reqs, plans, execs), nil
}

// IsNotFound reports whether err is a backend not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
