package db

import (
	"fmt"

	"github.com/zulandar/qadesk/internal/fixtures"
	"github.com/zulandar/qadesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns every persisted model, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&models.Requirement{},
		&models.TestPlan{},
		&models.TestCaseExecution{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every qadesk table.
func DropAll(db *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop %T: %w", all[i], err)
		}
	}
	return nil
}

// SeedRequirements upserts the built-in requirements.
func SeedRequirements(db *gorm.DB) (int, error) {
	reqs := fixtures.Requirements()
	for i := range reqs {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "system", "module", "priority"}),
		}).Create(&reqs[i])
		if result.Error != nil {
			return 0, fmt.Errorf("db: seed requirement %q: %w", reqs[i].ID, result.Error)
		}
	}
	return len(reqs), nil
}

// SeedPlans upserts the built-in test plans and one execution row per
// selected test case.
func SeedPlans(db *gorm.DB) (int, error) {
	plans := fixtures.Plans()
	for i := range plans {
		p := &plans[i]
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "start_date", "end_date", "assigned_to", "requirements", "test_cases", "burndown_data", "estimated_hours"}),
		}).Create(p)
		if result.Error != nil {
			return 0, fmt.Errorf("db: seed plan %q: %w", p.ID, result.Error)
		}

		var existing int64
		if err := db.Model(&models.TestCaseExecution{}).Where("test_plan_id = ?", p.ID).Count(&existing).Error; err != nil {
			return 0, fmt.Errorf("db: count executions for %q: %w", p.ID, err)
		}
		if existing > 0 {
			continue
		}
		for _, tc := range p.TestCases {
			exec := models.TestCaseExecution{
				TestPlanID:            p.ID,
				TestCaseID:            tc.TestCaseID,
				Priority:              tc.Priority,
				ExpectedExecutionTime: tc.ExpectedExecutionTime,
				ActualExecutionTime:   tc.ActualExecutionTime,
				Status:                tc.Status,
				Assignee:              tc.Assignee,
			}
			if err := db.Create(&exec).Error; err != nil {
				return 0, fmt.Errorf("db: seed execution %s/%s: %w", p.ID, tc.TestCaseID, err)
			}
		}
	}
	return len(plans), nil
}
