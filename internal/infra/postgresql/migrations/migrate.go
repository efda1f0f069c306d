package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/rizkyhp/medremind/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_medications",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.MedicationModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_medications_user_id ON medications (user_id)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.MedicationModel{})
			},
		},
		{
			ID: "000002_create_medication_logs",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.LogEntryModel{}); err != nil {
					return err
				}
				indexes := []string{
					// The schedule key doubles as the upsert conflict target.
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_logs_schedule_key ON medication_logs (user_id, medication_id, scheduled_date, reminder_time)`,
					`CREATE INDEX IF NOT EXISTS idx_logs_pending_date ON medication_logs (scheduled_date) WHERE taken_status = 'PENDING'`,
					`CREATE INDEX IF NOT EXISTS idx_logs_user_date ON medication_logs (user_id, scheduled_date)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.LogEntryModel{})
			},
		},
		{
			ID: "000003_create_user_profiles",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.UserProfileModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.UserProfileModel{})
			},
		},
	})

	return m.Migrate()
}
