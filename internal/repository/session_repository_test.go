package repository

import (
	"hackassist_web/internal/model"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB opens a dialect without connecting; statements are only rendered.
func dryRunDB(t *testing.T, dialector gorm.Dialector) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dialector, &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	return db
}

func TestGormSessionStatements(t *testing.T) {
	dialects := map[string]struct {
		db     func(t *testing.T) *gorm.DB
		upsert []string
		where  string
	}{
		"mysql": {
			db: func(t *testing.T) *gorm.DB {
				return dryRunDB(t, mysql.New(mysql.Config{
					DSN:                       "root:@tcp(127.0.0.1:3306)/hackassist_web?parseTime=true",
					SkipInitializeWithVersion: true,
				}))
			},
			upsert: []string{"INSERT INTO `session_records`", "ON DUPLICATE KEY UPDATE", "`data`", "`updated_at`"},
			where:  "`session_records`.`key` = ",
		},
		"postgres": {
			db: func(t *testing.T) *gorm.DB {
				return dryRunDB(t, postgres.New(postgres.Config{
					DSN: "host=127.0.0.1 user=postgres dbname=hackassist_web sslmode=disable",
				}))
			},
			upsert: []string{`INSERT INTO "session_records"`, `ON CONFLICT ("key") DO UPDATE SET`, `"data"="excluded"."data"`, `"updated_at"="excluded"."updated_at"`},
			where:  `"session_records"."key" = `,
		},
	}

	for name, d := range dialects {
		t.Run(name, func(t *testing.T) {
			db := d.db(t)
			record := &model.SessionRecord{Key: "hackassist_user:c1", Data: `{"student_id":1}`, CreatedAt: time.Now(), UpdatedAt: time.Now()}

			upsert := db.ToSQL(func(tx *gorm.DB) *gorm.DB { return upsertSession(tx, record) })
			for _, part := range d.upsert {
				if !strings.Contains(upsert, part) {
					t.Errorf("upsert = %s, missing %s", upsert, part)
				}
			}
			if strings.Contains(upsert, "created_at\"=") || strings.Contains(upsert, "`created_at`=") {
				t.Errorf("upsert = %s, overwrites created_at", upsert)
			}

			find := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var dest model.SessionRecord
				return findSession(tx, "hackassist_user:c1", &dest)
			})
			if !strings.Contains(find, d.where) || !strings.Contains(find, "hackassist_user:c1") {
				t.Errorf("find = %s", find)
			}

			del := db.ToSQL(func(tx *gorm.DB) *gorm.DB { return deleteSession(tx, "hackassist_user:c1") })
			if !strings.HasPrefix(del, "DELETE FROM") || !strings.Contains(del, d.where) {
				t.Errorf("delete = %s", del)
			}
		})
	}
}
