package repository

import (
	"context"
	"errors"
	"hackassist_web/internal/model"
	"hackassist_web/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository 保存序列化后的用户快照，key 不存在时返回 util.ErrSessionNotFound
type SessionRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

type GormSessionRepository struct {
	DB *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{DB: db}
}

func (r *GormSessionRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var record model.SessionRecord
	err := findSession(r.DB.WithContext(ctx), key, &record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(record.Data), nil
}

func (r *GormSessionRepository) Save(ctx context.Context, key string, data []byte) error {
	now := time.Now()
	record := model.SessionRecord{
		Key:       key,
		Data:      string(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return upsertSession(r.DB.WithContext(ctx), &record).Error
}

func (r *GormSessionRepository) Delete(ctx context.Context, key string) error {
	return deleteSession(r.DB.WithContext(ctx), key).Error
}

// 结构体条件让 gorm 按方言引用列名（key 在 mysql 中是保留字）
func findSession(tx *gorm.DB, key string, dest *model.SessionRecord) *gorm.DB {
	return tx.Where(&model.SessionRecord{Key: key}).First(dest)
}

// upsert，保留原创建时间
func upsertSession(tx *gorm.DB, record *model.SessionRecord) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(record)
}

func deleteSession(tx *gorm.DB, key string) *gorm.DB {
	return tx.Delete(&model.SessionRecord{Key: key})
}
