package model

import (
	"time"
)

// SessionRecord 是 SQL 存储下的会话快照行
type SessionRecord struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Data      string    `gorm:"type:text;not null" json:"data"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SessionRecord) TableName() string {
	return "session_records"
}
