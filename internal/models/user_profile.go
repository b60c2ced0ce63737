package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultCognitiveState 是档案缺失时使用的认知状态默认值（满分）。
const DefaultCognitiveState = 100

// UserProfile 代表一个用户的画像记录，存储在 MySQL 中。
// CognitiveState 是 0-100 的认知状态评分，用于推导自述事实的默认置信度：
// 评分越低，用户作为自我报告者越不可靠，写入的事实置信度越低。
type UserProfile struct {
	gorm.Model

	UserID         string `gorm:"uniqueIndex;not null;size:255"` // 外部用户标识
	DisplayName    string `gorm:"size:255"`
	CognitiveState int    `gorm:"not null;default:100"` // 认知状态评分 [0,100]
	Settings       datatypes.JSON
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
