package model

import "time"

const (
	CascadeRunning    = "running"
	CascadeCompleted  = "completed"
	CascadeFailed     = "failed"
	// CascadeSuperseded 重试仍失败，由重试产生的新记录接替
	CascadeSuperseded = "superseded"
)

// CascadeRun 级联删除执行记录，失败的记录可由 repair 命令重试
type CascadeRun struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	RootKind     string     `gorm:"not null;size:20;index" json:"root_kind"`
	RootID       string     `gorm:"not null;size:24;index" json:"root_id"`
	Status       string     `gorm:"not null;size:20;default:'running';index" json:"status"`
	LastStep     string     `gorm:"size:64" json:"last_step"`
	Steps        int        `gorm:"default:0" json:"steps"`
	RetryCount   int        `gorm:"default:0" json:"retry_count"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`
	FinishedAt   *time.Time `json:"finished_at"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (CascadeRun) TableName() string {
	return "cascade_runs"
}
