package models

import "time"

const (
	ActionRegister     = "register"
	ActionLogin        = "login"
	ActionOpenProblem  = "open_problem"
	ActionSaveProblem  = "save_problem"
	ActionSolveProblem = "solve_problem"
	ActionTimeLog      = "time_log"
)

// ActivityLog rows are append-only: written once, never updated or deleted,
// which is why this model does not embed gorm.Model.
type ActivityLog struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"index;not null"`
	Action    string `gorm:"size:64;not null"`
	RefType   string `gorm:"size:32"`
	RefID     uint
	Meta      string `gorm:"type:text;default:'{}'"`
	CreatedAt time.Time
}
