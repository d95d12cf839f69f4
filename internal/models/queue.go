package models

import "gorm.io/gorm"

// Role classes
const (
	RoleClassTech = "TECH"
	RoleClassBiz  = "BIZ"
)

// Queue entry statuses
const (
	StatusWaiting  = "WAITING"
	StatusAssigned = "ASSIGNED"
)

// Pod composition: every pod holds exactly 3 TECH and 1 BIZ entries from one region.
const (
	PodTechSeats = 3
	PodBizSeats  = 1
	PodSize      = PodTechSeats + PodBizSeats
)

// QueueEntry is one candidate's record in the waiting queue. Rows are never
// deleted; once a pod claims an entry its status moves WAITING -> ASSIGNED and
// pod_id is set, both exactly once.
type QueueEntry struct {
	gorm.Model
	Email      string  `gorm:"not null"`
	Handle     string  `gorm:"not null"`
	ChatHandle string  `gorm:""`
	Region     string  `gorm:"not null;index:idx_queue_matching,priority:1"`
	RoleClass  string  `gorm:"not null;index:idx_queue_matching,priority:2"`
	Status     string  `gorm:"not null;default:WAITING;index:idx_queue_matching,priority:3"`
	PodID      *string `gorm:"index"`
}

// RegionCounts is the waiting-pool size for one region, split by role class.
type RegionCounts struct {
	Tech int64 `json:"tech"`
	Biz  int64 `json:"biz"`
}

// ModelRegistry lists every model subject to --auto-migrate.
var ModelRegistry = []interface{}{
	&QueueEntry{},
}
