package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo belongs to an owner key: a user UUID for signed-in users, or the
// caller-supplied anonymous client UUID for visitors.
type Todo struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID   string         `gorm:"size:36;not null;index" json:"owner_id"`
	Title     string         `gorm:"size:500;not null" json:"title"`
	Completed bool           `gorm:"default:false" json:"completed"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
