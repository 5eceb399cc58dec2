package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is created together with its owner and may have any number of associated users.
type Company struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;index"`
	OwnerID   uuid.UUID `json:"ownerId" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Users []User `json:"users,omitempty" gorm:"foreignKey:CompanyID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
