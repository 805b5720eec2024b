package models

import (
	"time"
)

// Advertiser is the tenant a builder user launches campaigns for.
type Advertiser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,min=3,max=255"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
