package types

import (
	"time"
)

type Portfolio struct {
	Id          int64     `json:"id"`
	OwnerId     int64     `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}
