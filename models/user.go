package models

import "time"

// Names of the groups that carry a role.
const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery Crew"
)

// Group is a named set of users. Only GroupManager and GroupDeliveryCrew
// mean anything to this service; membership in any other group still makes
// a user non-customer.
type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
}

// User mirrors the identity provider's user record.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"type:varchar(254)" json:"email"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"-"`
	Groups      []Group   `gorm:"many2many:user_groups;" json:"groups,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
