package models

import "time"

const (
	RoleAdmin        = "admin"
	RoleStaff        = "staff"
	RoleReceptionist = "receptionist"
	RoleClient       = "client"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'staff';index" json:"role"`

	LocationID *uint     `json:"location_id"`
	Location   *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsStaffRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleReceptionist:
		return true
	}
	return false
}
