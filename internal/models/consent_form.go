package models

import "time"

const (
	ConsentPending = "pending"
	ConsentSigned  = "signed"
)

type ConsentForm struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"index;not null" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ServiceID     *uint `json:"service_id"`
	AppointmentID *uint `json:"appointment_id"`

	Title string `gorm:"size:150;not null" json:"title"`
	Body  string `gorm:"type:text" json:"body"`

	SignatureData string `gorm:"type:text" json:"-"`
	SignedName    string `gorm:"size:150" json:"signed_name"`

	FileKey     string `gorm:"size:255" json:"-"`
	FileName    string `gorm:"size:255" json:"file_name"`
	ContentType string `gorm:"size:100" json:"content_type"`

	Status   string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	SignedAt *time.Time `json:"signed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f ConsentForm) HasFile() bool {
	return f.FileKey != ""
}
