package models

import "time"

// Title is a reviewable work. Its rating is never stored: it is the
// mean of the associated review scores, computed from the reviews
// table on demand.
type Title struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"size:256;not null"`
	Description *string    `json:"description,omitempty"`
	Year        int        `json:"year" gorm:"not null;index"`
	CategoryID  int64      `json:"-" gorm:"not null;index"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// associations
	Category Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE;"`
	Genres   []Genre  `json:"genres" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
