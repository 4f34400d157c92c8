package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model

	Text     string `gorm:"type:text;not null"`
	AuthorID uint   `gorm:"not null;index"`
	ReviewID uint   `gorm:"not null;index"`

	// Relationships
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Review Review `gorm:"foreignKey:ReviewID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
