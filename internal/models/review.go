package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model

	Text     string `gorm:"type:text;not null"`
	Score    int    `gorm:"not null;check:score >= 1 AND score <= 10"`
	AuthorID uint   `gorm:"not null;uniqueIndex:idx_author_title"`
	TitleID  uint   `gorm:"not null;uniqueIndex:idx_author_title"`

	// Relationships
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Title    Title     `gorm:"foreignKey:TitleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:ReviewID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
