package models

import "gorm.io/gorm"

type Title struct {
	gorm.Model

	Name        string  `gorm:"size:256;not null"`
	Year        int     `gorm:"not null"`
	Description *string `gorm:"type:text"`
	CategoryID  *uint   `gorm:"index"`

	// Relationships
	Category *Category    `gorm:"foreignKey:CategoryID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Genres   []TitleGenre `gorm:"foreignKey:TitleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Reviews  []Review     `gorm:"foreignKey:TitleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// TitleGenre is the title/genre association table.
type TitleGenre struct {
	gorm.Model

	TitleID uint `gorm:"not null;uniqueIndex:idx_title_genre"`
	GenreID uint `gorm:"not null;uniqueIndex:idx_title_genre"`

	// Relationships
	Title Title `gorm:"foreignKey:TitleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Genre Genre `gorm:"foreignKey:GenreID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
