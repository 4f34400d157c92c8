package models

import "gorm.io/gorm"

type Genre struct {
	gorm.Model

	Name string `gorm:"size:256;not null"`
	Slug string `gorm:"uniqueIndex;size:50;not null"`
}
