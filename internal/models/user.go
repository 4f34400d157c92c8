package models

import "gorm.io/gorm"

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	gorm.Model

	Username  string `gorm:"uniqueIndex;size:150;not null"`
	Email     string `gorm:"uniqueIndex;size:254;not null"`
	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`
	Bio       string `gorm:"type:text"`
	Role      string `gorm:"size:9;not null;default:user"`
	IsStaff   bool   `gorm:"not null;default:false"`

	// Bcrypt hash of the confirmation code. Blank until signup and again
	// after the code has been redeemed for a token.
	ConfirmationCode string

	// Relationships
	Reviews  []Review  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
