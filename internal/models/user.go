// internal/models/user.go
package models

import "time"

// User mirrors an identity issued by the auth provider. The uid is the
// provider's subject, so it doubles as the record id.
type User struct {
	ID          string    `json:"uid" gorm:"type:varchar(64);primaryKey" bson:"_id"`
	Email       string    `json:"email" gorm:"uniqueIndex;size:255;not null" bson:"email"`
	DisplayName string    `json:"display_name" gorm:"size:255" bson:"display_name"`
	Role        Role      `json:"role" gorm:"type:varchar(10);default:'user';index" bson:"role"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
