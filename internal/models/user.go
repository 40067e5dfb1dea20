package models

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleCreator UserRole = "creator"
	UserRoleUser    UserRole = "user"
)

type User struct {
	BaseModel
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	Role         UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Galleries    []Gallery `json:"-" gorm:"foreignKey:OwnerID"`
}

// CanMutate reports whether the role may create, update or delete
// galleries and photos. Plain users only read, rate, like and comment.
func (u *User) CanMutate() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleCreator
}
