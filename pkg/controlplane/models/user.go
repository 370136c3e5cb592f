package models

import "time"

// Role is the access level granted to a User.
type Role string

const (
	RoleSu    Role = "su"
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an authenticated principal able to own Projects and sign in via
// the JWT session flow. Role "su" bypasses project ownership checks and can
// manage other users; "admin"/"user" are both ordinary project owners today,
// kept distinct so future authorization rules have somewhere to attach.
type User struct {
	ID                 string `gorm:"type:uuid;primaryKey"`
	Username           string `gorm:"uniqueIndex;not null"`
	PasswordHash       string `gorm:"not null"`
	Role               Role   `gorm:"type:varchar(16);not null;default:user"`
	MustChangePassword bool   `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Projects      []Project      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }

func (u *User) IsSu() bool    { return u.Role == RoleSu }
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin || u.Role == RoleSu }
