package models

import "time"

// User roles recognised by the portal.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a portal account: admin, teacher or student.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:256;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:student" json:"role"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanAuthor reports whether the user may create exams and questions.
func (u User) CanAuthor() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
