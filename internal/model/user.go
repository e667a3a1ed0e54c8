package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	StudentID    string    `gorm:"column:student_id;uniqueIndex;not null" json:"studentId"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Course       string    `gorm:"not null" json:"course"`
	Year         string    `gorm:"not null" json:"year"`
	CreatedAt    time.Time `json:"-"`
}

// Profile is the subset of a user that is returned to clients
type Profile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Course    string `json:"course"`
	Year      string `json:"year"`
	StudentID string `json:"studentId"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Course:    u.Course,
		Year:      u.Year,
		StudentID: u.StudentID,
	}
}
