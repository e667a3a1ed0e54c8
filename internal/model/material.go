// Package model defines database models
package model

import "time"

type Material struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"not null" json:"title"`
	// Name of the file as the uploader had it, used when serving downloads
	OriginalName string `gorm:"not null" json:"-"`
	// Opaque name the blob is stored under so uploads never collide
	Filename    string    `gorm:"not null" json:"filename"`
	Filepath    string    `gorm:"not null" json:"-"`
	Filetype    string    `json:"filetype"`
	ContentType string    `json:"-"`
	Course      string    `gorm:"index" json:"course"`
	Year        string    `gorm:"index" json:"year"`
	Semester    string    `gorm:"index" json:"semester"`
	Description string    `json:"description"`
	UploaderID  *uint     `gorm:"index" json:"-"` // Weak reference, the user may be gone
	Size        string    `json:"size"`
	SizeBytes   int64     `json:"-"`
	UploadDate  time.Time `gorm:"index;not null" json:"uploadDate"`
}

// MaterialSummary is what anonymous visitors get to see. It must never carry
// stored names, paths, descriptions or anything about the uploader.
type MaterialSummary struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Filetype   string    `json:"filetype"`
	Course     string    `json:"course"`
	Year       string    `json:"year"`
	Semester   string    `json:"semester"`
	Size       string    `json:"size"`
	UploadDate time.Time `json:"uploadDate"`
}

// MaterialFull is the listing entry for authenticated users
type MaterialFull struct {
	MaterialSummary
	Filename    string  `json:"filename"`
	Description string  `json:"description"`
	Uploader    *string `json:"uploader"`
}

// UploadResult is returned after a material was stored
type UploadResult struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Filetype    string    `json:"filetype"`
	Course      string    `json:"course"`
	Year        string    `json:"year"`
	Semester    string    `json:"semester"`
	Description string    `json:"description"`
	Size        string    `json:"size"`
	UploadDate  time.Time `json:"uploadDate"`
}

func (m *Material) Result() UploadResult {
	return UploadResult{
		ID:          m.ID,
		Title:       m.Title,
		Filetype:    m.Filetype,
		Course:      m.Course,
		Year:        m.Year,
		Semester:    m.Semester,
		Description: m.Description,
		Size:        m.Size,
		UploadDate:  m.UploadDate,
	}
}
