package service

import (
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	summaryColumns = "materials.id, materials.title, materials.filetype, materials.course, materials.year, materials.semester, materials.size, materials.upload_date"
	fullColumns    = summaryColumns + ", materials.filename, materials.description, users.username AS uploader"
	listOrder      = "materials.upload_date desc, materials.id desc"
)

// Filters are optional equality predicates, empty fields don't restrict anything
type Filters struct {
	Course   string `form:"course"`
	Year     string `form:"year"`
	Semester string `form:"semester"`
	// Search matches a part of the title, case insensitive
	Search string `form:"search"`
}

func (f Filters) apply(q *gorm.DB) *gorm.DB {
	if f.Course != "" {
		q = q.Where("materials.course = ?", f.Course)
	}

	if f.Year != "" {
		q = q.Where("materials.year = ?", f.Year)
	}

	if f.Semester != "" {
		q = q.Where("materials.semester = ?", f.Semester)
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(materials.title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	return q
}

// Catalog is the relational record of every stored material
type Catalog struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{
		db:  db,
		now: time.Now,
	}
}

func (c *Catalog) Insert(ctx context.Context, m *model.Material) error {
	if m.UploadDate.IsZero() {
		m.UploadDate = c.now()
	}

	// SQLite compares the stored text, mixed offsets would break the ordering
	m.UploadDate = m.UploadDate.UTC()

	if err := c.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("%w: failed to save material, %v", apperr.ErrStoreFailure, err)
	}

	return nil
}

// ListPublic only selects the summary columns, the rest never leaves the database
func (c *Catalog) ListPublic(ctx context.Context, f Filters) ([]model.MaterialSummary, error) {
	out := []model.MaterialSummary{}

	err := f.apply(c.db.WithContext(ctx).Model(model.Material{})).
		Select(summaryColumns).
		Order(listOrder).
		Scan(&out).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list materials, %v", apperr.ErrStoreFailure, err)
	}

	return out, nil
}

// ListAuthenticated adds the stored name, description and uploader. A left
// join keeps materials whose uploader no longer exists.
func (c *Catalog) ListAuthenticated(ctx context.Context, f Filters) ([]model.MaterialFull, error) {
	out := []model.MaterialFull{}

	err := f.apply(c.db.WithContext(ctx).Model(model.Material{})).
		Joins("LEFT JOIN users ON users.id = materials.uploader_id").
		Select(fullColumns).
		Order(listOrder).
		Scan(&out).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list materials, %v", apperr.ErrStoreFailure, err)
	}

	return out, nil
}

func (c *Catalog) GetByID(ctx context.Context, id uint) (*model.Material, error) {
	var m model.Material

	err := c.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}

		return nil, fmt.Errorf("%w: failed to look up material, %v", apperr.ErrStoreFailure, err)
	}

	return &m, nil
}
