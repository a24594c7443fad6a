package event

import (
	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/store"
)

type Repository interface {
	Save(db *gorm.DB, e *models.Event) error
	FindByID(db *gorm.DB, id uint) (*models.Event, error)
	List(db *gorm.DB, filter models.EventFilter) ([]models.Event, error)
	Update(db *gorm.DB, e *models.Event, columns ...string) error
	CountBySupport(db *gorm.DB, supportID uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, e *models.Event) error {
	return db.Create(e).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Event, error) {
	var e models.Event
	err := db.
		Preload("Contract.Client").
		Preload("Client").
		Preload("Support").
		First(&e, id).Error
	if err != nil {
		return nil, store.NotFound(err, "event", id)
	}
	return &e, nil
}

// List combines every filter field that is set with AND.
func (r *repositoryImpl) List(db *gorm.DB, filter models.EventFilter) ([]models.Event, error) {
	q := db.
		Preload("Contract.Client").
		Preload("Client").
		Preload("Support")

	if filter.SupportID != nil {
		q = q.Where("events.support_id = ?", *filter.SupportID)
	}
	if filter.Unassigned {
		q = q.Where("events.support_id IS NULL")
	}
	if filter.Assigned {
		q = q.Where("events.support_id IS NOT NULL")
	}
	if filter.SupportOrNone != nil {
		q = q.Where("(events.support_id = ? OR events.support_id IS NULL)", *filter.SupportOrNone)
	}
	if filter.CommercialID != nil {
		q = q.Joins("JOIN contracts ON contracts.id = events.contract_id").
			Where("contracts.commercial_id = ?", *filter.CommercialID)
	}
	if filter.StartAtOrAfter != nil {
		q = q.Where("events.date_start >= ?", *filter.StartAtOrAfter)
	}
	if filter.EndBefore != nil {
		q = q.Where("events.date_end < ?", *filter.EndBefore)
	}

	var list []models.Event
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Update(db *gorm.DB, e *models.Event, columns ...string) error {
	return db.Model(e).Select(columns).Updates(e).Error
}

func (r *repositoryImpl) CountBySupport(db *gorm.DB, supportID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Event{}).Where("support_id = ?", supportID).Count(&n).Error
	return n, err
}
