package client

import (
	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/store"
)

type Repository interface {
	Save(db *gorm.DB, c *models.Client) error
	FindByID(db *gorm.DB, id uint) (*models.Client, error)
	List(db *gorm.DB, commercialID *uint) ([]models.Client, error)
	Update(db *gorm.DB, c *models.Client, columns ...string) error
	CountByCommercial(db *gorm.DB, commercialID uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, c *models.Client) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Client, error) {
	var c models.Client
	if err := db.Preload("Commercial").First(&c, id).Error; err != nil {
		return nil, store.NotFound(err, "client", id)
	}
	return &c, nil
}

func (r *repositoryImpl) List(db *gorm.DB, commercialID *uint) ([]models.Client, error) {
	var list []models.Client
	q := db.Preload("Commercial")
	if commercialID != nil {
		q = q.Where("commercial_id = ?", *commercialID)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Update(db *gorm.DB, c *models.Client, columns ...string) error {
	return db.Model(c).Select(columns).Updates(c).Error
}

func (r *repositoryImpl) CountByCommercial(db *gorm.DB, commercialID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Client{}).Where("commercial_id = ?", commercialID).Count(&n).Error
	return n, err
}
