package contract

import (
	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/store"
)

type Repository interface {
	Save(db *gorm.DB, c *models.Contract) error
	FindByID(db *gorm.DB, id uint) (*models.Contract, error)
	List(db *gorm.DB, filter models.ContractFilter) ([]models.Contract, error)
	Update(db *gorm.DB, c *models.Contract, columns ...string) error
	CountByCommercial(db *gorm.DB, commercialID uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, c *models.Contract) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Contract, error) {
	var c models.Contract
	if err := db.Preload("Client").Preload("Commercial").First(&c, id).Error; err != nil {
		return nil, store.NotFound(err, "contract", id)
	}
	return &c, nil
}

func (r *repositoryImpl) List(db *gorm.DB, filter models.ContractFilter) ([]models.Contract, error) {
	q := db.Preload("Client").Preload("Commercial")
	switch filter.Status {
	case models.ContractsUnsigned:
		q = q.Where("is_signed = ?", false)
	case models.ContractsSigned:
		q = q.Where("is_signed = ?", true)
	case models.ContractsUnpaid:
		q = q.Where("amount_due > 0")
	case models.ContractsPaid:
		q = q.Where("amount_due <= 0")
	}
	if filter.CommercialID != nil {
		q = q.Where("commercial_id = ?", *filter.CommercialID)
	}
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}

	var list []models.Contract
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Update(db *gorm.DB, c *models.Contract, columns ...string) error {
	return db.Model(c).Select(columns).Updates(c).Error
}

func (r *repositoryImpl) CountByCommercial(db *gorm.DB, commercialID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Contract{}).Where("commercial_id = ?", commercialID).Count(&n).Error
	return n, err
}
