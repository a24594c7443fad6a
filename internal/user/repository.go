package user

import (
	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/store"
)

type Repository interface {
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByID(db *gorm.DB, id uint) (*models.User, error)
	Save(db *gorm.DB, u *models.User) error
	List(db *gorm.DB, role *models.Role) ([]models.User, error)
	Update(db *gorm.DB, u *models.User, columns ...string) error
	Delete(db *gorm.DB, id uint) error
	EmailTaken(db *gorm.DB, email string, exceptID uint) (bool, error)
	CountByRole(db *gorm.DB, role models.Role) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var u models.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, store.NotFound(err, "account", email)
	}
	return &u, nil
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		return nil, store.NotFound(err, "account", id)
	}
	return &u, nil
}

func (r *repositoryImpl) Save(db *gorm.DB, u *models.User) error {
	return db.Create(u).Error
}

func (r *repositoryImpl) List(db *gorm.DB, role *models.Role) ([]models.User, error) {
	var list []models.User
	q := db
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Update(db *gorm.DB, u *models.User, columns ...string) error {
	return db.Model(u).Select(columns).Updates(u).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&models.User{}, id).Error
}

// EmailTaken reports whether another account than exceptID uses email.
func (r *repositoryImpl) EmailTaken(db *gorm.DB, email string, exceptID uint) (bool, error) {
	var n int64
	err := db.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *repositoryImpl) CountByRole(db *gorm.DB, role models.Role) (int64, error) {
	var n int64
	err := db.Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}
