package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"gorm.io/gorm"
)

// ProductRepository 产品参考数据仓库
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByCode 按主编码查找
func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.findOne(ctx, "code = ?", code)
}

// FindByAltCode 按备用编码查找
func (r *ProductRepository) FindByAltCode(ctx context.Context, altCode string) (*entity.Product, error) {
	return r.findOne(ctx, "alt_code = ?", altCode)
}

// FindByName 按名称模糊匹配，取最早创建的一条
func (r *ProductRepository) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	if name == "" {
		return nil, nil
	}
	var product entity.Product
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+name+"%").
		Order("created_at ASC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) findOne(ctx context.Context, query string, arg string) (*entity.Product, error) {
	if arg == "" {
		return nil, nil
	}
	var product entity.Product
	err := r.db.WithContext(ctx).Where(query, arg).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}
