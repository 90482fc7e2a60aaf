package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"gorm.io/gorm"
)

// JobSheetRepository 订单仓库（只读来源，销售侧维护）
type JobSheetRepository struct {
	db *gorm.DB
}

func NewJobSheetRepository(db *gorm.DB) *JobSheetRepository {
	return &JobSheetRepository{db: db}
}

// FindByID 根据ID查找订单（含行项）
func (r *JobSheetRepository) FindByID(ctx context.Context, id string) (*entity.JobSheet, error) {
	var sheet entity.JobSheet
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&sheet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sheet, nil
}

// FindAllActive 查找所有非草稿订单（含行项），聚合器的输入
func (r *JobSheetRepository) FindAllActive(ctx context.Context) ([]entity.JobSheet, error) {
	var sheets []entity.JobSheet
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("is_draft = ?", false).
		Order("created_at DESC").
		Find(&sheets).Error
	return sheets, err
}

// FindAll 分页查询订单列表
func (r *JobSheetRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.JobSheet, int64, error) {
	var sheets []entity.JobSheet
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.JobSheet{})

	if search := filters["search"]; search != "" {
		query = query.Where("sheet_no ILIKE ? OR client_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if draft := filters["is_draft"]; draft != "" {
		query = query.Where("is_draft = ?", draft == "true")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&sheets).Error

	return sheets, total, err
}
