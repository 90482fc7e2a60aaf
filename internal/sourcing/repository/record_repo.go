package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"gorm.io/gorm"
)

// RecordRepository 采购跟进记录仓库
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// FindByID 根据ID查找记录
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*entity.SourcingRecord, error) {
	var record entity.SourcingRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByKey 根据订单行组合键查找记录
func (r *RecordRepository) FindByKey(ctx context.Context, jobSheetID, productName, size string) (*entity.SourcingRecord, error) {
	var record entity.SourcingRecord
	err := r.db.WithContext(ctx).
		Where("job_sheet_id = ? AND product_name = ? AND size = ?", jobSheetID, productName, size).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByJobSheet 查找某订单的全部记录
func (r *RecordRepository) FindByJobSheet(ctx context.Context, jobSheetID string) ([]entity.SourcingRecord, error) {
	var records []entity.SourcingRecord
	err := r.db.WithContext(ctx).
		Where("job_sheet_id = ?", jobSheetID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// FindAll 查找全部记录，聚合器的输入
func (r *RecordRepository) FindAll(ctx context.Context) ([]entity.SourcingRecord, error) {
	var records []entity.SourcingRecord
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error
	return records, err
}

// Create 创建记录
func (r *RecordRepository) Create(ctx context.Context, record *entity.SourcingRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Update 更新记录
func (r *RecordRepository) Update(ctx context.Context, record *entity.SourcingRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}
