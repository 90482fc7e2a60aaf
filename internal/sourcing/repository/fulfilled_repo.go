package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"gorm.io/gorm"
)

// FulfilledRepository 完结记录与拆分流水仓库
type FulfilledRepository struct {
	db *gorm.DB
}

func NewFulfilledRepository(db *gorm.DB) *FulfilledRepository {
	return &FulfilledRepository{db: db}
}

// FindNonSplitByKey 查找某订单行的非拆分完结记录
// 部分唯一索引保证最多一条；不存在时返回nil
func (r *FulfilledRepository) FindNonSplitByKey(ctx context.Context, jobSheetID, productName, size string) (*entity.FulfilledRecord, error) {
	var record entity.FulfilledRecord
	err := r.db.WithContext(ctx).
		Where("job_sheet_id = ? AND product_name = ? AND size = ? AND split_no IS NULL",
			jobSheetID, productName, size).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByJobSheet 查找某订单的全部完结记录
func (r *FulfilledRepository) FindByJobSheet(ctx context.Context, jobSheetID string) ([]entity.FulfilledRecord, error) {
	var records []entity.FulfilledRecord
	err := r.db.WithContext(ctx).
		Where("job_sheet_id = ?", jobSheetID).
		Order("closed_at DESC").
		Find(&records).Error
	return records, err
}

// FindAll 分页查询完结记录
func (r *FulfilledRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.FulfilledRecord, int64, error) {
	var records []entity.FulfilledRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.FulfilledRecord{})

	if jobSheetID := filters["job_sheet_id"]; jobSheetID != "" {
		query = query.Where("job_sheet_id = ?", jobSheetID)
	}
	if split := filters["split"]; split == "true" {
		query = query.Where("split_no IS NOT NULL")
	} else if split == "false" {
		query = query.Where("split_no IS NULL")
	}
	if search := filters["search"]; search != "" {
		query = query.Where("sheet_no ILIKE ? OR product_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("closed_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&records).Error

	return records, total, err
}

// FindSplitLogs 查找某完结记录的拆分流水
func (r *FulfilledRepository) FindSplitLogs(ctx context.Context, fulfilledID string) ([]entity.SplitLog, error) {
	var logs []entity.SplitLog
	err := r.db.WithContext(ctx).
		Where("fulfilled_id = ?", fulfilledID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
