package service

import (
	"context"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
)

// ReferenceService 只读参考数据服务：订单、供应商、完结记录的查询面
type ReferenceService struct {
	jobSheetRepo  *repository.JobSheetRepository
	vendorRepo    *repository.VendorRepository
	fulfilledRepo *repository.FulfilledRepository
}

func NewReferenceService(
	jobSheetRepo *repository.JobSheetRepository,
	vendorRepo *repository.VendorRepository,
	fulfilledRepo *repository.FulfilledRepository,
) *ReferenceService {
	return &ReferenceService{
		jobSheetRepo:  jobSheetRepo,
		vendorRepo:    vendorRepo,
		fulfilledRepo: fulfilledRepo,
	}
}

// GetJobSheet 查询订单详情
func (s *ReferenceService) GetJobSheet(ctx context.Context, id string) (*entity.JobSheet, error) {
	return s.jobSheetRepo.FindByID(ctx, id)
}

// ListJobSheets 分页查询订单
func (s *ReferenceService) ListJobSheets(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.JobSheet, int64, error) {
	return s.jobSheetRepo.FindAll(ctx, page, pageSize, filters)
}

// GetVendor 查询供应商详情
func (s *ReferenceService) GetVendor(ctx context.Context, id string) (*entity.Vendor, error) {
	return s.vendorRepo.FindByID(ctx, id)
}

// ListVendors 分页查询供应商
func (s *ReferenceService) ListVendors(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Vendor, int64, error) {
	return s.vendorRepo.FindAll(ctx, page, pageSize, filters)
}

// ListFulfilled 分页查询完结记录
func (s *ReferenceService) ListFulfilled(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.FulfilledRecord, int64, error) {
	return s.fulfilledRepo.FindAll(ctx, page, pageSize, filters)
}

// GetSplitLogs 查询完结记录的拆分流水
func (s *ReferenceService) GetSplitLogs(ctx context.Context, fulfilledID string) ([]entity.SplitLog, error) {
	return s.fulfilledRepo.FindSplitLogs(ctx, fulfilledID)
}
