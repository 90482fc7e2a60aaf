package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SplitInput 拆分交付入参
type SplitInput struct {
	OrderedQty float64 `json:"ordered_qty" binding:"required"`
}

// SplitResult 拆分交付结果：交付部分的完结快照与回到待采购队列的剩余行
type SplitResult struct {
	Fulfilled *entity.FulfilledRecord `json:"fulfilled"`
	Remainder *entity.SourcingRecord  `json:"remainder"`
}

// SplitService 拆分交付服务
// 把一条跟进行的部分到货量拆出为独立完结记录，剩余量重置回pending
type SplitService struct {
	db           *gorm.DB
	recordRepo   *repository.RecordRepository
	seqService   *SequenceService
	requirements *RequirementService
	logger       *zap.Logger
}

func NewSplitService(
	db *gorm.DB,
	recordRepo *repository.RecordRepository,
	seqService *SequenceService,
	requirements *RequirementService,
	logger *zap.Logger,
) *SplitService {
	return &SplitService{
		db:           db,
		recordRepo:   recordRepo,
		seqService:   seqService,
		requirements: requirements,
		logger:       logger,
	}
}

// Split 拆分交付
// 交付数量必须严格小于当前需求数量。虚拟行先物化。
// 同一事务内：写入交付部分的完结快照（required=ordered=交付量，带拆分编号）
// 和拆分流水，原记录需求量扣减、已订清零、状态重置为pending。
func (s *SplitService) Split(ctx context.Context, rowID string, input SplitInput, userID string) (*SplitResult, error) {
	if input.OrderedQty <= 0 {
		return nil, fmt.Errorf("%w: 交付数量必须大于0", ErrValidation)
	}

	record, err := s.requirements.Materialize(ctx, rowID, userID)
	if err != nil {
		return nil, err
	}
	if input.OrderedQty >= record.RequiredQty {
		return nil, fmt.Errorf("%w: 交付数量 %.2f 必须小于需求数量 %.2f",
			ErrValidation, input.OrderedQty, record.RequiredQty)
	}

	splitNo, err := s.seqService.SplitNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fulfilled := &entity.FulfilledRecord{
		ID:           uuid.New().String()[:32],
		JobSheetID:   record.JobSheetID,
		SheetNo:      record.SheetNo,
		ClientName:   record.ClientName,
		ProductName:  record.ProductName,
		Size:         record.Size,
		RequiredQty:  input.OrderedQty,
		OrderedQty:   input.OrderedQty,
		VendorName:   record.VendorName,
		ConfirmedAt:  record.ConfirmedAt,
		ExpectedAt:   record.ExpectedAt,
		PickedUpAt:   record.PickedUpAt,
		DeliveryDate: record.DeliveryDate,
		Remarks:      record.Remarks,
		SplitNo:      &splitNo,
		ClosedAt:     now,
	}
	splitLog := &entity.SplitLog{
		ID:          uuid.New().String()[:32],
		FulfilledID: fulfilled.ID,
		JobSheetID:  record.JobSheetID,
		OrderedQty:  input.OrderedQty,
		ReceivedQty: input.OrderedQty,
		CreatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fulfilled).Error; err != nil {
			return fmt.Errorf("写入拆分完结记录失败: %w", err)
		}
		if err := tx.Create(splitLog).Error; err != nil {
			return fmt.Errorf("写入拆分流水失败: %w", err)
		}

		record.RequiredQty -= input.OrderedQty
		record.OrderedQty = 0
		record.Status = entity.RecordStatusPending
		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("更新剩余跟进记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sourcing line split",
		zap.String("record_id", record.ID),
		zap.String("split_no", splitNo),
		zap.Float64("delivered_qty", input.OrderedQty),
		zap.Float64("remaining_qty", record.RequiredQty),
	)

	return &SplitResult{Fulfilled: fulfilled, Remainder: record}, nil
}
