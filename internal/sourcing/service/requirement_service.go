package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-sourcing/internal/shared/feishu"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrValidation 业务校验失败，handler层据此返回400
var ErrValidation = errors.New("validation failed")

// 可接受的日期输入格式，解析失败视为空值而非报错
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
}

// ParseFlexibleDate 宽松解析日期字符串，无法解析时返回nil
func ParseFlexibleDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// UpdateRecordInput 跟进记录更新入参，nil字段不修改
type UpdateRecordInput struct {
	RequiredQty  *float64 `json:"required_qty"`
	OrderedQty   *float64 `json:"ordered_qty"`
	VendorName   *string  `json:"vendor_name"`
	ConfirmedAt  *string  `json:"confirmed_at"`
	ExpectedAt   *string  `json:"expected_at"`
	PickedUpAt   *string  `json:"picked_up_at"`
	DeliveryDate *string  `json:"delivery_date"`
	Remarks      *string  `json:"remarks"`
	Status       *string  `json:"status"`
}

// RequirementService 采购跟进服务
// 负责虚拟行物化、状态流转和整组到货关单
type RequirementService struct {
	db           *gorm.DB
	jobSheetRepo *repository.JobSheetRepository
	recordRepo   *repository.RecordRepository
	userRepo     *repository.UserRepository
	seqService   *SequenceService
	feishuClient *feishu.FeishuClient
	logger       *zap.Logger
}

func NewRequirementService(
	db *gorm.DB,
	jobSheetRepo *repository.JobSheetRepository,
	recordRepo *repository.RecordRepository,
	userRepo *repository.UserRepository,
	seqService *SequenceService,
	feishuClient *feishu.FeishuClient,
	logger *zap.Logger,
) *RequirementService {
	return &RequirementService{
		db:           db,
		jobSheetRepo: jobSheetRepo,
		recordRepo:   recordRepo,
		userRepo:     userRepo,
		seqService:   seqService,
		feishuClient: feishuClient,
		logger:       logger,
	}
}

// Materialize 确保行ID对应一条真实的跟进记录
// 虚拟行ID会按订单行落库为新记录；已物化过的行返回已有记录。
func (s *RequirementService) Materialize(ctx context.Context, rowID, userID string) (*entity.SourcingRecord, error) {
	if !IsVirtualID(rowID) {
		return s.recordRepo.FindByID(ctx, rowID)
	}

	jobSheetID, index, err := ParseVirtualID(rowID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sheet, err := s.jobSheetRepo.FindByID(ctx, jobSheetID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(sheet.Items) {
		return nil, fmt.Errorf("%w: 订单行下标越界: %d", ErrValidation, index)
	}
	item := sheet.Items[index]

	// 同组合键已有记录时直接复用，避免重复物化
	existing, err := s.recordRepo.FindByKey(ctx, sheet.ID, item.ProductName, item.Size)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	record := &entity.SourcingRecord{
		ID:           uuid.New().String()[:32],
		JobSheetID:   sheet.ID,
		SheetNo:      sheet.SheetNo,
		ClientName:   sheet.ClientName,
		ProductName:  item.ProductName,
		Size:         item.Size,
		RequiredQty:  item.Quantity,
		OrderedQty:   0,
		VendorName:   item.SourceFrom,
		DeliveryDate: sheet.DeliveryDate,
		Status:       entity.RecordStatusPending,
		CreatedBy:    userID,
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("物化跟进记录失败: %w", err)
	}
	return record, nil
}

// UpdateRecord 更新跟进记录并驱动状态机
// 流转到received时在同一事务内做整组到货检查与关单；
// 流转到alert时异步通知管理员，不影响本次更新结果。
func (s *RequirementService) UpdateRecord(ctx context.Context, rowID string, input UpdateRecordInput, userID string) (*entity.SourcingRecord, error) {
	if input.Status != nil {
		switch *input.Status {
		case entity.RecordStatusPending, entity.RecordStatusReceived, entity.RecordStatusAlert:
		default:
			return nil, fmt.Errorf("%w: 非法状态: %s", ErrValidation, *input.Status)
		}
	}

	record, err := s.Materialize(ctx, rowID, userID)
	if err != nil {
		return nil, err
	}

	applyRecordInput(record, input)

	becameAlert := input.Status != nil && *input.Status == entity.RecordStatusAlert
	becameReceived := input.Status != nil && *input.Status == entity.RecordStatusReceived

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("保存跟进记录失败: %w", err)
		}
		if becameReceived {
			if err := s.closeGroupIfComplete(ctx, tx, record.JobSheetID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if becameAlert {
		go s.sendAlertNotification(context.Background(), record)
	}

	return record, nil
}

func applyRecordInput(record *entity.SourcingRecord, input UpdateRecordInput) {
	if input.RequiredQty != nil {
		record.RequiredQty = *input.RequiredQty
	}
	if input.OrderedQty != nil {
		record.OrderedQty = *input.OrderedQty
	}
	if input.VendorName != nil {
		record.VendorName = *input.VendorName
	}
	if input.ConfirmedAt != nil {
		record.ConfirmedAt = ParseFlexibleDate(*input.ConfirmedAt)
	}
	if input.ExpectedAt != nil {
		record.ExpectedAt = ParseFlexibleDate(*input.ExpectedAt)
	}
	if input.PickedUpAt != nil {
		record.PickedUpAt = ParseFlexibleDate(*input.PickedUpAt)
	}
	if input.DeliveryDate != nil {
		record.DeliveryDate = ParseFlexibleDate(*input.DeliveryDate)
	}
	if input.Remarks != nil {
		record.Remarks = *input.Remarks
	}
	if input.Status != nil {
		record.Status = *input.Status
	}
}

// closeGroupIfComplete 整组到货检查与关单，必须在事务内调用
// 以订单当前行项为准收集同组记录：只要有一行尚未物化或未到货就不关单。
// 关单逐行生成完结快照：到货数量不足的行补发拆分编号；
// 已存在同键非拆分完结记录时原地更新，否则插入，重复关单因此幂等。
func (s *RequirementService) closeGroupIfComplete(ctx context.Context, tx *gorm.DB, jobSheetID string) error {
	var sheet entity.JobSheet
	if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("id = ?", jobSheetID).First(&sheet).Error; err != nil {
		return fmt.Errorf("读取订单失败: %w", err)
	}

	siblings := make([]entity.SourcingRecord, 0, len(sheet.Items))
	for _, item := range sheet.Items {
		var record entity.SourcingRecord
		err := tx.Where("job_sheet_id = ? AND product_name = ? AND size = ?",
			jobSheetID, item.ProductName, item.Size).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // 还有行未开始跟进
			}
			return fmt.Errorf("读取同组记录失败: %w", err)
		}
		if record.Status != entity.RecordStatusReceived {
			return nil
		}
		siblings = append(siblings, record)
	}

	closedAt := time.Now()
	for _, sibling := range siblings {
		var splitNo *string
		if sibling.OrderedQty < sibling.RequiredQty {
			// 到货不足仍标记received，补拆分编号留痕
			no, err := s.seqService.SplitNumber(ctx)
			if err != nil {
				return err
			}
			splitNo = &no
		}

		snapshot := entity.FulfilledRecord{
			ID:           uuid.New().String()[:32],
			JobSheetID:   sibling.JobSheetID,
			SheetNo:      sibling.SheetNo,
			ClientName:   sibling.ClientName,
			ProductName:  sibling.ProductName,
			Size:         sibling.Size,
			RequiredQty:  sibling.RequiredQty,
			OrderedQty:   sibling.OrderedQty,
			VendorName:   sibling.VendorName,
			ConfirmedAt:  sibling.ConfirmedAt,
			ExpectedAt:   sibling.ExpectedAt,
			PickedUpAt:   sibling.PickedUpAt,
			DeliveryDate: sibling.DeliveryDate,
			Remarks:      sibling.Remarks,
			SplitNo:      splitNo,
			ClosedAt:     closedAt,
		}

		var existing entity.FulfilledRecord
		err := tx.Where("job_sheet_id = ? AND product_name = ? AND size = ? AND split_no IS NULL",
			sibling.JobSheetID, sibling.ProductName, sibling.Size).
			First(&existing).Error
		switch {
		case err == nil:
			snapshot.ID = existing.ID
			snapshot.CreatedAt = existing.CreatedAt
			if err := tx.Save(&snapshot).Error; err != nil {
				return fmt.Errorf("更新完结记录失败: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&snapshot).Error; err != nil {
				return fmt.Errorf("写入完结记录失败: %w", err)
			}
		default:
			return fmt.Errorf("查询完结记录失败: %w", err)
		}
	}

	return nil
}

// sendAlertNotification 向全部管理员推送异常预警卡片，失败只记日志
func (s *RequirementService) sendAlertNotification(ctx context.Context, record *entity.SourcingRecord) {
	if s.feishuClient == nil {
		return
	}
	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		s.logger.Error("Failed to load admins for alert notification", zap.Error(err))
		return
	}

	card := feishu.NewSourcingAlertCard(
		record.SheetNo, record.ProductName, record.Size,
		record.VendorName, record.Remarks, record.RequiredQty,
	)
	for _, admin := range admins {
		if admin.FeishuUserID == "" {
			continue
		}
		if err := s.feishuClient.SendUserCard(ctx, admin.FeishuUserID, card); err != nil {
			s.logger.Error("Failed to send alert card",
				zap.String("user_id", admin.ID),
				zap.String("record_id", record.ID),
				zap.Error(err),
			)
		}
	}
}
