package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-sourcing/internal/config"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GeneratePOInput 生成采购订单入参
type GeneratePOInput struct {
	VendorID    string `json:"vendor_id" binding:"required"`
	ProductCode string `json:"product_code"` // 可选，显式指定产品编码
	RequiredBy  string `json:"required_by"`  // 可选，要求到货日期
}

// POTotals 采购订单金额汇总
type POTotals struct {
	Subtotal   float64
	TaxTotal   float64
	GrandTotal float64
}

// ComputePOTotals 计算采购订单金额，纯函数
// 行总额=数量×单价，小计/税额保留2位小数，总额四舍五入取整。
// 同时把各行的LineTotal就地写回。
func ComputePOTotals(items []entity.POItem) POTotals {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	hundred := decimal.NewFromInt(100)

	for i := range items {
		lineTotal := decimal.NewFromFloat(items[i].Quantity).
			Mul(decimal.NewFromFloat(items[i].UnitPrice)).
			Round(2)
		items[i].LineTotal = lineTotal.InexactFloat64()

		subtotal = subtotal.Add(lineTotal)
		taxTotal = taxTotal.Add(
			lineTotal.Mul(decimal.NewFromFloat(items[i].GSTPercent)).Div(hundred),
		)
	}

	subtotal = subtotal.Round(2)
	taxTotal = taxTotal.Round(2)
	grandTotal := subtotal.Add(taxTotal).Round(0)

	return POTotals{
		Subtotal:   subtotal.InexactFloat64(),
		TaxTotal:   taxTotal.InexactFloat64(),
		GrandTotal: grandTotal.InexactFloat64(),
	}
}

// NeedsApproval 审批建议标记，纯函数
// 总额超过阈值或供应商无历史采购单时为true，仅提示不拦截
func NeedsApproval(grandTotal float64, threshold float64, priorOrders int64) bool {
	return grandTotal > threshold || priorOrders == 0
}

// POService 采购订单服务
type POService struct {
	db          *gorm.DB
	recordRepo  *repository.RecordRepository
	productRepo *repository.ProductRepository
	vendorRepo  *repository.VendorRepository
	poRepo      *repository.PORepository
	seqService  *SequenceService
	cfg         *config.Config
	logger      *zap.Logger
}

func NewPOService(
	db *gorm.DB,
	recordRepo *repository.RecordRepository,
	productRepo *repository.ProductRepository,
	vendorRepo *repository.VendorRepository,
	poRepo *repository.PORepository,
	seqService *SequenceService,
	cfg *config.Config,
	logger *zap.Logger,
) *POService {
	return &POService{
		db:          db,
		recordRepo:  recordRepo,
		productRepo: productRepo,
		vendorRepo:  vendorRepo,
		poRepo:      poRepo,
		seqService:  seqService,
		cfg:         cfg,
		logger:      logger,
	}
}

// resolveProduct 解析产品价格与税率
// 依次尝试主编码、备用编码、名称模糊匹配，都未命中时价格/税率按0处理
func (s *POService) resolveProduct(ctx context.Context, code, productName string) (unitPrice, gstPercent float64, resolvedCode string, err error) {
	if code != "" {
		product, err := s.productRepo.FindByCode(ctx, code)
		if err != nil {
			return 0, 0, "", err
		}
		if product == nil {
			product, err = s.productRepo.FindByAltCode(ctx, code)
			if err != nil {
				return 0, 0, "", err
			}
		}
		if product != nil {
			return product.UnitCost, product.GSTPercent, product.Code, nil
		}
	}

	product, err := s.productRepo.FindByName(ctx, productName)
	if err != nil {
		return 0, 0, "", err
	}
	if product != nil {
		return product.UnitCost, product.GSTPercent, product.Code, nil
	}
	return 0, 0, code, nil
}

// GeneratePO 从一条跟进记录生成采购订单
// 虚拟行ID直接拒绝，必须先物化。单号经原子计数器铸造，
// 订单落库后把单号回写到来源记录（冗余，加速列表展示）。
func (s *POService) GeneratePO(ctx context.Context, recordID string, input GeneratePOInput, userID string) (*entity.PurchaseOrder, error) {
	if IsVirtualID(recordID) {
		return nil, fmt.Errorf("%w: 虚拟行不能直接生成采购订单，请先保存跟进记录", ErrValidation)
	}
	if input.VendorID == "" {
		return nil, fmt.Errorf("%w: 缺少供应商", ErrValidation)
	}

	record, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	vendor, err := s.vendorRepo.FindByID(ctx, input.VendorID)
	if err != nil {
		return nil, err
	}

	unitPrice, gstPercent, resolvedCode, err := s.resolveProduct(ctx, input.ProductCode, record.ProductName)
	if err != nil {
		return nil, fmt.Errorf("查询产品参考数据失败: %w", err)
	}

	priorOrders, err := s.vendorRepo.CountPriorOrders(ctx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("统计历史采购单失败: %w", err)
	}

	poNumber, err := s.seqService.PONumber(ctx)
	if err != nil {
		return nil, err
	}

	poID := uuid.New().String()[:32]
	items := []entity.POItem{
		{
			ID:          uuid.New().String()[:32],
			POID:        poID,
			ProductName: record.ProductName,
			ProductCode: resolvedCode,
			Quantity:    record.RequiredQty,
			UnitPrice:   unitPrice,
			GSTPercent:  gstPercent,
			SortOrder:   0,
		},
	}
	totals := ComputePOTotals(items)

	po := &entity.PurchaseOrder{
		ID:               poID,
		PONumber:         poNumber,
		SourcingRecordID: record.ID,
		VendorID:         vendor.ID,
		IssueDate:        time.Now(),
		RequiredBy:       ParseFlexibleDate(input.RequiredBy),
		VendorCompany:    vendor.Company,
		VendorContact:    vendor.ContactName,
		VendorAddress:    vendor.Address,
		VendorPhone:      vendor.Phone,
		VendorEmail:      vendor.Email,
		Subtotal:         totals.Subtotal,
		TaxTotal:         totals.TaxTotal,
		GrandTotal:       totals.GrandTotal,
		NeedsApproval:    NeedsApproval(totals.GrandTotal, s.cfg.Sourcing.ApprovalThreshold, priorOrders),
		CreatedBy:        userID,
		Items:            items,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(po).Error; err != nil {
			return fmt.Errorf("创建采购订单失败: %w", err)
		}
		// 回写单号到来源记录
		updates := map[string]interface{}{
			"po_number":   po.PONumber,
			"po_id":       po.ID,
			"vendor_name": vendor.Company,
		}
		if err := tx.Model(&entity.SourcingRecord{}).
			Where("id = ?", record.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("回写采购单号失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order generated",
		zap.String("po_number", po.PONumber),
		zap.String("record_id", record.ID),
		zap.String("vendor_id", vendor.ID),
		zap.Float64("grand_total", po.GrandTotal),
		zap.Bool("needs_approval", po.NeedsApproval),
	)
	return po, nil
}

// GetPO 查询采购订单详情
func (s *POService) GetPO(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// ListPOs 分页查询采购订单
func (s *POService) ListPOs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.FindAll(ctx, page, pageSize, filters)
}

// DeletePO 删除采购订单，并清掉来源记录上的单号回写
func (s *POService) DeletePO(ctx context.Context, id string) error {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.SourcingRecord{}).
			Where("po_id = ?", po.ID).
			Updates(map[string]interface{}{"po_number": "", "po_id": nil}).Error; err != nil {
			return fmt.Errorf("清除采购单号回写失败: %w", err)
		}
		if err := tx.Where("po_id = ?", po.ID).Delete(&entity.POItem{}).Error; err != nil {
			return fmt.Errorf("删除采购订单明细失败: %w", err)
		}
		if err := tx.Delete(&entity.PurchaseOrder{}, "id = ?", po.ID).Error; err != nil {
			return fmt.Errorf("删除采购订单失败: %w", err)
		}
		return nil
	})
}
