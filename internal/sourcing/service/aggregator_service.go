package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"go.uber.org/zap"
)

// 虚拟行ID前缀。虚拟行未落库，对其写操作前必须先物化为真实记录。
const virtualIDPrefix = "virt-"

// RequirementRow 采购需求视图行
// 订单行合成的虚拟行与人工维护的跟进记录合并后的统一展示结构
type RequirementRow struct {
	ID           string     `json:"id"`
	JobSheetID   string     `json:"job_sheet_id"`
	SheetNo      string     `json:"sheet_no"`
	ClientName   string     `json:"client_name"`
	ProductName  string     `json:"product_name"`
	Size         string     `json:"size"`
	RequiredQty  float64    `json:"required_qty"`
	OrderedQty   float64    `json:"ordered_qty"`
	VendorName   string     `json:"vendor_name"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	ExpectedAt   *time.Time `json:"expected_at"`
	PickedUpAt   *time.Time `json:"picked_up_at"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Remarks      string     `json:"remarks"`
	Status       string     `json:"status"`
	PONumber     string     `json:"po_number"`
	IsVirtual    bool       `json:"is_virtual"`
}

// VirtualRowID 合成虚拟行ID
func VirtualRowID(jobSheetID string, index int) string {
	return fmt.Sprintf("%s%s-%d", virtualIDPrefix, jobSheetID, index)
}

// IsVirtualID 判断是否为虚拟行ID
func IsVirtualID(id string) bool {
	return strings.HasPrefix(id, virtualIDPrefix)
}

// ParseVirtualID 解析虚拟行ID，返回订单ID和行下标
func ParseVirtualID(id string) (jobSheetID string, index int, err error) {
	if !IsVirtualID(id) {
		return "", 0, fmt.Errorf("不是虚拟行ID: %s", id)
	}
	rest := strings.TrimPrefix(id, virtualIDPrefix)
	// 订单ID本身含'-'，下标在最后一段
	pos := strings.LastIndex(rest, "-")
	if pos <= 0 {
		return "", 0, fmt.Errorf("虚拟行ID格式错误: %s", id)
	}
	if _, err := fmt.Sscanf(rest[pos+1:], "%d", &index); err != nil {
		return "", 0, fmt.Errorf("虚拟行ID格式错误: %s", id)
	}
	return rest[:pos], index, nil
}

type rowKey struct {
	jobSheetID  string
	productName string
	size        string
}

// SynthesizeRows 从非草稿订单合成虚拟需求行
// 需求数量取订单数量，已订数量为0，交期取订单交期
func SynthesizeRows(sheets []entity.JobSheet) []RequirementRow {
	var rows []RequirementRow
	for _, sheet := range sheets {
		if sheet.IsDraft {
			continue
		}
		for i, item := range sheet.Items {
			rows = append(rows, RequirementRow{
				ID:           VirtualRowID(sheet.ID, i),
				JobSheetID:   sheet.ID,
				SheetNo:      sheet.SheetNo,
				ClientName:   sheet.ClientName,
				ProductName:  item.ProductName,
				Size:         item.Size,
				RequiredQty:  item.Quantity,
				OrderedQty:   0,
				VendorName:   item.SourceFrom,
				DeliveryDate: sheet.DeliveryDate,
				IsVirtual:    true,
			})
		}
	}
	return rows
}

// MergeRows 合并虚拟行与跟进记录
// 组合键匹配的记录原地覆盖虚拟行；未匹配的记录追加到末尾（订单行已被销售删改）。
// 最终按组合键去重，保留先出现的一条；被丢弃的重复持久记录记一条warn日志。
func MergeRows(virtual []RequirementRow, records []entity.SourcingRecord, logger *zap.Logger) []RequirementRow {
	rows := make([]RequirementRow, len(virtual))
	copy(rows, virtual)

	index := make(map[rowKey]int, len(rows))
	for i, row := range rows {
		key := rowKey{row.JobSheetID, row.ProductName, row.Size}
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	for _, record := range records {
		row := recordToRow(record)
		key := rowKey{record.JobSheetID, record.ProductName, record.Size}
		if i, ok := index[key]; ok {
			if !rows[i].IsVirtual {
				// 同一订单行的第二条持久记录，静默丢弃但留痕
				if logger != nil {
					logger.Warn("Duplicate sourcing record dropped in merge",
						zap.String("record_id", record.ID),
						zap.String("job_sheet_id", record.JobSheetID),
						zap.String("product_name", record.ProductName),
						zap.String("size", record.Size),
					)
				}
				continue
			}
			rows[i] = row
		} else {
			index[key] = len(rows)
			rows = append(rows, row)
		}
	}

	return rows
}

func recordToRow(record entity.SourcingRecord) RequirementRow {
	return RequirementRow{
		ID:           record.ID,
		JobSheetID:   record.JobSheetID,
		SheetNo:      record.SheetNo,
		ClientName:   record.ClientName,
		ProductName:  record.ProductName,
		Size:         record.Size,
		RequiredQty:  record.RequiredQty,
		OrderedQty:   record.OrderedQty,
		VendorName:   record.VendorName,
		ConfirmedAt:  record.ConfirmedAt,
		ExpectedAt:   record.ExpectedAt,
		PickedUpAt:   record.PickedUpAt,
		DeliveryDate: record.DeliveryDate,
		Remarks:      record.Remarks,
		Status:       record.Status,
		PONumber:     record.PONumber,
		IsVirtual:    false,
	}
}

// 可排序字段类型
type sortKind int

const (
	sortString sortKind = iota
	sortTime
	sortNumber
)

// SortRows 按指定字段排序
// 日期字段按时间戳比较，字符串不区分大小写。
// 缺失值的归位在方向翻转之前处理，升降序都排在最后。
func SortRows(rows []RequirementRow, sortKey, direction string) {
	if sortKey == "" {
		sortKey = "delivery_date"
	}
	desc := strings.EqualFold(direction, "desc")

	sort.SliceStable(rows, func(i, j int) bool {
		missingI := fieldMissing(rows[i], sortKey)
		missingJ := fieldMissing(rows[j], sortKey)
		if missingI || missingJ {
			return !missingI && missingJ
		}

		cmp := compareRows(rows[i], rows[j], sortKey)
		if cmp == 0 {
			return false
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// fieldMissing 判断排序字段是否缺失（nil/零值日期、空字符串）
func fieldMissing(row RequirementRow, sortKey string) bool {
	switch fieldKind(sortKey) {
	case sortTime:
		_, ok := timeField(row, sortKey)
		return !ok
	case sortNumber:
		return false
	default:
		return stringField(row, sortKey) == ""
	}
}

// compareRows 比较两行的非缺失字段值，返回-1/0/1
func compareRows(a, b RequirementRow, sortKey string) int {
	switch fieldKind(sortKey) {
	case sortTime:
		ta, _ := timeField(a, sortKey)
		tb, _ := timeField(b, sortKey)
		if ta.Equal(tb) {
			return 0
		}
		if ta.Before(tb) {
			return -1
		}
		return 1

	case sortNumber:
		na := numberField(a, sortKey)
		nb := numberField(b, sortKey)
		if na == nb {
			return 0
		}
		if na < nb {
			return -1
		}
		return 1

	default:
		return strings.Compare(
			strings.ToLower(stringField(a, sortKey)),
			strings.ToLower(stringField(b, sortKey)),
		)
	}
}

func fieldKind(sortKey string) sortKind {
	switch sortKey {
	case "delivery_date", "confirmed_at", "expected_at", "picked_up_at":
		return sortTime
	case "required_qty", "ordered_qty":
		return sortNumber
	default:
		return sortString
	}
}

func timeField(row RequirementRow, sortKey string) (time.Time, bool) {
	var t *time.Time
	switch sortKey {
	case "delivery_date":
		t = row.DeliveryDate
	case "confirmed_at":
		t = row.ConfirmedAt
	case "expected_at":
		t = row.ExpectedAt
	case "picked_up_at":
		t = row.PickedUpAt
	}
	if t == nil || t.IsZero() {
		return time.Time{}, false
	}
	return *t, true
}

func numberField(row RequirementRow, sortKey string) float64 {
	switch sortKey {
	case "required_qty":
		return row.RequiredQty
	case "ordered_qty":
		return row.OrderedQty
	}
	return 0
}

func stringField(row RequirementRow, sortKey string) string {
	switch sortKey {
	case "sheet_no":
		return row.SheetNo
	case "client_name":
		return row.ClientName
	case "product_name":
		return row.ProductName
	case "size":
		return row.Size
	case "vendor_name":
		return row.VendorName
	case "status":
		return row.Status
	case "po_number":
		return row.PONumber
	}
	return ""
}

// AggregatorService 需求聚合服务
// 合并/排序本身是纯函数，服务只负责取数
type AggregatorService struct {
	jobSheetRepo *repository.JobSheetRepository
	recordRepo   *repository.RecordRepository
	logger       *zap.Logger
}

func NewAggregatorService(jobSheetRepo *repository.JobSheetRepository, recordRepo *repository.RecordRepository, logger *zap.Logger) *AggregatorService {
	return &AggregatorService{
		jobSheetRepo: jobSheetRepo,
		recordRepo:   recordRepo,
		logger:       logger,
	}
}

// ListRequirements 获取合并后的采购需求视图
func (s *AggregatorService) ListRequirements(ctx context.Context, sortKey, direction string) ([]RequirementRow, error) {
	sheets, err := s.jobSheetRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取订单失败: %w", err)
	}
	records, err := s.recordRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取跟进记录失败: %w", err)
	}

	rows := MergeRows(SynthesizeRows(sheets), records, s.logger)
	SortRows(rows, sortKey, direction)
	return rows, nil
}
