package entity

import "time"

// 采购行状态
const (
	RecordStatusPending  = "pending"  // 待采购
	RecordStatusReceived = "received" // 已到货
	RecordStatusAlert    = "alert"    // 异常预警
)

// SourcingRecord 采购跟进记录
// 对订单行的人工覆盖：同一 (job_sheet_id, product_name, size) 组合唯一对应一条。
// 列表视图中未被覆盖的订单行由聚合器在读取时动态合成，不落库。
type SourcingRecord struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	JobSheetID  string  `json:"job_sheet_id" gorm:"size:32;not null;index:idx_sourcing_records_key"`
	SheetNo     string  `json:"sheet_no" gorm:"size:32"`
	ClientName  string  `json:"client_name" gorm:"size:200"`
	ProductName string  `json:"product_name" gorm:"size:256;not null;index:idx_sourcing_records_key"`
	Size        string  `json:"size" gorm:"size:64;index:idx_sourcing_records_key"`
	RequiredQty float64 `json:"required_qty" gorm:"type:decimal(12,2);not null"`
	OrderedQty  float64 `json:"ordered_qty" gorm:"type:decimal(12,2);default:0"`

	// 供应商跟进信息
	VendorName   string     `json:"vendor_name" gorm:"size:200"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	ExpectedAt   *time.Time `json:"expected_at"`
	PickedUpAt   *time.Time `json:"picked_up_at"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Remarks      string     `json:"remarks" gorm:"type:text"`

	Status string `json:"status" gorm:"size:20;not null;default:pending"`

	// 采购单回写（冗余字段，便于列表快速展示）
	PONumber string  `json:"po_number" gorm:"size:32"`
	POID     *string `json:"po_id" gorm:"size:32"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SourcingRecord) TableName() string {
	return "sourcing_records"
}
