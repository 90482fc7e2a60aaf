package entity

import "time"

// FulfilledRecord 已完结采购行快照
// 整组到货关单或拆分交付时写入，写入后不再修改业务字段。
// SplitNo 为空表示整行完结；非空表示一次拆分交付，编号全局唯一。
// 同一 (job_sheet_id, product_name, size) 最多存在一条 SplitNo 为空的记录，
// 由部分唯一索引保证（见 entity.Migrate）。
type FulfilledRecord struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	JobSheetID  string  `json:"job_sheet_id" gorm:"size:32;not null;index:idx_fulfilled_records_key"`
	SheetNo     string  `json:"sheet_no" gorm:"size:32"`
	ClientName  string  `json:"client_name" gorm:"size:200"`
	ProductName string  `json:"product_name" gorm:"size:256;not null;index:idx_fulfilled_records_key"`
	Size        string  `json:"size" gorm:"size:64;index:idx_fulfilled_records_key"`
	RequiredQty float64 `json:"required_qty" gorm:"type:decimal(12,2);not null"`
	OrderedQty  float64 `json:"ordered_qty" gorm:"type:decimal(12,2);default:0"`

	VendorName   string     `json:"vendor_name" gorm:"size:200"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	ExpectedAt   *time.Time `json:"expected_at"`
	PickedUpAt   *time.Time `json:"picked_up_at"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Remarks      string     `json:"remarks" gorm:"type:text"`

	SplitNo  *string   `json:"split_no" gorm:"size:32"`
	ClosedAt time.Time `json:"closed_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FulfilledRecord) TableName() string {
	return "sourcing_fulfilled_records"
}

// SplitLog 拆分交付流水
// 每次拆分一条，记录交付时的订购/到货数量，按 (fulfilled_id, created_at) 唯一。
type SplitLog struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	FulfilledID string    `json:"fulfilled_id" gorm:"size:32;not null;uniqueIndex:uniq_split_logs_event"`
	JobSheetID  string    `json:"job_sheet_id" gorm:"size:32;not null;index"`
	OrderedQty  float64   `json:"ordered_qty" gorm:"type:decimal(12,2);not null"`
	ReceivedQty float64   `json:"received_qty" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"uniqueIndex:uniq_split_logs_event"`
}

func (SplitLog) TableName() string {
	return "sourcing_split_logs"
}
