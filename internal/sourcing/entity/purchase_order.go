package entity

import "time"

// PurchaseOrder 采购订单
// 从一条 SourcingRecord 编译生成，供应商信息按下单时点快照保存。
type PurchaseOrder struct {
	ID               string     `json:"id" gorm:"primaryKey;size:32"`
	PONumber         string     `json:"po_number" gorm:"size:32;uniqueIndex;not null"`
	SourcingRecordID string     `json:"sourcing_record_id" gorm:"size:32;not null;index"`
	VendorID         string     `json:"vendor_id" gorm:"size:32;not null;index"`
	IssueDate        time.Time  `json:"issue_date"`
	RequiredBy       *time.Time `json:"required_by"`

	// 供应商快照
	VendorCompany string `json:"vendor_company" gorm:"size:200"`
	VendorContact string `json:"vendor_contact" gorm:"size:100"`
	VendorAddress string `json:"vendor_address" gorm:"size:500"`
	VendorPhone   string `json:"vendor_phone" gorm:"size:50"`
	VendorEmail   string `json:"vendor_email" gorm:"size:200"`

	// 金额：小计/税额保留2位，总额取整
	Subtotal   float64 `json:"subtotal" gorm:"type:decimal(15,2);default:0"`
	TaxTotal   float64 `json:"tax_total" gorm:"type:decimal(15,2);default:0"`
	GrandTotal float64 `json:"grand_total" gorm:"type:decimal(15,2);default:0"`

	// 审批建议标记，仅提示不拦截
	NeedsApproval bool `json:"needs_approval" gorm:"default:false"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []POItem `json:"items,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "sourcing_purchase_orders"
}

// POItem 采购订单明细
type POItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	POID        string    `json:"po_id" gorm:"size:32;not null;index"`
	ProductName string    `json:"product_name" gorm:"size:256;not null"`
	ProductCode string    `json:"product_code" gorm:"size:64"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,2);not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:decimal(12,4);default:0"`
	GSTPercent  float64   `json:"gst_percent" gorm:"type:decimal(5,2);default:0"`
	LineTotal   float64   `json:"line_total" gorm:"type:decimal(15,2);default:0"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
}

func (POItem) TableName() string {
	return "sourcing_po_items"
}
