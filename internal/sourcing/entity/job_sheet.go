package entity

import "time"

// JobSheet 客户订单（销售侧维护，采购侧只读）
type JobSheet struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	SheetNo      string     `json:"sheet_no" gorm:"size:32;uniqueIndex;not null"`
	ClientName   string     `json:"client_name" gorm:"size:200"`
	CompanyName  string     `json:"company_name" gorm:"size:200"`
	EventName    string     `json:"event_name" gorm:"size:200"`
	DeliveryDate *time.Time `json:"delivery_date"`
	IsDraft      bool       `json:"is_draft" gorm:"default:false"`
	CreatedBy    string     `json:"created_by" gorm:"size:32"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Items []JobSheetItem `json:"items,omitempty" gorm:"foreignKey:JobSheetID"`
}

func (JobSheet) TableName() string {
	return "sourcing_job_sheets"
}

// JobSheetItem 订单行项
type JobSheetItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	JobSheetID  string    `json:"job_sheet_id" gorm:"size:32;not null;index"`
	ProductName string    `json:"product_name" gorm:"size:256;not null"`
	Size        string    `json:"size" gorm:"size:64"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,2);not null"`
	SourceFrom  string    `json:"source_from" gorm:"size:200"` // 采购来源建议
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
}

func (JobSheetItem) TableName() string {
	return "sourcing_job_sheet_items"
}
