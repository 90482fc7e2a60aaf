package entity

import "time"

// Product 产品参考数据（价格/税率查询用，采购侧只读）
type Product struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	Code       string    `json:"code" gorm:"size:64;uniqueIndex;not null"`
	AltCode    string    `json:"alt_code" gorm:"size:64;index"` // 备用编码（老系统编号）
	Name       string    `json:"name" gorm:"size:256;not null"`
	UnitCost   float64   `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	ListPrice  float64   `json:"list_price" gorm:"type:decimal(12,4);default:0"`
	GSTPercent float64   `json:"gst_percent" gorm:"type:decimal(5,2);default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "sourcing_products"
}
