package entity

import "gorm.io/gorm"

// Migrate 自动迁移所有采购表，并补建AutoMigrate无法表达的部分唯一索引
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// 订单（只读来源）
		&JobSheet{},
		&JobSheetItem{},

		// 采购跟进
		&SourcingRecord{},
		&FulfilledRecord{},
		&SplitLog{},

		// 序列
		&SequenceCounter{},

		// 采购订单
		&PurchaseOrder{},
		&POItem{},

		// 参考数据
		&Product{},
		&Vendor{},
		&User{},
	); err != nil {
		return err
	}

	// 同一订单行最多一条非拆分完结记录；拆分编号全局唯一
	indexSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_fulfilled_records_nonsplit
			ON sourcing_fulfilled_records(job_sheet_id, product_name, size)
			WHERE split_no IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_fulfilled_records_split_no
			ON sourcing_fulfilled_records(split_no)
			WHERE split_no IS NOT NULL`,
	}
	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}
