package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 采购仓库集合
type Repositories struct {
	JobSheet  *JobSheetRepository
	Record    *RecordRepository
	Fulfilled *FulfilledRepository
	Sequence  *SequenceRepository
	PO        *PORepository
	Product   *ProductRepository
	Vendor    *VendorRepository
	User      *UserRepository
}

// NewRepositories 创建采购仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		JobSheet:  NewJobSheetRepository(db),
		Record:    NewRecordRepository(db),
		Fulfilled: NewFulfilledRepository(db),
		Sequence:  NewSequenceRepository(db),
		PO:        NewPORepository(db),
		Product:   NewProductRepository(db),
		Vendor:    NewVendorRepository(db),
		User:      NewUserRepository(db),
	}
}
