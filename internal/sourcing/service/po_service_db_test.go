package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newPOService(db *gorm.DB) (*service.POService, *service.RequirementService, *repository.Repositories) {
	reqSvc, repos := newRequirementService(db)
	seqSvc := service.NewSequenceService(repos.Sequence, testConfig())
	poSvc := service.NewPOService(db, repos.Record, repos.Product, repos.Vendor, repos.PO, seqSvc, testConfig(), zap.NewNop())
	return poSvc, reqSvc, repos
}

func TestGeneratePO(t *testing.T) {
	db := testutil.SetupTestDB(t)
	poSvc, reqSvc, repos := newPOService(db)
	ctx := context.Background()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt Blue", Size: "M", Quantity: 2},
	})
	testutil.SeedVendor(t, db, "vendor-1", "Textile Works")
	testutil.SeedProduct(t, db, "prod-1", "TS-100", "Polo Shirt Blue", 100, 18)

	record, err := reqSvc.Materialize(ctx, service.VirtualRowID("js-001", 0), "user-1")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	po, err := poSvc.GeneratePO(ctx, record.ID, service.GeneratePOInput{VendorID: "vendor-1"}, "user-1")
	if err != nil {
		t.Fatalf("GeneratePO failed: %v", err)
	}

	if !strings.HasPrefix(po.PONumber, "NIMO-") {
		t.Errorf("PO number should carry org prefix, got %s", po.PONumber)
	}
	if po.VendorCompany != "Textile Works" {
		t.Errorf("vendor snapshot missing, got %s", po.VendorCompany)
	}
	if len(po.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(po.Items))
	}
	// 名称模糊匹配到产品参考数据，单价/税率生效
	if po.Items[0].UnitPrice != 100 || po.Items[0].GSTPercent != 18 {
		t.Errorf("price resolution failed: price=%v gst=%v", po.Items[0].UnitPrice, po.Items[0].GSTPercent)
	}
	if po.Subtotal != 200.00 || po.TaxTotal != 36.00 || po.GrandTotal != 236 {
		t.Errorf("totals wrong: %v / %v / %v", po.Subtotal, po.TaxTotal, po.GrandTotal)
	}
	// 首单供应商，金额不大也要建议审批
	if !po.NeedsApproval {
		t.Error("first order for vendor should be flagged for approval")
	}

	// 单号回写到来源记录
	updated, err := repos.Record.FindByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if updated.PONumber != po.PONumber {
		t.Errorf("PO number not written back, got %q", updated.PONumber)
	}
	if updated.POID == nil || *updated.POID != po.ID {
		t.Errorf("PO reference not written back, got %v", updated.POID)
	}
}

func TestGeneratePORejectsVirtualID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	poSvc, _, _ := newPOService(db)

	_, err := poSvc.GeneratePO(context.Background(), service.VirtualRowID("js-001", 0),
		service.GeneratePOInput{VendorID: "vendor-1"}, "user-1")
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("virtual row ID must be rejected, got %v", err)
	}
}

func TestGeneratePOMissingVendor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	poSvc, reqSvc, _ := newPOService(db)
	ctx := context.Background()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 2},
	})
	record, err := reqSvc.Materialize(ctx, service.VirtualRowID("js-001", 0), "user-1")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	_, err = poSvc.GeneratePO(ctx, record.ID, service.GeneratePOInput{VendorID: "no-such-vendor"}, "user-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing vendor should yield not-found, got %v", err)
	}
}

func TestGeneratePOUnknownProductDefaultsToZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	poSvc, reqSvc, _ := newPOService(db)
	ctx := context.Background()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Mystery Item", Size: "", Quantity: 5},
	})
	testutil.SeedVendor(t, db, "vendor-1", "Textile Works")

	record, err := reqSvc.Materialize(ctx, service.VirtualRowID("js-001", 0), "user-1")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	po, err := poSvc.GeneratePO(ctx, record.ID, service.GeneratePOInput{VendorID: "vendor-1"}, "user-1")
	if err != nil {
		t.Fatalf("GeneratePO must not fail on unknown product: %v", err)
	}
	if po.Items[0].UnitPrice != 0 || po.Items[0].GSTPercent != 0 {
		t.Errorf("unknown product should default to zero price/gst: %+v", po.Items[0])
	}
	if po.GrandTotal != 0 {
		t.Errorf("grand total should be 0, got %v", po.GrandTotal)
	}
}

func TestDeletePOReversesWriteBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	poSvc, reqSvc, repos := newPOService(db)
	ctx := context.Background()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 2},
	})
	testutil.SeedVendor(t, db, "vendor-1", "Textile Works")

	record, err := reqSvc.Materialize(ctx, service.VirtualRowID("js-001", 0), "user-1")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	po, err := poSvc.GeneratePO(ctx, record.ID, service.GeneratePOInput{VendorID: "vendor-1"}, "user-1")
	if err != nil {
		t.Fatalf("GeneratePO failed: %v", err)
	}

	if err := poSvc.DeletePO(ctx, po.ID); err != nil {
		t.Fatalf("DeletePO failed: %v", err)
	}

	updated, err := repos.Record.FindByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if updated.PONumber != "" || updated.POID != nil {
		t.Errorf("write-back not reversed: po_number=%q po_id=%v", updated.PONumber, updated.POID)
	}

	if _, err := poSvc.GetPO(ctx, po.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("deleted PO should be gone, got %v", err)
	}
}

func TestPONumbersAreSequential(t *testing.T) {
	db := testutil.SetupTestDB(t)
	poSvc, reqSvc, _ := newPOService(db)
	ctx := context.Background()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 2},
		{ProductName: "Cap", Size: "", Quantity: 5},
	})
	testutil.SeedVendor(t, db, "vendor-1", "Textile Works")

	numbers := make(map[string]bool)
	for i := 0; i < 2; i++ {
		record, err := reqSvc.Materialize(ctx, service.VirtualRowID("js-001", i), "user-1")
		if err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}
		po, err := poSvc.GeneratePO(ctx, record.ID, service.GeneratePOInput{VendorID: "vendor-1"}, "user-1")
		if err != nil {
			t.Fatalf("GeneratePO failed: %v", err)
		}
		if numbers[po.PONumber] {
			t.Errorf("duplicate PO number minted: %s", po.PONumber)
		}
		numbers[po.PONumber] = true
	}
}
