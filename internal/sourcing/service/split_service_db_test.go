package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/testutil"
	"go.uber.org/zap"
)

func TestSplitArithmetic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reqSvc, repos := newRequirementService(db)
	seqSvc := service.NewSequenceService(repos.Sequence, testConfig())
	splitSvc := service.NewSplitService(db, repos.Record, seqSvc, reqSvc, zap.NewNop())
	ctx := context.Background()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 10},
	})

	// 对虚拟行直接拆分，应先自动物化
	result, err := splitSvc.Split(ctx, service.VirtualRowID("js-001", 0), service.SplitInput{OrderedQty: 3}, "user-1")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if result.Fulfilled.RequiredQty != 3 || result.Fulfilled.OrderedQty != 3 {
		t.Errorf("fulfilled portion should be required=ordered=3, got required=%v ordered=%v",
			result.Fulfilled.RequiredQty, result.Fulfilled.OrderedQty)
	}
	if result.Fulfilled.SplitNo == nil || *result.Fulfilled.SplitNo == "" {
		t.Error("split delivery must carry a split number")
	}
	if result.Remainder.RequiredQty != 7 {
		t.Errorf("remainder required should be 7, got %v", result.Remainder.RequiredQty)
	}
	if result.Remainder.OrderedQty != 0 {
		t.Errorf("remainder ordered should reset to 0, got %v", result.Remainder.OrderedQty)
	}
	if result.Remainder.Status != entity.RecordStatusPending {
		t.Errorf("remainder should re-enter pending, got %s", result.Remainder.Status)
	}

	// 拆分流水落库
	logs, err := repos.Fulfilled.FindSplitLogs(ctx, result.Fulfilled.ID)
	if err != nil {
		t.Fatalf("FindSplitLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 split log, got %d", len(logs))
	}
	if logs[0].OrderedQty != 3 || logs[0].ReceivedQty != 3 {
		t.Errorf("split log quantities wrong: %+v", logs[0])
	}
}

func TestSplitAccumulates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reqSvc, repos := newRequirementService(db)
	seqSvc := service.NewSequenceService(repos.Sequence, testConfig())
	splitSvc := service.NewSplitService(db, repos.Record, seqSvc, reqSvc, zap.NewNop())
	ctx := context.Background()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 10},
	})

	first, err := splitSvc.Split(ctx, service.VirtualRowID("js-001", 0), service.SplitInput{OrderedQty: 3}, "user-1")
	if err != nil {
		t.Fatalf("first split failed: %v", err)
	}
	second, err := splitSvc.Split(ctx, first.Remainder.ID, service.SplitInput{OrderedQty: 2}, "user-1")
	if err != nil {
		t.Fatalf("second split failed: %v", err)
	}

	if *first.Fulfilled.SplitNo == *second.Fulfilled.SplitNo {
		t.Errorf("split numbers must be distinct, both got %s", *first.Fulfilled.SplitNo)
	}
	if second.Remainder.RequiredQty != 5 {
		t.Errorf("remainder after two splits should be 5, got %v", second.Remainder.RequiredQty)
	}

	fulfilled, err := repos.Fulfilled.FindByJobSheet(ctx, "js-001")
	if err != nil {
		t.Fatalf("FindByJobSheet failed: %v", err)
	}
	if len(fulfilled) != 2 {
		t.Errorf("expected 2 accumulated fulfilled records, got %d", len(fulfilled))
	}
}

func TestSplitRejectsFullQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reqSvc, repos := newRequirementService(db)
	seqSvc := service.NewSequenceService(repos.Sequence, testConfig())
	splitSvc := service.NewSplitService(db, repos.Record, seqSvc, reqSvc, zap.NewNop())
	ctx := context.Background()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 10},
	})

	// 等于需求量不是拆分，应走正常到货流程
	_, err := splitSvc.Split(ctx, service.VirtualRowID("js-001", 0), service.SplitInput{OrderedQty: 10}, "user-1")
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected validation error for full-quantity split, got %v", err)
	}

	_, err = splitSvc.Split(ctx, service.VirtualRowID("js-001", 0), service.SplitInput{OrderedQty: 0}, "user-1")
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected validation error for zero-quantity split, got %v", err)
	}
}
