package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/testutil"
)

func TestSequenceServiceFormats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewSequenceService(repos.Sequence, testConfig())
	ctx := context.Background()

	year := time.Now().Format("2006")

	poNumber, err := svc.PONumber(ctx)
	if err != nil {
		t.Fatalf("PONumber failed: %v", err)
	}
	if want := fmt.Sprintf("NIMO-%s-001", year); poNumber != want {
		t.Errorf("expected %s, got %s", want, poNumber)
	}

	ref, err := svc.ReferenceCode(ctx)
	if err != nil {
		t.Fatalf("ReferenceCode failed: %v", err)
	}
	if ref != "REF0001" {
		t.Errorf("expected REF0001, got %s", ref)
	}

	split, err := svc.SplitNumber(ctx)
	if err != nil {
		t.Fatalf("SplitNumber failed: %v", err)
	}
	if split != "SPL0001" {
		t.Errorf("expected SPL0001, got %s", split)
	}

	catalog, err := svc.CatalogNumber(ctx)
	if err != nil {
		t.Fatalf("CatalogNumber failed: %v", err)
	}
	if catalog != 9000 {
		t.Errorf("first catalog number must hit the floor, got %d", catalog)
	}
	catalog, err = svc.CatalogNumber(ctx)
	if err != nil {
		t.Fatalf("CatalogNumber failed: %v", err)
	}
	if catalog != 9001 {
		t.Errorf("expected 9001 after floor, got %d", catalog)
	}
}
