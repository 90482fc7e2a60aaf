package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/handler"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	cfg := testutil.TestAppConfig()
	seqSvc := service.NewSequenceService(repos.Sequence, cfg)
	aggregatorSvc := service.NewAggregatorService(repos.JobSheet, repos.Record, zap.NewNop())
	requirementSvc := service.NewRequirementService(db, repos.JobSheet, repos.Record, repos.User, seqSvc, nil, zap.NewNop())
	splitSvc := service.NewSplitService(db, repos.Record, seqSvc, requirementSvc, zap.NewNop())
	poSvc := service.NewPOService(db, repos.Record, repos.Product, repos.Vendor, repos.PO, seqSvc, cfg, zap.NewNop())
	referenceSvc := service.NewReferenceService(repos.JobSheet, repos.Vendor, repos.Fulfilled)

	handlers := handler.NewHandlers(aggregatorSvc, requirementSvc, splitSvc, poSvc, referenceSvc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1/sourcing")
	api.GET("/requirements", handlers.Requirement.List)
	api.POST("/requirements", handlers.Requirement.Materialize)
	api.PUT("/requirements/:id", handlers.Requirement.Update)
	api.POST("/requirements/:id/split", handlers.Requirement.Split)
	api.POST("/purchase-orders/from-requirement/:id", handlers.PO.Generate)
	api.DELETE("/purchase-orders/:id", handlers.PO.Delete)

	return r, db
}

func TestListRequirementsUnauthorized(t *testing.T) {
	r, _ := setupEnv(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/sourcing/requirements", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestListRequirements(t *testing.T) {
	r, db := setupEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 50},
		{ProductName: "Cap", Size: "", Quantity: 100},
	})

	w := testutil.DoRequest(r, "GET", "/api/v1/sourcing/requirements", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	rows, ok := resp["data"].([]interface{})
	if !ok {
		t.Fatalf("unexpected response shape: %v", resp)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 requirement rows, got %d", len(rows))
	}
	first := rows[0].(map[string]interface{})
	if first["is_virtual"] != true {
		t.Errorf("rows without overrides should be virtual: %v", first)
	}
}

func TestUpdateRequirementFlow(t *testing.T) {
	r, db := setupEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 50},
	})

	rowID := service.VirtualRowID("js-001", 0)
	w := testutil.DoRequest(r, "PUT", "/api/v1/sourcing/requirements/"+rowID, map[string]interface{}{
		"vendor_name": "Textile Works",
		"ordered_qty": 50,
		"status":      "received",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != "received" {
		t.Errorf("expected received status, got %v", data["status"])
	}
	if data["is_virtual"] == true {
		t.Error("updated row must be persisted")
	}

	// 单行订单整组到货，应已生成完结记录
	var count int64
	db.Model(&entity.FulfilledRecord{}).Where("job_sheet_id = ?", "js-001").Count(&count)
	if count != 1 {
		t.Errorf("expected 1 fulfilled record after closure, got %d", count)
	}
}

func TestUpdateRequirementInvalidStatus(t *testing.T) {
	r, db := setupEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 50},
	})

	rowID := service.VirtualRowID("js-001", 0)
	w := testutil.DoRequest(r, "PUT", "/api/v1/sourcing/requirements/"+rowID, map[string]interface{}{
		"status": "shipped",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSplitEndpoint(t *testing.T) {
	r, db := setupEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 10},
	})

	rowID := service.VirtualRowID("js-001", 0)
	w := testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/sourcing/requirements/%s/split", rowID),
		map[string]interface{}{"ordered_qty": 3}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	remainder := data["remainder"].(map[string]interface{})
	if remainder["required_qty"].(float64) != 7 {
		t.Errorf("expected remainder 7, got %v", remainder["required_qty"])
	}

	// 超量拆分被拒
	w = testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/sourcing/requirements/%s/split", rowID),
		map[string]interface{}{"ordered_qty": 7}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for full-quantity split, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGeneratePOEndpointRejectsVirtual(t *testing.T) {
	r, db := setupEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJobSheet(t, db, "js-001", "JS-001", []entity.JobSheetItem{
		{ProductName: "Polo Shirt", Size: "M", Quantity: 10},
	})
	testutil.SeedVendor(t, db, "vendor-1", "Textile Works")

	rowID := service.VirtualRowID("js-001", 0)
	w := testutil.DoRequest(r, "POST", "/api/v1/sourcing/purchase-orders/from-requirement/"+rowID,
		map[string]interface{}{"vendor_id": "vendor-1"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for virtual row, got %d: %s", w.Code, w.Body.String())
	}
}
