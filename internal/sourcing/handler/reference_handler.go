package handler

import (
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
	"github.com/gin-gonic/gin"
)

// ReferenceHandler 只读参考数据处理器：订单、供应商、完结记录
type ReferenceHandler struct {
	referenceSvc *service.ReferenceService
}

func NewReferenceHandler(referenceSvc *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceSvc: referenceSvc}
}

// ListJobSheets 订单列表
// GET /job-sheets?search=&is_draft=
func (h *ReferenceHandler) ListJobSheets(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search":   c.Query("search"),
		"is_draft": c.Query("is_draft"),
	}

	sheets, total, err := h.referenceSvc.ListJobSheets(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: sheets,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: (int(total) + pageSize - 1) / pageSize,
		},
	})
}

// GetJobSheet 订单详情
// GET /job-sheets/:id
func (h *ReferenceHandler) GetJobSheet(c *gin.Context) {
	sheet, err := h.referenceSvc.GetJobSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sheet)
}

// ListVendors 供应商列表
// GET /vendors?search=
func (h *ReferenceHandler) ListVendors(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search": c.Query("search"),
	}

	vendors, total, err := h.referenceSvc.ListVendors(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: vendors,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: (int(total) + pageSize - 1) / pageSize,
		},
	})
}

// GetVendor 供应商详情
// GET /vendors/:id
func (h *ReferenceHandler) GetVendor(c *gin.Context) {
	vendor, err := h.referenceSvc.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, vendor)
}

// ListFulfilled 完结记录列表
// GET /fulfilled?job_sheet_id=&split=&search=
func (h *ReferenceHandler) ListFulfilled(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"job_sheet_id": c.Query("job_sheet_id"),
		"split":        c.Query("split"),
		"search":       c.Query("search"),
	}

	records, total, err := h.referenceSvc.ListFulfilled(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: records,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: (int(total) + pageSize - 1) / pageSize,
		},
	})
}

// GetSplitLogs 完结记录的拆分流水
// GET /fulfilled/:id/split-logs
func (h *ReferenceHandler) GetSplitLogs(c *gin.Context) {
	logs, err := h.referenceSvc.GetSplitLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, logs)
}
