package handler

import (
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
	"github.com/gin-gonic/gin"
)

// POHandler 采购订单处理器
type POHandler struct {
	poSvc *service.POService
}

func NewPOHandler(poSvc *service.POService) *POHandler {
	return &POHandler{poSvc: poSvc}
}

// Generate 从跟进记录生成采购订单
// POST /purchase-orders/from-requirement/:id
func (h *POHandler) Generate(c *gin.Context) {
	var input service.GeneratePOInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	po, err := h.poSvc.GeneratePO(c.Request.Context(), c.Param("id"), input, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, po)
}

// List 采购订单列表
// GET /purchase-orders?vendor_id=&search=
func (h *POHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"vendor_id": c.Query("vendor_id"),
		"search":    c.Query("search"),
	}

	pos, total, err := h.poSvc.ListPOs(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: pos,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: (int(total) + pageSize - 1) / pageSize,
		},
	})
}

// Get 采购订单详情
// GET /purchase-orders/:id
func (h *POHandler) Get(c *gin.Context) {
	po, err := h.poSvc.GetPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, po)
}

// Delete 删除采购订单
// DELETE /purchase-orders/:id
func (h *POHandler) Delete(c *gin.Context) {
	if err := h.poSvc.DeletePO(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
