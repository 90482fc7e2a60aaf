package handler

import (
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
	"github.com/gin-gonic/gin"
)

// RequirementHandler 采购需求处理器
type RequirementHandler struct {
	aggregatorSvc  *service.AggregatorService
	requirementSvc *service.RequirementService
	splitSvc       *service.SplitService
}

func NewRequirementHandler(
	aggregatorSvc *service.AggregatorService,
	requirementSvc *service.RequirementService,
	splitSvc *service.SplitService,
) *RequirementHandler {
	return &RequirementHandler{
		aggregatorSvc:  aggregatorSvc,
		requirementSvc: requirementSvc,
		splitSvc:       splitSvc,
	}
}

// List 采购需求列表
// GET /requirements?sort_key=&sort_direction=
func (h *RequirementHandler) List(c *gin.Context) {
	sortKey := c.Query("sort_key")
	sortDirection := c.DefaultQuery("sort_direction", "asc")

	rows, err := h.aggregatorSvc.ListRequirements(c.Request.Context(), sortKey, sortDirection)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, rows)
}

// Materialize 物化虚拟行为跟进记录
// POST /requirements
func (h *RequirementHandler) Materialize(c *gin.Context) {
	var req struct {
		RowID string `json:"row_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, err := h.requirementSvc.Materialize(c.Request.Context(), req.RowID, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, record)
}

// Update 更新跟进记录/状态流转
// PUT /requirements/:id
func (h *RequirementHandler) Update(c *gin.Context) {
	var input service.UpdateRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, err := h.requirementSvc.UpdateRecord(c.Request.Context(), c.Param("id"), input, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, record)
}

// Split 拆分交付
// POST /requirements/:id/split
func (h *RequirementHandler) Split(c *gin.Context) {
	var input service.SplitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.splitSvc.Split(c.Request.Context(), c.Param("id"), input, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, result)
}
