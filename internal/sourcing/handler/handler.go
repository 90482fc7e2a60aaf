package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
	"github.com/gin-gonic/gin"
)

// Handlers 采购处理器集合
type Handlers struct {
	Requirement *RequirementHandler
	PO          *POHandler
	Reference   *ReferenceHandler
}

// NewHandlers 创建采购处理器集合
func NewHandlers(
	aggregatorSvc *service.AggregatorService,
	requirementSvc *service.RequirementService,
	splitSvc *service.SplitService,
	poSvc *service.POService,
	referenceSvc *service.ReferenceService,
) *Handlers {
	return &Handlers{
		Requirement: NewRequirementHandler(aggregatorSvc, requirementSvc, splitSvc),
		PO:          NewPOHandler(poSvc),
		Reference:   NewReferenceHandler(referenceSvc),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError 按错误类型映射响应
// 校验错误原样透出；未找到返回404；其余一律泛化为500，细节只进日志
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "record not found")
	default:
		InternalError(c, "internal error")
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
