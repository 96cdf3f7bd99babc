package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope every JSON endpoint returns, except the gateway
// callback which answers in the gateway's own format.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo carries a machine-readable code alongside the human message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination holds list-response paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Success writes a success envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta:    newMeta(c),
	})
}

// SuccessWithPagination writes a success envelope with paging metadata.
// Page and limit are clamped to sane values so a bad query string cannot
// produce a zero or runaway page size.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = 50
	case limit > 200:
		limit = 200
	}
	meta := newMeta(c)
	meta.Pagination = &Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	}
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Error writes an error envelope with the given API error code.
func Error(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Error:   &ErrorInfo{Code: errCode, Message: message},
		Meta:    newMeta(c),
	})
}

func newMeta(c *gin.Context) Meta {
	id := c.GetString("request_id")
	if id == "" {
		id = uuid.New().String()[:8]
	}
	return Meta{RequestID: id, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// NowISO returns the current time formatted in East Africa Time, the store's
// local zone. Receipts and stock timestamps use this rather than UTC.
func NowISO() string {
	eat := time.FixedZone("EAT", 3*3600)
	return time.Now().In(eat).Format("2006-01-02T15:04:05+03:00")
}
