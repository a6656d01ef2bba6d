package router

import (
	"github.com/akeren/go-waitlist/pkg/flash"
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

// ServiceResult is what a handler returns. A non-empty Location produces a redirect carrying
// Flash, a non-empty Template renders HTML with Data, anything else is written as JSON.
type ServiceResult struct {
	StatusCode int           `json:"code"`
	Data       any           `json:"data"`
	Message    string        `json:"message"`
	Template   string        `json:"-"`
	Location   string        `json:"-"`
	Flash      *flash.Notice `json:"-"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() gin.H {
	return gin.H{
		"code":    result.StatusCode,
		"data":    result.Data,
		"message": result.Message,
	}
}

func (result *ServiceResult) IsRedirect() bool {
	return result.Location != ""
}

func (result *ServiceResult) IsPage() bool {
	return result.Template != ""
}

func (result *ServiceResult) IsSuccess() bool {
	return result.StatusCode >= 200 && result.StatusCode < 400
}

func (result *ServiceResult) IsError() bool {
	return result.StatusCode >= 400
}
