package waitlist

import (
	"net/http"

	"github.com/akeren/go-waitlist/config/router"
	apperrors "github.com/akeren/go-waitlist/pkg/errors"
	"github.com/akeren/go-waitlist/pkg/flash"
	"github.com/gin-gonic/gin/binding"
)

const (
	indexTemplate = "index"
	indexPath     = "/"
)

func NewWaitlistController(service WaitlistService) *router.RESTController {
	return router.NewRESTController(
		"WaitlistController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, "", indexHandler(service))
			rs.AddPostHandler(c, "", createEntryHandler(service))
			rs.AddDeleteHandler(c, ":email", deleteEntryHandler(service))
		},
	)
}

func indexHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var notice *flash.Notice
		if pending, ok := flash.ReadAndClear(ctx.Writer, ctx.Request); ok {
			notice = &pending
		}

		view := service.IndexContext(ctx.Request.Context(), notice)
		return router.PageResult(http.StatusOK, indexTemplate, view)
	}
}

func createEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req CreateWaitlistEntryRequest
		if err := ctx.ShouldBindWith(&req, binding.FormPost); err != nil {
			if apperrors.HasFieldError(apperrors.FormatValidationErrors(err, &req), "email") {
				logger.Warn("Rejected waitlist signup without email")
				return redirectWithError(MsgEmailRequired)
			}
			logger.Warn("Failed to bind waitlist form", "error", err)
			return redirectWithError(MsgInvalidForm)
		}

		if err := service.AddEntry(ctx.Request.Context(), &req); err != nil {
			if apperrors.GetErrorType(err) == apperrors.ErrorTypeInvalidRequest {
				return redirectWithError(MsgEmailRequired)
			}
			return redirectWithError(MsgInsertFailed)
		}

		return redirectWithSuccess(MsgInserted)
	}
}

func deleteEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		email := ctx.Param("email")

		if _, err := service.DeleteEntry(ctx.Request.Context(), email); err != nil {
			view := service.ErrorContext(ctx.Request.Context(), MsgDeleteFailed)
			return router.PageResult(http.StatusOK, indexTemplate, view)
		}

		return redirectWithSuccess(MsgDeleted)
	}
}

func redirectWithSuccess(message string) *router.ServiceResult {
	notice := flash.Success(message)
	return router.RedirectResult(indexPath, &notice)
}

func redirectWithError(message string) *router.ServiceResult {
	notice := flash.Error(message)
	return router.RedirectResult(indexPath, &notice)
}
