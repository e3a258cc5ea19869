package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Check reports the health of one dependency.
type Check func(ctx context.Context) error

type Options struct {
	// Development adds internal error detail to 500 responses.
	Development bool
	Checks      map[string]Check
}

// Handler serves the HTTP API on top of the service layer.
type Handler struct {
	svc    *services.Services
	tokens *middleware.Tokens
	dev    bool
	checks map[string]Check
}

func New(svc *services.Services, tokens *middleware.Tokens, opts Options) *Handler {
	return &Handler{svc: svc, tokens: tokens, dev: opts.Development, checks: opts.Checks}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func done(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func list(c *gin.Context, data any, p services.Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": p})
}

// fail writes err in the common error envelope. Errors of unknown kind are
// logged and reported as "Server error".
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	body := gin.H{"success": false}

	var ae *apperr.Error
	switch {
	case status == http.StatusInternalServerError:
		_ = c.Error(err)
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		body["message"] = "Server error"
		if h.dev {
			body["error"] = err.Error()
		}
	case errors.As(err, &ae):
		body["message"] = ae.Message
		if len(ae.Fields) > 0 {
			body["errors"] = ae.Fields
		}
		for k, v := range ae.Details {
			body[k] = v
		}
	default:
		body["message"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// bind decodes the JSON body into req and runs the binding rules.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body").WithFields(apperr.FieldError{Field: "body", Message: err.Error()})
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return apperr.Validation("Validation failed").WithFields(fields...)
}

// fieldPath drops the request struct name from the namespace, so
// "PlaceOrderRequest.deliveryAddress.street" becomes "deliveryAddress.street".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind().String() == "string" {
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "cuisine":
		return "Invalid cuisine type"
	case "category":
		return "Invalid category"
	case "paymentmethod":
		return "Invalid payment method"
	case "orderstatus":
		return "Invalid status"
	case "hhmm":
		return fe.Field() + " must be a time in HH:MM format"
	}
	return fe.Field() + " is invalid"
}

// idParam reads a positive numeric path parameter.
func (h *Handler) idParam(c *gin.Context, name, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.fail(c, apperr.NotFound("%s not found", what))
		return 0, false
	}
	return uint(id), true
}

func queryPage(c *gin.Context) services.Page {
	return services.Page{Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// queryBool returns nil when the parameter is absent or not a boolean.
func queryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}

func queryBoolDefault(c *gin.Context, key string, def bool) bool {
	if v := queryBool(c, key); v != nil {
		return *v
	}
	return def
}

func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
