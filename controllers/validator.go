package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "restaurant-service/common/errors"
	"restaurant-service/models"
	"restaurant-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// MaxPageNumber caps the page query parameter.
const MaxPageNumber = 1000000

// RequestValidator parses and validates request input.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// BindJSON decodes the body into dst and checks its validate tags.
func (rv *RequestValidator) BindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Validation("Invalid request body: " + err.Error())
	}
	if err := rv.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperrors.Validation(fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}

// ParseID reads a positive integer path parameter.
func (rv *RequestValidator) ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid " + name)
	}
	return uint(id), nil
}

// ParsePagination validates and parses the page and limit query parameters.
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, apperrors.Validation("invalid page number")
	}
	if page > MaxPageNumber {
		page = MaxPageNumber
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))
	if err != nil || limit < 1 {
		return 0, 0, apperrors.Validation("invalid page size")
	}
	if limit > services.MaxPageSize {
		limit = services.MaxPageSize
	}
	return page, limit, nil
}

// ParseMenuFilter reads the menu listing query parameters.
func (rv *RequestValidator) ParseMenuFilter(c *gin.Context) (models.MenuItemFilter, error) {
	page, limit, err := rv.ParsePagination(c)
	if err != nil {
		return models.MenuItemFilter{}, err
	}

	filter := models.MenuItemFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Ordering: strings.ToLower(strings.TrimSpace(c.Query("ordering"))),
		Page:     page,
		Limit:    limit,
	}
	if _, ok := models.MenuItemOrdering[filter.Ordering]; !ok {
		return models.MenuItemFilter{}, apperrors.Validation("invalid ordering value")
	}

	if raw := strings.TrimSpace(c.Query("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return models.MenuItemFilter{}, apperrors.Validation("invalid boolean value for 'featured'")
		}
		filter.Featured = &featured
	}
	return filter, nil
}

// pageMeta is the paging block attached to every list response.
func pageMeta(page, limit int, total int64) gin.H {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return gin.H{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
		"has_more":    total > int64(page*limit),
	}
}
