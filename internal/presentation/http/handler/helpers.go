package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/pkg/apperror"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	return c.GetString("user_email")
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) string {
	return c.GetString("user_role")
}

// GetUserPermissions extracts the user permissions from the Gin context
func GetUserPermissions(c *gin.Context) []string {
	permissions, exists := c.Get("user_permissions")
	if !exists {
		return nil
	}
	list, _ := permissions.([]string)
	return list
}

func cartActor(c *gin.Context) (service.CartActor, bool) {
	userID := GetUserID(c)
	if userID == nil {
		return service.CartActor{}, false
	}
	return service.CartActor{UserID: *userID, Role: GetUserRole(c)}, true
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(page, perPage int) *pagination.PaginationParams {
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

func queryPage(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return pageParams(page, perPage)
}

func optionalUUID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: field, Message: "must be a valid UUID"}})
	}
	return &id, nil
}

// dateBounds turns inclusive YYYY-MM-DD filters into a half-open UTC range
func dateBounds(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return nil, nil, apperror.NewValidationError([]apperror.FieldError{{Field: "from", Message: "must be YYYY-MM-DD"}})
		}
		start = &t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return nil, nil, apperror.NewValidationError([]apperror.FieldError{{Field: "to", Message: "must be YYYY-MM-DD"}})
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	return start, end, nil
}
