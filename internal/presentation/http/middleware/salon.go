package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/response"
)

// RequireSalon ensures the request carries a salon context
func RequireSalon() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := infraRepo.GetSalonID(c.Request.Context()); !ok {
			response.BadRequest(c, "Salon context required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSalonID retrieves the salon ID from gin context
func GetSalonID(c *gin.Context) uuid.UUID {
	salonID, exists := c.Get("salon_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := salonID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
