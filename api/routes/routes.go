package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/api/handlers"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/api/middleware"
)

// SetupRoutes wires all claim endpoints.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")

	claims := v1.Group("/claims")
	{
		claims.POST("/process", h.Claim.SubmitClaim)
		claims.POST("/batch", h.Claim.SubmitBatch)
		claims.POST("/triage", h.Claim.TriageClaim)
		claims.GET("/status/:taskId", h.Claim.GetStatus)
		claims.GET("/result/:taskId", h.Claim.GetResult)
		claims.DELETE("/task/:taskId", h.Claim.CancelTask)
	}
}
