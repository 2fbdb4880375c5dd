package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/fneseed/internal/app/controllers"
)

// SetupRouter configures the report viewer routes
func SetupRouter(router *gin.Engine, reportController *controllers.ReportController) {
	router.GET("/health", controllers.Health)

	v1 := router.Group("/api/v1")

	reports := v1.Group("/reports")
	{
		reports.GET("", reportController.ListReports)
		// Registered before /:name so "latest" is never read as a file name
		reports.GET("/latest", reportController.GetLatestReport)
		reports.GET("/:name", reportController.GetReport)
	}
}
