// internal/handler/routes.go
package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under v1.
func RegisterRoutes(v1 *gin.RouterGroup, analysis *AnalysisHandler, flags *FlagHandler) {
	analyze := v1.Group("/analyze")
	{
		analyze.POST("/review", analysis.AnalyzeReview)
	}
	v1.GET("/products/:product_id/reviews/analysis", analysis.AnalyzeProductReviews)

	monitor := v1.Group("/monitor")
	{
		monitor.POST("/step", analysis.MonitorStep)
		monitor.GET("/:product_id", analysis.GetSession)
	}

	v1.POST("/listings/submit", analysis.SubmitListing)
	v1.POST("/verify", analysis.Verify)

	f := v1.Group("/flags")
	{
		f.GET("", flags.ListFlags)
		f.POST("", flags.EscalateFlag)
		f.GET("/stats/severity", flags.SeverityStats)
		f.GET("/stats/trends", flags.TrendStats)
		f.GET("/:id", flags.GetFlag)
		f.POST("/:id/investigate", flags.Investigate)
		f.POST("/:id/actions", flags.ApplyAction)
		f.POST("/:id/notes", flags.AddNote)
	}
}
