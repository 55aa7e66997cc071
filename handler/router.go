package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter registers every route on a gin engine.
func NewRouter(loanHandler *LoanHandler, resultHandler *ResultHandler, maxMultipartMemory int64) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = maxMultipartMemory

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Loan OCR Extraction",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		loan := api.Group("/loan")
		{
			loan.POST("/extract", loanHandler.ExtractFile)
			loan.POST("/extract-text", loanHandler.ExtractText)
		}

		results := api.Group("/results")
		{
			results.GET("", resultHandler.ListResults)
			results.GET("/export", resultHandler.ExportResults)
			results.GET("/:id", resultHandler.GetResult)
		}
	}

	return router
}
