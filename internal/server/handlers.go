package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/correction"
	"github.com/oukeidos/tamilfix/internal/version"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Tamil AI Writing Assistant API",
		"status":  "running",
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "API is running",
	})
}

// testGeminiHandler always answers 200; the outcome is in the body.
func (s *Server) testGeminiHandler(c *gin.Context) {
	result, err := s.svc.SmokeTest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "error",
			"message": "Gemini API test failed: " + apperrors.PublicMessage(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Gemini API is working",
		"test_result": result,
	})
}

func (s *Server) processTextHandler(c *gin.Context) {
	var req correction.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, detailResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := s.svc.Process(c.Request.Context(), req)
	if err != nil {
		if apperrors.Is(err, apperrors.KindInvalidInput) {
			c.JSON(http.StatusBadRequest, detailResponse{Detail: apperrors.PublicMessage(err)})
			return
		}
		c.JSON(http.StatusInternalServerError, detailResponse{Detail: "Error processing text: " + apperrors.PublicMessage(err)})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) operationsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operations": s.svc.Operations()})
}

func (s *Server) versionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}
