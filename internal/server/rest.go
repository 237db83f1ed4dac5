package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type analyzeRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleListHistory(c *gin.Context) {
	store := s.scanner.History()
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, historyResponse{
		Items: store.List(ctx),
		Stats: store.Stats(ctx),
	})
}

func (s *Server) handleGetScan(c *gin.Context) {
	record, found := s.scanner.History().Get(c.Request.Context(), c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleDeleteScan(c *gin.Context) {
	id := c.Param("id")
	if err := s.scanner.History().DeleteByID(c.Request.Context(), id); err != nil {
		s.log.WithError(err).WithField("id", id).Error("error deleting from history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete scan"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if err := s.scanner.History().Clear(c.Request.Context()); err != nil {
		s.log.WithError(err).Error("error clearing history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear history"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, s.scanner.Analyze(req.Text))
}
