package handlers

import (
	"log"
	"net/http"
	"strconv"

	"coffee-quality-api/models"
	"coffee-quality-api/services"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	store services.HistoryStore
}

func NewHistoryHandler(store services.HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	p := ParsePagination(c)

	rows, err := h.store.List(c.Request.Context(), services.HistoryQuery{Limit: p.Limit + 1, BeforeSeq: p.BeforeSeq})
	if err != nil {
		log.Printf("history list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history query failed"})
		return
	}

	if rows == nil {
		rows = []models.HistoryRecord{}
	}

	hasMore := len(rows) > p.Limit
	if hasMore {
		rows = rows[:p.Limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		nextCursor = strconv.FormatInt(rows[len(rows)-1].Seq, 10)
	}

	c.JSON(http.StatusOK, CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore})
}
