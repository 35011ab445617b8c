package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/invoice-ingest-backend/internal/http/response"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler { return &UserHandler{} }

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"me": p})
}
