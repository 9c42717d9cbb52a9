package public

import (
	handlershared "github.com/baguri-ro/baguri-api/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getDesignerID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "designer_id")
}
