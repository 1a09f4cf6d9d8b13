package settlement

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/middleware"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/utils"
)

type settlementHandler struct {
	engine *Engine
}

func RegisterRoutes(rg *gin.RouterGroup, engine *Engine) {
	handler := settlementHandler{engine: engine}

	routes := rg.Group("/game")
	routes.POST("/:id/settle", middleware.VerifyAuthToken, handler.settle)
}

func (sh *settlementHandler) settle(c *gin.Context) {
	body := SettleRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	response, problem := sh.engine.Settle(c.Request.Context(), c.Param("id"), utils.GetUserFid(c), body)
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	c.JSON(http.StatusOK, response)
}
