package buyin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/middleware"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/utils"
)

type buyinHandler struct {
	coordinator *Coordinator
}

func RegisterRoutes(rg *gin.RouterGroup, coordinator *Coordinator) {
	handler := buyinHandler{coordinator: coordinator}

	routes := rg.Group("/game")
	routes.POST("/:id/buyin", middleware.VerifyAuthToken, handler.buyIn)
}

// BuyInResponse is returned for both full and partial commits; the outcome
// field disambiguates, and partial commits additionally answer 202.
type BuyInResponse struct {
	Outcome       Outcome         `json:"outcome"`
	Player        any             `json:"player,omitempty"`
	DepositTxHash string          `json:"depositTxHash,omitempty"`
	Problem       *reject.Problem `json:"problem,omitempty"`
}

func (bh *buyinHandler) buyIn(c *gin.Context) {
	game, err := bh.coordinator.Store.GameById(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ledger.ErrNotFound) {
		problem := reject.NewProblem().
			WithTitle("Game not found").
			WithStatus(http.StatusNotFound).
			WithCode("error.game.not-found").
			Build()
		c.JSON(problem.Status, problem)
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, reject.UnexpectedProblem(err))
		return
	}

	result := bh.coordinator.Execute(c.Request.Context(), game, utils.GetUserFid(c))

	switch result.Outcome {
	case OutcomeCommitted:
		c.JSON(http.StatusOK, BuyInResponse{
			Outcome:       result.Outcome,
			Player:        result.Player,
			DepositTxHash: result.DepositTxHash,
		})
	case OutcomePartiallyCommitted:
		problem := result.Failure.Problem()
		c.JSON(http.StatusAccepted, BuyInResponse{
			Outcome:       result.Outcome,
			Player:        result.Player,
			DepositTxHash: result.DepositTxHash,
			Problem:       &problem,
		})
	default:
		problem := result.Failure.Problem()
		c.JSON(problem.Status, problem)
	}
}
