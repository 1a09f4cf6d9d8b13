package game

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/middleware"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/utils"
)

type gameHandler struct {
	gameService gameService
}

func RegisterRoutes(rg *gin.RouterGroup, store ledger.Store, escrowClient escrow.Client, signers escrow.SignerProvider) {
	handler := gameHandler{
		gameService: gameService{
			store:   store,
			escrow:  escrowClient,
			signers: signers,
		},
	}

	routes := rg.Group("/game")
	routes.POST("", middleware.VerifyAuthToken, handler.createGame)
	routes.GET("", middleware.VerifyAuthToken, handler.getGames)
	routes.GET("/code/:code", handler.getGameByCode)
	routes.GET("/:id", handler.getGame)
	routes.GET("/:id/players", handler.getPlayers)
	routes.POST("/:id/start", middleware.VerifyAuthToken, handler.startGame)
	routes.POST("/:id/reopen", middleware.VerifyAuthToken, handler.reopenGame)
}

func (gh *gameHandler) createGame(c *gin.Context) {
	body := CreateGameRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	game, err := gh.gameService.createGame(c.Request.Context(), utils.GetUserFid(c), body)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (gh *gameHandler) getGames(c *gin.Context) {
	page, err := utils.NewPageRequest(c)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	games, count, err := gh.gameService.gamesByHost(c.Request.Context(), utils.GetUserFid(c), page.Size, page.Offset)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	response := utils.NewPageResponse[model.Game]().
		WithItems(games).
		WithItemCount(count)

	if count > int64((page.Token+1)*page.Size) {
		response.WithNextPageToken(int64(page.Token + 1))
	}

	c.JSON(http.StatusOK, response.Build())
}

func (gh *gameHandler) getGameByCode(c *gin.Context) {
	game, err := gh.gameService.gameByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (gh *gameHandler) getGame(c *gin.Context) {
	game, err := gh.gameService.gameById(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (gh *gameHandler) getPlayers(c *gin.Context) {
	players, err := gh.gameService.players(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (gh *gameHandler) startGame(c *gin.Context) {
	err := gh.gameService.startGame(c.Request.Context(), c.Param("id"), utils.GetUserFid(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}
	c.Status(http.StatusNoContent)
}

func (gh *gameHandler) reopenGame(c *gin.Context) {
	err := gh.gameService.reopenGame(c.Request.Context(), c.Param("id"), utils.GetUserFid(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}
	c.Status(http.StatusNoContent)
}
