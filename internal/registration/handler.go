package registration

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/middleware"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/utils"
)

type registrationHandler struct {
	registration *registrationService
}

func RegisterRoutes(rg *gin.RouterGroup, store ledger.Store) {
	handler := registrationHandler{
		registration: &registrationService{store: store},
	}

	routes := rg.Group("/registration")
	routes.POST("", middleware.VerifyAuthToken, handler.register)
}

type RegistrationRequest struct {
	Username string `json:"username"`
}

func (h registrationHandler) register(c *gin.Context) {
	body := RegistrationRequest{}

	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	username := strings.TrimSpace(body.Username)
	if username == "" || len(username) > 32 {
		c.JSON(http.StatusBadRequest, reject.RequestValidationProblem())
		return
	}

	user, err := h.registration.register(c.Request.Context(), utils.GetUserFid(c), username)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, user)
}
