package cleanup

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
	"github.com/spf13/viper"
)

type cleanupHandler struct {
	cleanupService cleanupService
}

// RegisterRoutes mounts the sweep endpoint invoked by the scheduler. It is
// authenticated with a shared secret instead of a user token because the
// caller is a cron job, not a person.
func RegisterRoutes(rg *gin.RouterGroup, store ledger.Store) {
	handler := cleanupHandler{
		cleanupService: cleanupService{
			store: store,
			grace: time.Duration(viper.GetInt64("CLEANUP_GRACE_MINUTES")) * time.Minute,
		},
	}

	routes := rg.Group("/cleanup")
	routes.POST("/pending-players", verifyCronSecret, handler.sweepPendingPlayers)
}

func verifyCronSecret(c *gin.Context) {
	secret := viper.GetString("CLEANUP_SECRET")
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if secret == "" || !found || token != secret {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Next()
}

func (ch *cleanupHandler) sweepPendingPlayers(c *gin.Context) {
	deleted, err := ch.cleanupService.sweepStalePending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, reject.UnexpectedProblem(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
