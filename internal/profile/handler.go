package profile

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/middleware"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
)

type profileHandler struct {
	profile *ProfileService
}

func RegisterRoutes(rg *gin.RouterGroup) {
	handler := profileHandler{
		profile: NewProfileService(),
	}

	routes := rg.Group("/profile")
	routes.GET("", middleware.VerifyAuthToken, handler.getProfiles)
}

func (h profileHandler) getProfiles(c *gin.Context) {
	fids, parseErr := parseFids(c.Query("fids"))
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
		return
	}

	profiles, err := h.profile.FindByFids(c.Request.Context(), fids)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func parseFids(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return []int64{}, nil
	}
	parts := strings.Split(raw, ",")
	fids := make([]int64, 0, len(parts))
	for _, part := range parts {
		fid, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		fids = append(fids, fid)
	}
	return fids, nil
}
