package profile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/utils"
	"github.com/spf13/viper"
)

// Profile is the display identity for one participant, resolved from the
// Farcaster hub API.
type Profile struct {
	Fid         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PfpUrl      string `json:"pfpUrl"`
}

type farcasterUsersResponse struct {
	Users []struct {
		Fid         int64  `json:"fid"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		PfpUrl      string `json:"pfp_url"`
	} `json:"users"`
}

type ProfileService struct {
	httpClient *http.Client
}

func NewProfileService() *ProfileService {
	return &ProfileService{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FindByFids resolves a batch of fids in one upstream call. Unknown fids
// are simply absent from the result; the caller renders a fallback.
func (s *ProfileService) FindByFids(ctx context.Context, fids []int64) ([]Profile, *reject.ProblemWithTrace) {
	if len(fids) == 0 {
		return []Profile{}, nil
	}

	baseUrl := viper.GetString("FARCASTER_API_URL")
	apiKey := viper.GetString("FARCASTER_API_KEY")

	parts := make([]string, len(fids))
	for i, fid := range fids {
		parts[i] = strconv.FormatInt(fid, 10)
	}

	url := fmt.Sprintf("%s/v2/farcaster/user/bulk?fids=%s", baseUrl, strings.Join(parts, ","))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, lookupProblem(err)
	}
	request.Header.Set("Accept", "application/json")
	if apiKey != "" {
		request.Header.Set("api_key", apiKey)
	}

	response, err := s.httpClient.Do(request)
	if err != nil {
		return nil, lookupProblem(err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, lookupProblem(fmt.Errorf("farcaster api answered %d", response.StatusCode))
	}

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, lookupProblem(err)
	}
	parsed, err := utils.JsonDecodeByteStream[farcasterUsersResponse](raw)
	if err != nil {
		return nil, lookupProblem(err)
	}

	profiles := make([]Profile, 0, len(parsed.Users))
	for _, user := range parsed.Users {
		profiles = append(profiles, Profile{
			Fid:         user.Fid,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			PfpUrl:      user.PfpUrl,
		})
	}
	return profiles, nil
}

func lookupProblem(err error) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Cannot resolve participant profiles").
			WithStatus(http.StatusBadGateway).
			WithCode("error.profile.lookup").
			Build(),
		Cause: err,
	}
}
