package utils

import (
	"net/http"
	"strconv"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const (
	fidClaimKey string = "fid"
	tokenCtxKey string = "accessToken"
)

type AccessToken struct {
	Token    auth.Token
	RawToken string
}

func GetAccessToken(ctx *gin.Context) auth.Token {
	at := getAccessToken(ctx)
	return at.Token
}

func GetAccessTokenRaw(ctx *gin.Context) string {
	at := getAccessToken(ctx)
	return at.RawToken
}

func getAccessToken(ctx *gin.Context) AccessToken {
	return getCtxValue(tokenCtxKey, ctx).(AccessToken)
}

// FidFromToken extracts the caller's Farcaster id from a verified token.
// The fid claim is set by the sign-in-with-farcaster exchange and may arrive
// as either a number or a string depending on the token minting path. A
// missing, malformed or non-positive claim reports false; the auth
// middleware rejects such tokens before any handler runs.
func FidFromToken(token auth.Token) (int64, bool) {
	switch claim := token.Claims[fidClaimKey].(type) {
	case float64:
		fid := int64(claim)
		return fid, fid > 0
	case string:
		fid, err := strconv.ParseInt(claim, 10, 64)
		return fid, err == nil && fid > 0
	default:
		return 0, false
	}
}

// GetUserFid returns the caller's fid. Only reachable behind the auth
// middleware, which has already rejected tokens without a valid claim.
func GetUserFid(ctx *gin.Context) int64 {
	fid, _ := FidFromToken(GetAccessToken(ctx))
	return fid
}

func getCtxValue(key string, ctx *gin.Context) any {
	value, exists := ctx.Get(key)
	if !exists {
		ctx.AbortWithStatus(http.StatusInternalServerError)
	}
	return value
}

func SetAccessTokenCtx(token *AccessToken, ctx *gin.Context) {
	ctx.Set(tokenCtxKey, *token)
}
