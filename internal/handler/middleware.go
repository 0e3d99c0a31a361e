package handler

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// callerHeader carries the verified wallet of the requester. The platform
// gateway sets it after signature verification; this service trusts it.
const callerHeader = "X-Wallet-Address"

// CORSMiddleware allows browser frontends to call the API directly.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+callerHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// caller extracts the verified wallet address from the request. The second
// return is false when the header is missing or malformed; the handler has
// already written the error response in that case.
func caller(c *gin.Context) (common.Address, bool) {
	raw := strings.TrimSpace(c.GetHeader(callerHeader))
	if raw == "" {
		Error(c, http.StatusUnauthorized, "missing "+callerHeader+" header", nil)
		return common.Address{}, false
	}
	if !common.IsHexAddress(raw) {
		Error(c, http.StatusBadRequest, "malformed wallet address", nil)
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// parseAddressParam reads a path parameter as a wallet address.
func parseAddressParam(c *gin.Context, name string) (common.Address, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if !common.IsHexAddress(raw) {
		Error(c, http.StatusBadRequest, "malformed wallet address", nil)
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
