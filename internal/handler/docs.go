package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Raffle Service

Custodial raffle platform: a factory creates raffles, buyers purchase
tickets at a fixed unit price, resolution outcomes are recorded via an
owner-gated callback.

## Identity

Write endpoints require the X-Wallet-Address header, set by the platform
gateway after signature verification.

## Routes

- GET /healthz
- GET /readyz
- POST /api/v1/raffles
- GET /api/v1/raffles?offset=&limit=
- GET /api/v1/raffles/all
- GET /api/v1/raffles/count
- GET /api/v1/raffles/:id
- GET /api/v1/raffles/:id/valid
- POST /api/v1/raffles/:id/tickets
- GET /api/v1/raffles/:id/participants
- GET /api/v1/raffles/:id/tickets/:address
- GET /api/v1/raffles/:id/active
- GET /api/v1/raffles/:id/time-remaining
- GET /api/v1/raffles/:id/events
- POST /api/v1/raffles/:id/resolve
- GET /api/v1/creators/:address/raffles
- GET /api/v1/admin/policy
- PUT /api/v1/admin/fee
- PUT /api/v1/admin/wallet
- POST /api/v1/admin/pause
- POST /api/v1/admin/unpause
- GET /api/v1/stream (websocket)
`)
	})
}
