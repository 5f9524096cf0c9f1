package ratelimit

import (
	"encoding/json"
	"time"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth/limiter"
	"github.com/didip/tollbooth_gin"
	"github.com/gin-gonic/gin"
	"rollcall.io/application/constants"
)

func newLimiter(perSecond float64) *limiter.Limiter {
	message := map[string]any{
		"message":       "You are going too fast! You have been ratelimited.",
		"response_code": constants.RATE_LIMITED,
	}
	jsonMessage, _ := json.Marshal(message)

	tlbthLimiter := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Minute * 1,
	})
	tlbthLimiter.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	tlbthLimiter.SetMessageContentType("application/json")
	tlbthLimiter.SetMessage(string(jsonMessage))
	return tlbthLimiter
}

// TokenBucketPerIP guards the whole API.
func TokenBucketPerIP(perSecond float64) gin.HandlerFunc {
	return tollbooth_gin.LimitHandler(newLimiter(perSecond))
}

// FaceBucketPerIP guards the routes that call the face models, which are
// far more expensive than a plain read.
func FaceBucketPerIP(perSecond float64) gin.HandlerFunc {
	return tollbooth_gin.LimitHandler(newLimiter(perSecond))
}
