package handler

import (
	"net/http"
	"strconv"

	"betadmin/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const maxDeadLetters = 100

// DeadLetters lists the most recent failed email jobs. ?limit= caps the page (default 20).
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := int64(20)
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, message("limit debe ser un entero positivo"))
				return
			}
			limit = min(n, maxDeadLetters)
		}

		ctx := c.Request.Context()
		total, err := worker.DLQLength(ctx, rdb, worker.QueueEmail)
		if err != nil {
			_ = c.Error(err)
			return
		}
		entries, err := worker.PeekDLQ(ctx, rdb, worker.QueueEmail, limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"queue": worker.QueueEmail, "total": total, "entries": entries})
	}
}
