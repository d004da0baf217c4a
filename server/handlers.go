package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cubelab/solfilter/internal/version"
	"github.com/cubelab/solfilter/transport"
)

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Get(),
	})
}

func (s *Server) handleLabel(c *gin.Context) {
	var req transport.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.Observe(OutcomeRejected, 0, 0)
		c.JSON(http.StatusBadRequest, transport.Reply{Error: "invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	reply := s.worker.Process(ctx, req)
	elapsed := time.Since(start)

	switch {
	case reply.Error != "" && ctx.Err() != nil:
		s.metrics.Observe(OutcomeTimeout, 0, 0)
		s.logger.Warn("labeling timed out",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Duration("elapsed", elapsed))
		c.JSON(http.StatusGatewayTimeout, reply)
	case reply.Error != "":
		s.metrics.Observe(OutcomeRejected, 0, 0)
		c.JSON(http.StatusBadRequest, reply)
	default:
		s.metrics.Observe(OutcomeOK, len(reply.Results), elapsed.Seconds())
		c.JSON(http.StatusOK, reply)
	}
}
