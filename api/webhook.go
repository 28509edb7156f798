// Package api exposes the bot's HTTP surface: the Telegram webhook endpoint,
// Prometheus metrics and a health probe.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/valpere/govorun/internal/version"
	"github.com/valpere/govorun/pkg/metrics"
)

func NewRouter(bot *gotgbot.Bot, dispatcher *ext.Dispatcher, m *metrics.Metrics, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": version.GetInfo().Short(),
		})
	})

	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Telegram calls this with the raw update envelope. The token path
	// segment guards against third parties posting forged updates.
	router.POST("/webhook/:token", func(c *gin.Context) {
		if c.Param("token") != bot.Token {
			c.Status(http.StatusForbidden)
			return
		}

		var update gotgbot.Update
		if err := json.NewDecoder(c.Request.Body).Decode(&update); err != nil {
			logger.Warn().Err(err).Msg("Failed to decode webhook update")
			c.Status(http.StatusBadRequest)
			return
		}

		if err := dispatcher.ProcessUpdate(bot, &update, nil); err != nil {
			logger.Error().Err(err).Int64("update_id", update.UpdateId).Msg("Failed to process update")
			m.IncError("webhook")
		}

		c.Status(http.StatusOK)
	})

	return router
}
