//go:build !embed
// +build !embed

package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the frontend from disk during development
func setupStaticFiles(router *gin.Engine, logger *slog.Logger) {
	logger.Info("static_files", "mode", "filesystem", "root", "./web/dist",
		"hint", "run the frontend dev server separately for hot reload")

	router.Static("/assets", "./web/dist/assets")
	router.StaticFile("/", "./web/dist/index.html")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Frontend is running separately",
			"dev_url": "http://localhost:3000",
		})
	})
}
