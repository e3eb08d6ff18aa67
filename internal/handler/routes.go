package handler

import "github.com/gin-gonic/gin"

// Register mounts every API route on api (normally the /api group)
func Register(api *gin.RouterGroup, ai *AIHandler, search *SearchHandler, sixer *SixerHandler) {
	aiGroup := api.Group("/ai")
	{
		aiGroup.POST("/chat", ai.Chat)
		aiGroup.POST("/chat/stream", ai.ChatStream)
		aiGroup.POST("/parse-listing", ai.ParseListing)
	}

	api.GET("/listings", search.SearchListings)
	api.POST("/listings", search.CreateListing)
	api.GET("/listings/:id", search.GetListing)
	api.GET("/search/suggest", search.Suggest)

	api.POST("/sixer/start", sixer.Start)
}
