// fieldbook/internal/api/routes/routes.go
package routes

import (
	"net/http"

	"fieldbook/internal/api/handlers"
	"fieldbook/internal/api/middleware"
	"fieldbook/internal/service"
	"fieldbook/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires the field API. uploader may be nil when object storage is
// not configured and metrics may be nil to leave /metrics out.
func SetupRouter(
	svc *service.FieldService,
	uploader handlers.ExportUploader,
	wsHub *socket.Hub,
	metrics http.Handler,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, middleware.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader, "Content-Disposition"}
	router.Use(cors.New(corsCfg))

	fieldHandler := &handlers.FieldHandler{Service: svc, Uploader: uploader}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)
		apiV1.GET("/health", fieldHandler.Health)
		apiV1.GET("/statuses", fieldHandler.Statuses)

		fields := apiV1.Group("/fields")
		{
			fields.GET("", fieldHandler.ListFields)
			fields.POST("", fieldHandler.CreateField)
			fields.GET("/export", fieldHandler.ExportFields)
			fields.POST("/export", fieldHandler.UploadExport)
			fields.GET("/report", fieldHandler.Report)
			fields.GET("/:id", fieldHandler.GetField)
			fields.PUT("/:id", fieldHandler.UpdateField)
			fields.DELETE("/:id", fieldHandler.DeleteField)
		}
	}

	return router
}
