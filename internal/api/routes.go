package api

import (
	"net/http"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/drafts"
	"alcyxob/fitness-content/internal/logger"
	"alcyxob/fitness-content/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies bundles what the router needs. Drafts is nil when redis is not
// configured, and the draft routes are then not registered.
type Dependencies struct {
	JWTSecret       string
	AllowOrigins    []string
	Log             *logger.Logger
	AuthService     service.AuthService
	ExerciseService service.ExerciseService
	ContentService  service.ContentService
	Drafts          *drafts.Cache
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(RequestLogger(deps.Log))
	if len(deps.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Log)
	exerciseHandler := NewExerciseHandler(deps.ExerciseService, deps.Log)
	contentHandler := NewContentHandler(deps.ContentService, deps.Log)

	authMiddleware := AuthMiddleware(deps.JWTSecret)
	canEdit := RoleMiddleware(domain.RoleAdmin, domain.RoleEditor)
	canProduce := RoleMiddleware(domain.RoleAdmin, domain.RoleEditor, domain.RoleProducer)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			// Accounts are created by admins only.
			authGroup.POST("/register", authMiddleware, RoleMiddleware(domain.RoleAdmin), authHandler.Register)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", canProduce, exerciseHandler.ListExercises)
			exerciseGroup.POST("", canEdit, exerciseHandler.CreateExercise)
			exerciseGroup.POST("/normalize", canEdit, exerciseHandler.NormalizeExercise)
			exerciseGroup.GET("/:exerciseId", canProduce, exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:exerciseId", canEdit, exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", canEdit, exerciseHandler.DeleteExercise)

			exerciseGroup.GET("/:exerciseId/resolve", canProduce, contentHandler.ResolveMethod)
			exerciseGroup.GET("/:exerciseId/matrix", canProduce, contentHandler.GetExerciseMatrix)

			// --- Method Routes ---
			exerciseGroup.POST("/:exerciseId/methods", canEdit, exerciseHandler.AddMethod)
			exerciseGroup.DELETE("/:exerciseId/methods/:index", canEdit, exerciseHandler.RemoveMethod)
			exerciseGroup.PATCH("/:exerciseId/methods/:index/workflow", canProduce, exerciseHandler.UpdateWorkflow)
			exerciseGroup.POST("/:exerciseId/methods/:index/media/upload-url", canProduce, exerciseHandler.RequestMediaUpload)
			exerciseGroup.PUT("/:exerciseId/methods/:index/media", canProduce, exerciseHandler.AttachMedia)
		}

		// --- Catalog-wide content views ---
		contentGroup := protected.Group("/content")
		contentGroup.Use(canProduce)
		{
			contentGroup.GET("/matrix", contentHandler.GetCatalogMatrix)
			contentGroup.GET("/tasks", contentHandler.GetTaskLists)
		}

		if deps.Drafts != nil {
			draftHandler := NewDraftHandler(deps.Drafts, deps.Log)
			draftGroup := protected.Group("/drafts")
			{
				draftGroup.GET("/:key", draftHandler.GetDraft)
				draftGroup.PUT("/:key", draftHandler.SaveDraft)
				draftGroup.DELETE("/:key", draftHandler.DiscardDraft)
			}
		}
	}
}
