package api

import (
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	requestService service.RequestService,
	builderService service.BuilderService,
	assetService service.AssetService,
	disciplineService service.DisciplineService,
) {
	authHandler := NewAuthHandler(authService)
	requestHandler := NewRequestHandler(requestService)
	builderHandler := NewBuilderHandler(builderService, requestService)
	assetHandler := NewAssetHandler(assetService)
	disciplineHandler := NewDisciplineHandler(disciplineService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/mfa/verify", authHandler.VerifyMFA)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		// One-time synthetic messages for the messaging view.
		protected.GET("/notifications", requestHandler.Notifications)

		// Catalog of sports/modalities for the intake form.
		protected.GET("/disciplines", disciplineHandler.List)

		// --- Athlete: bespoke requests ---
		requestGroup := protected.Group("/requests")
		requestGroup.Use(RoleMiddleware(domain.RoleAthlete))
		{
			requestGroup.POST("", requestHandler.Intake)
			requestGroup.GET("", requestHandler.List)
			requestGroup.GET("/:id", requestHandler.Get)
			requestGroup.POST("/:id/payment", requestHandler.ConfirmPayment)
			requestGroup.GET("/:id/diagnostics", requestHandler.ListDiagnostics)
			requestGroup.POST("/:id/submissions", requestHandler.SubmitDiagnostics)
		}

		// --- Coach: builder and template library ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.GET("/requests", builderHandler.ListAssigned)
			coachGroup.GET("/requests/:id", builderHandler.Open)
			coachGroup.PUT("/requests/:id/diagnostics", builderHandler.ConfigureDiagnostics)
			coachGroup.PUT("/requests/:id/weeks", builderHandler.SetWeeks)
			coachGroup.PUT("/requests/:id/mealplan", builderHandler.SetMealPlan)
			coachGroup.POST("/requests/:id/publish", builderHandler.Publish)
			coachGroup.POST("/requests/:id/templates/:templateId/apply", builderHandler.ApplyWorkoutTemplate)
			coachGroup.POST("/requests/:id/meal-templates/:templateId/apply", builderHandler.ApplyMealTemplate)

			coachGroup.POST("/templates", builderHandler.CreateWorkoutTemplate)
			coachGroup.GET("/templates", builderHandler.ListWorkoutTemplates)
			coachGroup.POST("/meal-templates", builderHandler.CreateMealTemplate)
			coachGroup.GET("/meal-templates", builderHandler.ListMealTemplates)
		}

		// --- Shared media library (visibility rule applies inside) ---
		assetGroup := protected.Group("/assets")
		{
			assetGroup.GET("", assetHandler.List)
			assetGroup.POST("", RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), assetHandler.BeginUpload)
			assetGroup.GET("/:id/url", assetHandler.DownloadURL)
			assetGroup.PATCH("/:id", RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), assetHandler.SetVisibility)
			assetGroup.DELETE("/:id", RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), assetHandler.Delete)
			assetGroup.POST("/generate", RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), assetHandler.Generate)
		}

		// --- Admin: assignment and cancellation ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/requests/:id/coaches", requestHandler.AssignCoach)
			adminGroup.POST("/requests/:id/cancel", requestHandler.Cancel)
			adminGroup.POST("/disciplines", disciplineHandler.Create)
			adminGroup.PUT("/disciplines/:code", disciplineHandler.Update)
		}
	}
}
