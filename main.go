package main

import (
	"os"

	"estately-server/logger"
	"estately-server/routes"
	"estately-server/services"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	logger.Initialize()
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})
	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/apple", routes.AppleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Get("/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUser)
		user.Patch("/{id}/profile", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.UpdateUserProfile)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AllowsNotifications)
		user.Post("/verification", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.SubmitVerification)
		user.Post("/feedback", accessTokenVerifierMiddleware, routes.CreateFeedback)
	}

	property := app.Party("/api/property")
	{
		property.Post("/", accessTokenVerifierMiddleware, routes.CreateProperty)
		property.Get("/{id}", routes.GetProperty)
		property.Get("/agent/{id}", routes.GetPropertiesByAgentID)
		property.Patch("/update/{id}", accessTokenVerifierMiddleware, routes.UpdateProperty)
		property.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteProperty)
		property.Post("/{id}/images", accessTokenVerifierMiddleware, routes.AddPropertyImages)
		property.Delete("/image/{imageID:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.DeletePropertyImage)
		property.Post("/{id}/featured", accessTokenVerifierMiddleware, routes.SetFeatured)
		property.Post("/search", routes.GetPropertiesByBoundingBox)
	}

	// Properties search and analytics
	properties := app.Party("/api/properties")
	{
		properties.Get("/search", routes.SearchProperties)
		properties.Post("/price-distribution", routes.PriceDistribution)
	}

	appointment := app.Party("/api/appointment")
	{
		appointment.Get("/property/{propertyID:uint}/availability", routes.GetPropertyAvailability)
		appointment.Post("/", accessTokenVerifierMiddleware, routes.CreateAppointment)
		appointment.Patch("/{id:uint}/status", accessTokenVerifierMiddleware, routes.UpdateAppointmentStatus)
		appointment.Post("/{id:uint}/cancel", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CancelAppointment)
		appointment.Get("/visitor", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetVisitorAppointments)
		appointment.Get("/agent", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetAgentAppointments)
	}

	favorite := app.Party("/api/favorite")
	{
		favorite.Post("/", accessTokenVerifierMiddleware, routes.AddFavorite)
		favorite.Delete("/{propertyID:uint}", accessTokenVerifierMiddleware, routes.RemoveFavorite)
		favorite.Get("/", accessTokenVerifierMiddleware, routes.GetUserFavorites)
		favorite.Get("/property/{propertyID:uint}/count", routes.GetPropertyFavoriteCount)
	}

	subscription := app.Party("/api/subscription")
	{
		subscription.Get("/", accessTokenVerifierMiddleware, routes.GetSubscription)
		subscription.Post("/upgrade", accessTokenVerifierMiddleware, routes.UpgradeSubscription)
		subscription.Get("/tiers", routes.GetTierCatalog)
	}

	location := app.Party("/api/location")
	{
		location.Get("/autocomplete", routes.AutocompleteLocations)
		location.Get("/cities", routes.GetAvailableCities)
	}

	video := app.Party("/api/video")
	{
		video.Post("/", accessTokenVerifierMiddleware, routes.CreatePropertyVideo)
		video.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeletePropertyVideo)
		video.Get("/property/{propertyID:uint}", routes.ListPropertyVideos)
	}

	upload := app.Party("/api/upload")
	{
		upload.Post("/image", accessTokenVerifierMiddleware, routes.UploadImage)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/users/{id:uint}", routes.AdminGetUser)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, routes.AdminChangeUserRole)
		admin.Patch("/users/{id:uint}/tier", routes.AdminSetUserTier)
		admin.Get("/verifications", routes.AdminListVerifications)
		admin.Post("/verifications/{id:uint}/review", routes.AdminReviewVerification)
		admin.Get("/properties", routes.AdminListProperties)
		admin.Get("/properties/{id:uint}", routes.AdminGetProperty)
		admin.Patch("/properties/{id:uint}/moderation", routes.AdminModerateProperty)
		admin.Post("/properties/{id:uint}/flag", routes.AdminFlagProperty)
		admin.Get("/feedback", routes.AdminListFeedback)
		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)
		admin.Post("/export", routes.AdminCreateExport)
		admin.Get("/export/{id:string}", routes.AdminGetExport)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	scheduler := services.StartScheduler()
	defer scheduler.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	logger.S().Infow("starting server", "addr", ":"+port)
	if err := app.Listen(":" + port); err != nil {
		logger.S().Fatalw("server exited", "error", err)
	}
}
