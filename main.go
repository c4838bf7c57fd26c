package main

import (
	"log"
	"strings"
	"time"

	"pinaly/auth"
	"pinaly/config"
	"pinaly/db"
	"pinaly/geocode"
	"pinaly/handlers"
	"pinaly/images"
	"pinaly/inference"
	"pinaly/logging"
	"pinaly/models"
	"pinaly/storage"
	"pinaly/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

func main() {
	defer logging.Sync()
	db.Init()
	models.Init()
	storage.Init()

	predictor := inference.NewClient(config.GEOCLIP_URL, time.Duration(config.GEOCLIP_TIMEOUT_SEC)*time.Second)
	geocoder := geocode.NewNominatim(config.NOMINATIM_URL, config.GEOCODE_LANGUAGE)
	handlers.Images = images.NewService(db.Instance, storage.GetDefaultStorage(), predictor, geocoder)
	handlers.Images.TopK = config.GEOCLIP_TOP_K

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "PUT", "POST", "DELETE"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        30 * 24 * time.Hour,
	}))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/files"})))
	}

	router.POST("/api/v1/auth/register", handlers.UserRegister)
	router.POST("/api/v1/auth/login", handlers.UserLogin)

	// Custom Auth Router
	authRouter := &auth.Router{Base: router}
	authRouter.GET("/api/v1/auth/me", handlers.UserStatus)
	// Image handlers
	authRouter.POST("/api/v1/images", handlers.ImageCreate)
	authRouter.GET("/api/v1/images", handlers.ImageList)
	authRouter.GET("/api/v1/images/:id", handlers.ImageDetail)
	authRouter.PUT("/api/v1/images/:id", handlers.ImageUpdate)
	authRouter.DELETE("/api/v1/images/:id", handlers.ImageDelete)
	// Location pipeline
	authRouter.POST("/api/v1/images/:id/analyze", handlers.ImageAnalyze)
	authRouter.GET("/api/v1/images/:id/candidates", handlers.ImageCandidates)
	authRouter.POST("/api/v1/images/:id/confirm", handlers.ImageConfirm)
	authRouter.POST("/api/v1/images/:id/reanalyze", handlers.ImageReanalyze)
	authRouter.PUT("/api/v1/images/:id/location", handlers.ImageSetLocation)
	// Blobs, tags, map
	authRouter.GET("/api/v1/files/:id", handlers.ImageFetch)
	authRouter.GET("/api/v1/tags", handlers.TagList)
	authRouter.GET("/api/v1/pins", handlers.PinList)

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
