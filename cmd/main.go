package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/config"
	"github.com/sweet-sh/sweet-api/internal/api/audience"
	"github.com/sweet-sh/sweet-api/internal/api/comment"
	"github.com/sweet-sh/sweet-api/internal/api/community"
	"github.com/sweet-sh/sweet-api/internal/api/feed"
	"github.com/sweet-sh/sweet-api/internal/api/notification"
	"github.com/sweet-sh/sweet-api/internal/api/post"
	"github.com/sweet-sh/sweet-api/internal/api/user"
	"github.com/sweet-sh/sweet-api/internal/middleware"
	"github.com/sweet-sh/sweet-api/internal/repository/mysql"
	"github.com/sweet-sh/sweet-api/internal/service"
	"github.com/sweet-sh/sweet-api/internal/storage"
	"github.com/sweet-sh/sweet-api/internal/util"
)

func main() {
	// 在 main 函数开始处添加
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	err = db.Ping()
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	// 在初始化数据库连接后添加
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("sorting", util.ValidateSorting)
		v.RegisterValidation("relationship_type", util.ValidateRelationshipType)
	}

	// 确保上传文件夹存在
	ensureUploadsFolder()

	// 根据配置选择文件存储后端
	fileStorage := newFileStorage()

	// 初始化存储库
	userRepo := mysql.NewUserRepository(db)
	relationshipRepo := mysql.NewRelationshipRepository(db)
	communityRepo := mysql.NewCommunityRepository(db)
	postRepo := mysql.NewPostRepository(db)
	notificationRepo := mysql.NewNotificationRepository(db)
	audienceRepo := mysql.NewAudienceRepository(db)
	libraryRepo := mysql.NewLibraryRepository(db)

	// 初始化服务
	notificationService := service.NewNotificationService(notificationRepo, userRepo, relationshipRepo)
	userService := service.NewUserService(userRepo, relationshipRepo, communityRepo, notificationService)
	feedService := service.NewFeedService(postRepo, userRepo, communityRepo, relationshipRepo, audienceRepo, libraryRepo)
	postService := service.NewPostService(postRepo, userRepo, communityRepo, relationshipRepo, audienceRepo, libraryRepo, notificationService, fileStorage)
	commentService := service.NewCommentService(postRepo, userRepo, relationshipRepo, audienceRepo, communityRepo, notificationService, fileStorage)
	communityService := service.NewCommunityService(communityRepo, userRepo)
	audienceService := service.NewAudienceService(audienceRepo, userRepo)

	// 初始化处理器
	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService, fileStorage)
	relationshipHandler := user.NewRelationshipHandler(userService)
	feedHandler := feed.NewFeedHandler(feedService, userService)
	postHandler := post.NewPostHandler(postService, userService)
	commentHandler := comment.NewCommentHandler(commentService, userService)
	communityHandler := community.NewCommunityHandler(communityService, userService, fileStorage)
	audienceHandler := audience.NewAudienceHandler(audienceService, userService)
	notificationHandler := notification.NewNotificationHandler(notificationService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}

	// 先应用 CORS 中间件
	r.Use(cors.New(corsConfig))

	// 加一个自定义的中间件来处理静态文件的CORS
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			// 如果是 OPTIONS 请求，直接返回200
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 配置静态文件服务（只配置一次）
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	// 调试模式下暴露错误统计诊断路由
	if config.AppConfig.Debug {
		r.GET("/debug/errors", func(c *gin.Context) {
			c.JSON(http.StatusOK, errorMonitor.GetStats())
		})
	}

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 无需认证的路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/request-password-reset", authHandler.RequestPasswordReset)
		api.POST("/reset-password", authHandler.ResetPassword)
		api.GET("/verify-email", authHandler.VerifyEmail)

		// 需要认证的路由
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware(userService))
		{
			authorized.POST("/logout", authHandler.Logout)
			authorized.POST("/refresh-token", authHandler.RefreshToken)

			// 个人资料与设置
			authorized.GET("/profile", profileHandler.GetProfile)
			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.PUT("/settings", profileHandler.UpdateSettings)
			authorized.POST("/profile/avatar", profileHandler.UploadAvatar)
			authorized.GET("/user/:identifier", profileHandler.GetUserProfile)
			authorized.GET("/users/related", profileHandler.ListRelatedUsers)

			// 用户关系
			authorized.POST("/relationship", relationshipHandler.Create)
			authorized.DELETE("/relationship", relationshipHandler.Remove)

			// 时间线
			authorized.GET("/posts/:context", feedHandler.List)

			// 帖子
			authorized.POST("/post", postHandler.Create)
			authorized.PUT("/post/:postid", postHandler.Edit)
			authorized.DELETE("/post/:postid", postHandler.Delete)
			authorized.POST("/plus/:postid", postHandler.Plus)
			authorized.POST("/boost/:postid", postHandler.Boost)
			authorized.POST("/boost/:postid/:locationid", postHandler.Boost)
			authorized.POST("/removeboost/:postid", postHandler.RemoveBoost)
			authorized.POST("/subscribe/:postid", postHandler.Subscribe)
			authorized.POST("/unsubscribe/:postid", postHandler.Unsubscribe)
			authorized.POST("/library/:postid", postHandler.AddToLibrary)
			authorized.DELETE("/library/:postid", postHandler.RemoveFromLibrary)

			// 评论
			authorized.POST("/comment/:postid", commentHandler.Create)
			authorized.POST("/comment/:postid/:commentid", commentHandler.Create)
			authorized.DELETE("/comment/:postid/:commentid", commentHandler.Delete)

			// 社区
			authorized.POST("/communities", communityHandler.Create)
			authorized.GET("/communities", communityHandler.List)
			authorized.GET("/community/:identifier", communityHandler.Get)
			authorized.POST("/community/join", communityHandler.Join)
			authorized.POST("/community/leave", communityHandler.Leave)
			authorized.POST("/community/mute", communityHandler.Mute)
			authorized.POST("/community/unmute", communityHandler.Unmute)
			authorized.POST("/community/ban", communityHandler.Ban)
			authorized.POST("/community/unban", communityHandler.Unban)
			authorized.POST("/community/image/:id", communityHandler.UploadImage)

			// 受众列表
			authorized.POST("/audiences", audienceHandler.Create)
			authorized.GET("/audiences", audienceHandler.List)
			authorized.GET("/audience/:id", audienceHandler.Get)
			authorized.PUT("/audience/:id", audienceHandler.Update)
			authorized.DELETE("/audience/:id", audienceHandler.Delete)

			// 通知
			authorized.GET("/notifications", notificationHandler.List)
			authorized.POST("/notifications/seen", notificationHandler.MarkSeen)
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")

	// 在 main 函数末尾添加路由打印
	if config.AppConfig.Debug {
		routes := r.Routes()
		util.Logger.Info("已注册的路由列表：")
		for _, route := range routes {
			util.Logger.Info("路由",
				zap.String("method", route.Method),
				zap.String("path", route.Path),
				zap.String("handler", route.Handler))
		}
	}
}

// 根据 STORAGE_BACKEND 选择文件存储实现，默认使用本地磁盘
func newFileStorage() storage.FileStorage {
	switch config.AppConfig.StorageBackend {
	case "s3":
		client, err := storage.NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
		if err != nil {
			util.Logger.Fatal("初始化 S3 存储失败", zap.Error(err))
		}
		return client
	case "gcs":
		client, err := storage.NewGCSClient(
			config.AppConfig.GCSProjectID,
			config.AppConfig.GCSBucketName,
			config.AppConfig.GCSCredentialsFile,
		)
		if err != nil {
			util.Logger.Fatal("初始化 GCS 存储失败", zap.Error(err))
		}
		return client
	default:
		local, err := storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
		if err != nil {
			util.Logger.Fatal("初始化本地存储失败", zap.Error(err))
		}
		return local
	}
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
	util.Logger.Info("上传文件夹已创建或已存在", zap.String("path", uploadsPath))
}
