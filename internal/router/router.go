package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
	"github.com/Rahmadjon0038/avto-test-backend/internal/handler"
	"github.com/Rahmadjon0038/avto-test-backend/internal/middleware"
	"github.com/Rahmadjon0038/avto-test-backend/internal/response"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

// Deps carries everything the route table needs.
type Deps struct {
	Config        *config.Config
	Log           zerolog.Logger
	AuthService   *service.AuthService
	Auth          *handler.AuthHandler
	Tickets       *handler.TicketHandler
	Questions     *handler.QuestionHandler
	Exams         *handler.ExamHandler
	Mistakes      *handler.MistakeHandler
	Subscriptions *handler.SubscriptionHandler
	Media         *handler.MediaHandler
	WS            *handler.WSHandler
}

// New builds the HTTP engine with all middleware and routes attached.
func New(d Deps) *gin.Engine {
	gin.SetMode(d.Config.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(response.RequestIDMiddleware())
	r.Use(requestLogger(d.Log))
	r.Use(cors.New(corsConfig(d.Config)))
	r.Use(middleware.Brotli(middleware.DefaultBrotliLevel))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Question images are immutable once uploaded (random names), so long
	// client caching is safe.
	r.Group("/uploads", middleware.CacheControl(24*time.Hour)).
		Static("/", d.Config.UploadDir)

	requireAuth := middleware.RequireAuth(d.AuthService)
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api/v1")

	auth := api.Group("/auth", middleware.NoStore())
	{
		credentials := auth.Group("", middleware.RateLimit(2, 10))
		credentials.POST("/register", d.Auth.Register)
		credentials.POST("/login", d.Auth.Login)
		credentials.POST("/refresh", d.Auth.Refresh)

		auth.GET("/me", requireAuth, d.Auth.Me)
		auth.POST("/logout", requireAuth, d.Auth.Logout)
	}

	tickets := api.Group("/tickets", requireAuth)
	{
		tickets.GET("", d.Tickets.List)
		tickets.GET("/:id/questions", d.Tickets.Questions)

		tickets.POST("", requireAdmin, d.Tickets.Create)
		tickets.PUT("/:id", requireAdmin, d.Tickets.Update)
		tickets.DELETE("/:id", requireAdmin, d.Tickets.Delete)
	}

	questions := api.Group("/questions", requireAuth, requireAdmin)
	{
		questions.GET("/:id", d.Questions.Get)
		questions.POST("", d.Questions.Create)
		questions.PUT("/:id", d.Questions.Update)
		questions.DELETE("/:id", d.Questions.Delete)
	}

	exam := api.Group("/exam", requireAuth)
	{
		exam.POST("/start", d.Exams.Start)
		exam.POST("/answer", d.Exams.Answer)
		exam.POST("/answers", d.Exams.AnswerBatch)
		exam.POST("/submit", d.Exams.Submit)
		exam.GET("/history", d.Exams.History)
		exam.GET("/:exam_id/result", d.Exams.Result)
		exam.DELETE("/:exam_id", d.Exams.Cancel)
	}

	mistakes := api.Group("/mistakes", requireAuth)
	{
		mistakes.POST("/ticket-submit", d.Mistakes.SubmitTicket)
		mistakes.GET("/my", d.Mistakes.My)
		mistakes.POST("/practice", d.Mistakes.Practice)
	}

	api.POST("/subscription/activate", requireAuth, d.Subscriptions.Activate)

	api.POST("/media/upload", requireAuth, requireAdmin, d.Media.Upload)

	ws := r.Group("/ws/v1", middleware.WSTokenFallback(), requireAuth)
	ws.GET("/exam/:exam_id/timer", d.WS.ExamTimer)

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Request-ID")
	c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	c.MaxAge = 12 * time.Hour
	return c
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("http request")
	}
}
