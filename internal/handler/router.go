package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jkor2/lifeof/internal/config"
	"github.com/jkor2/lifeof/internal/middleware"
	"github.com/jkor2/lifeof/internal/service"
)

type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Auth       *service.AuthService
	Attributes *service.AttributeService
	Entries    *service.EntryService
	Export     *service.ExportService
	Whoop      *service.WhoopService
	Charts     *service.ChartService
}

// both registers h under path with and without a trailing slash.
func both(g gin.IRoutes, method, path string, h ...gin.HandlerFunc) {
	g.Handle(method, path, h...)
	g.Handle(method, path+"/", h...)
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog())
	origins := d.Config.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-New-Token", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	admin := middleware.AdminAuth(d.Config.Auth)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "LifeOf API ready"})
	})
	r.GET("/healthz", health(d.DB))
	r.POST("/api/login", NewAuthHandler(d.Auth).Login)

	attrs := NewAttributeHandler(d.Attributes)
	a := r.Group("/attribute-definitions")
	both(a, http.MethodGet, "", attrs.List)
	both(a, http.MethodPost, "", admin, attrs.Create)
	a.PUT("/:id", admin, attrs.Update)
	a.DELETE("/:id", admin, attrs.Delete)

	entries := NewEntryHandler(d.Entries, d.Export)
	e := r.Group("/entries")
	both(e, http.MethodGet, "", entries.List)
	both(e, http.MethodPost, "", admin, entries.Create)
	e.GET("/export.xlsx", entries.Export)
	e.GET("/:id", entries.Get)
	e.PUT("/:id", admin, entries.Update)
	e.DELETE("/:id", admin, entries.Delete)
	e.PATCH("/:id/visibility", admin, entries.SetVisibility)
	e.POST("/:id/notes", admin, entries.AddNote)

	wh := NewWhoopHandler(d.Whoop)
	w := r.Group("/whoop")
	w.GET("/status", wh.Status)
	w.GET("/auth", admin, wh.Auth)
	w.GET("/auth/whoop/callback", wh.Callback)
	w.GET("/data", wh.Data)
	w.GET("/data/full", admin, wh.Full)
	w.GET("/sync/latest", admin, wh.SyncLatest)
	w.POST("/sync/latest", admin, wh.SyncLatest)
	w.POST("/import", admin, wh.Import)

	r.GET("/charts/overview", NewChartHandler(d.Charts).Overview)

	return r
}
