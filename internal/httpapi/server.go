// Package httpapi exposes a Store over JSON HTTP for the web front end.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/idartimm2-jpg/nezam/internal/config"
	"github.com/idartimm2-jpg/nezam/internal/pos"
)

// Server serves the HTTP API for one Store.
type Server struct {
	store  *pos.Store
	logger *zap.Logger
	cfg    config.HTTPConfig
	now    func() time.Time
	engine *gin.Engine
}

// New builds a Server and its routes.
func New(store *pos.Store, logger *zap.Logger, cfg config.HTTPConfig) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:  store,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })

	api := r.Group("/api")
	{
		api.GET("/state", s.getState)

		api.GET("/products", s.listProducts)
		api.POST("/products", s.addProduct)
		api.PUT("/products/:id", s.updateProduct)
		api.DELETE("/products/:id", s.deleteProduct)

		api.GET("/customers", s.listCustomers)
		api.POST("/customers", s.addCustomer)
		api.PUT("/customers/:id", s.updateCustomer)
		api.DELETE("/customers/:id", s.deleteCustomer)
		api.GET("/customers/:id/whatsapp", s.customerWhatsapp)

		api.GET("/invoices", s.listInvoices)
		api.POST("/invoices", s.commitInvoice)
		api.POST("/checkout", s.checkout)

		api.GET("/stock-logs", s.listStockLogs)
		api.POST("/stock-logs", s.commitStockLog)
		api.POST("/stock-logs/adjust", s.adjustStock)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.updateSettings)

		api.GET("/export", s.exportBackup)
		api.POST("/import", s.importBackup)
		api.POST("/reset", s.reset)

		api.GET("/stats", s.stats)
		api.GET("/reports/sales.xlsx", s.salesXLSX)
		api.GET("/reports/sales.csv", s.salesCSV)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
