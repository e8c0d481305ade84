package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"arena-service/pkg/config"
	"arena-service/pkg/hub"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}

		h, err := newHub(cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, newRouter(cfg, h))
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func newHub(cfg config.Config) (*hub.Hub, error) {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.EffectPolicy()
	if err != nil {
		return nil, err
	}
	return hub.New(catalog, hub.Options{
		Bounds:    cfg.Bounds(),
		Policy:    policy,
		AssetsDir: cfg.AssetsDir,
	}), nil
}

func newRouter(cfg config.Config, h *hub.Hub) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.Default()

	// Global Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Next()
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "online",
			"service": "Arena Service",
			"version": Version,
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.Register(r.Group("/api"))
	return r
}

func serve(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		// Bind to 0.0.0.0 explicitly for cloud platforms
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: handler,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("arena service starting on port %s", cfg.Port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("arena service stopped")
	return nil
}
