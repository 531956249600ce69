package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimezsa/prepsite/internal/site"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

type ServeCmd struct {
	Dir  string `arg:"" optional:"" help:"Generated site directory. Defaults to the configured output dir."`
	Addr string `help:"Listen address." default:"127.0.0.1:8080"`
}

func (s *ServeCmd) Run(ctx *Context) error {
	root := firstNonEmpty(s.Dir, ctx.Config.OutputDir)
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("site directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("site directory: %s is not a directory", root)
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           newPreviewRouter(root, ctx.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx.UI.Infof("Serving %s on http://%s/%s (Ctrl+C to stop)", root, s.Addr, site.PagesDir)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("preview server: %w", err)
		}
		return nil
	case <-ctx.runContext().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown preview server: %w", err)
	}
	return nil
}

// newPreviewRouter serves the tree under root the way a static host would:
// /internships/foo maps to <root>/internships/foo/index.html.
func newPreviewRouter(root string, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(recoveryMiddleware(logger), loggerMiddleware(logger))

	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.String(http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if c.Request.URL.Path == "/" {
			if _, ok := previewFile(root, "/"); !ok {
				c.Redirect(http.StatusFound, "/"+site.PagesDir)
				return
			}
		}
		file, ok := previewFile(root, c.Request.URL.Path)
		if !ok {
			c.String(http.StatusNotFound, "not found")
			return
		}
		c.File(file)
	})
	return router
}

func previewFile(root string, urlPath string) (string, bool) {
	rel := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	candidate := filepath.Join(root, filepath.FromSlash(rel))

	info, err := os.Stat(candidate)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		candidate = filepath.Join(candidate, site.IndexFile)
		info, err = os.Stat(candidate)
		if err != nil || info.IsDir() {
			return "", false
		}
	}
	return candidate, true
}

func loggerMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqPath := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", method).
			Str("path", reqPath).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}

func recoveryMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
