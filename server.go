package notionpub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/notionpub/metrics"
	"github.com/eringen/notionpub/views"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the preview server on Config.Addr until ctx is done. It serves
// the generated site, the drafts preview when configured, and /metrics when
// the app was created WithMetrics. With Config.RebuildEvery set, the site is
// rebuilt on that interval.
func (a *App) Serve(ctx context.Context) error {
	if err := a.prepareServer(); err != nil {
		return err
	}
	defer a.loginLimiter.Stop()

	if a.Config.RebuildEvery > 0 {
		sched, err := a.startScheduler(ctx, a.Config.RebuildEvery)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				a.Log.Warn("scheduler shutdown", "err", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		a.Log.Info("serving", "addr", a.Config.Addr, "dir", a.Config.OutputDir, "drafts", a.Config.DraftsEnabled())
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

// prepareServer opens the store and installs middleware and routes.
func (a *App) prepareServer() error {
	if err := a.Config.Validate(true); err != nil {
		return fmt.Errorf("notionpub: config: %w", err)
	}
	if err := a.open(); err != nil {
		return err
	}
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	if a.registry != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(a.registry)))
	}

	if a.Config.DraftsEnabled() {
		e.GET("/drafts/", a.handleDrafts)
		e.POST("/drafts/login/", a.handleDraftsLogin)
		e.POST("/drafts/logout/", handleDraftsLogout)
		e.GET("/drafts/:id/", a.handleDraft)
	}
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error", "err", err, "path", c.Request().URL.Path)
		_ = RenderStatus(c, code, views.ServerError(a.siteView()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// renderNotFound serves the generated 404 page, or a fresh one before the
// first build.
func (a *App) renderNotFound(c echo.Context) {
	page, err := os.ReadFile(filepath.Join(a.Config.OutputDir, "404.html"))
	if err != nil {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.siteView()))
		return
	}
	_ = c.HTMLBlob(http.StatusNotFound, page)
}
