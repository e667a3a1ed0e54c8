package main

import (
	"campusshare/api/app"
	"campusshare/api/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	if err := run(); err != nil {
		zap.L().Error("Server stopped", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Level from the config is applied right after, this one catches config warnings
	if err := app.MakeLogger("info"); err != nil {
		return err
	}

	if err := config.Setup(os.Args[1:]); err != nil {
		return err
	}

	if err := app.MakeLogger(v.GetString("app.log_level")); err != nil {
		return err
	}
	defer zap.L().Sync()

	d, err := app.NewDeps(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", v.GetInt("host.port")),
		Handler:           app.NewRouter(ctx, d, app.RouterOptions()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
