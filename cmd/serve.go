package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/lucky-aeon/agentx/mcp-manager/mcptools"
	"github.com/lucky-aeon/agentx/mcp-manager/router"
	"github.com/lucky-aeon/agentx/mcp-manager/service"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

const logFileName = "mcpm.log"

func newServeCmd(opts *rootOptions) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the MCP endpoint",
		Long: `Serve the REST API under /api and the MCP tools over streamable HTTP at /mcp.
A config.json with the effective settings is written on first start.`,
		GroupID: "server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Bind = bind
			}
			if _, err := os.Stat(cfg.GetConfigPath()); errors.Is(err, os.ErrNotExist) {
				if err := cfg.SaveConfig(); err != nil {
					return err
				}
			}

			logFile, err := xlog.TeeToFile(cfg.ConfigDirPath, logFileName, os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to create log file: %w", err)
			}
			defer xlog.CloseLogFiles()

			e := echo.New()
			e.HideBanner = true
			e.Logger.SetLevel(echoLevel(cfg.LogLevel))
			e.Logger.SetOutput(io.MultiWriter(logFile, os.Stdout))
			e.Use(middleware.Logger())
			e.Use(middleware.Recover())

			mgr := service.NewServiceManager(*cfg)
			tools := mcptools.NewServer(mgr, version)
			srv := router.NewServerManager(*cfg, e, mgr, tools.HTTPHandler())
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := e.Start(cfg.Bind); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from config)")
	return cmd
}

func echoLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	}
	return log.INFO
}

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools on stdin/stdout",
		Long: `Serve the fragment and agent tools as an MCP server over stdio, for
clients that launch mcpm as a subprocess. Logs go to the log file only.`,
		GroupID: "server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			// stdout carries the protocol
			if _, err := xlog.TeeToFile(cfg.ConfigDirPath, logFileName); err != nil {
				return fmt.Errorf("failed to create log file: %w", err)
			}
			defer xlog.CloseLogFiles()

			mgr := service.NewServiceManager(*cfg)
			defer mgr.Close()
			return mcptools.NewServer(mgr, version).ServeStdio()
		},
	}
}
