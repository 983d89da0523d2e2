// Package server exposes the companion's lifecycle operations over a
// localhost HTTP API. This is the boundary the tray UI talks to; every
// internal error kind is rendered as a human-readable message string.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	companion "github.com/ghoststream/companion"
	"github.com/ghoststream/companion/internal/metrics"
	"github.com/ghoststream/companion/internal/probe"
	"github.com/ghoststream/companion/internal/supervisor"
)

// Router provides embeddable HTTP handlers over a Companion facade.
// Endpoints (relative to basePath):
//
//	POST /start               spawn the server (no readiness wait)
//	POST /stop                stop the server; always succeeds
//	GET  /status              supervisor bookkeeping snapshot
//	GET  /health              proxy the server's health endpoint
//	GET  /capabilities        proxy the server's capabilities endpoint
//	POST /wait-ready          block until ready or the window expires
//	GET  /network/ip          outward-facing local IP
//	GET  /network/access-point  access-point subnet membership
//
// /metrics is mounted outside basePath.
type Router struct {
	c        *companion.Companion
	basePath string
}

// NewRouter constructs a Router with a configurable basePath.
func NewRouter(c *companion.Companion, basePath string) *Router {
	return &Router{c: c, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in
// any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/start", r.handleStart)
	group.POST("/stop", r.handleStop)
	group.GET("/status", r.handleStatus)
	group.GET("/health", r.handleHealth)
	group.GET("/capabilities", r.handleCapabilities)
	group.POST("/wait-ready", r.handleWaitReady)
	group.GET("/network/ip", r.handleLocalIP)
	group.GET("/network/access-point", r.handleAccessPoint)
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, c *companion.Companion) *http.Server {
	r := NewRouter(c, basePath)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// wait-ready can block for the full readiness window
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type bodyResp struct {
	Body string `json:"body"`
}

func (r *Router) handleStart(c *gin.Context) {
	if err := r.c.StartService(c.Request.Context()); err != nil {
		c.JSON(errStatus(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleStop(c *gin.Context) {
	r.c.StopService()
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.c.ServiceStatus())
}

func (r *Router) handleHealth(c *gin.Context) {
	body, err := r.c.CheckServerHealth(c.Request.Context())
	if err != nil {
		c.JSON(errStatus(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, bodyResp{Body: body})
}

func (r *Router) handleCapabilities(c *gin.Context) {
	body, err := r.c.GetServerCapabilities(c.Request.Context())
	if err != nil {
		c.JSON(errStatus(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, bodyResp{Body: body})
}

func (r *Router) handleWaitReady(c *gin.Context) {
	body, err := r.c.WaitForServerReady(c.Request.Context())
	if err != nil {
		c.JSON(errStatus(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, bodyResp{Body: body})
}

func (r *Router) handleLocalIP(c *gin.Context) {
	ip, err := r.c.GetLocalIPAddress()
	if err != nil {
		c.JSON(errStatus(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ip": ip})
}

func (r *Router) handleAccessPoint(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"on_access_point": r.c.IsOnAccessPointNetwork()})
}

// errStatus maps internal error kinds onto HTTP statuses. The body
// always carries the message string; the status is a coarse hint for
// the UI.
func errStatus(err error) int {
	var rejected *probe.RejectedError
	var spawn *supervisor.SpawnError
	switch {
	case errors.Is(err, companion.ErrAlreadyManaged), errors.Is(err, companion.ErrPortOccupied):
		return http.StatusConflict
	case errors.Is(err, companion.ErrTimedOut):
		return http.StatusGatewayTimeout
	case errors.Is(err, companion.ErrNoRoute):
		return http.StatusServiceUnavailable
	case errors.As(err, &rejected):
		return http.StatusBadGateway
	case errors.As(err, &spawn):
		return http.StatusInternalServerError
	}
	var unreachable *probe.UnreachableError
	if errors.As(err, &unreachable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
