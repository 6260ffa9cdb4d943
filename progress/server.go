package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"github.com/hotwords123/judge-v3/types"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Server is the progress/metrics daemon: it serves REST polling and
// WebSocket push of JudgeResult snapshots, plus a Prometheus /metrics
// endpoint, on one gin.Engine — the same single-mux shape as
// cmd/go-judge/main.go's initHTTPMux, generalized from raw command
// streaming to judge-result push.
type Server struct {
	addr    string
	logger  *zap.Logger
	hub     *hub
	metrics *metrics
	srv     *http.Server
	engine  *gin.Engine

	upgrader websocket.Upgrader
}

// Engine exposes the underlying gin.Engine so the daemon entry point
// (component O) can register the submission-intake route alongside the
// progress/metrics routes this package owns.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// NewServer builds a Server bound to addr. release switches gin into
// ReleaseMode, mirroring conf.Release in cmd/go-judge/main.go.
func NewServer(addr string, release bool, logger *zap.Logger) *Server {
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		addr:    addr,
		logger:  logger,
		hub:     newHub(),
		metrics: newMetrics("judge"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.metrics.register()

	r := gin.New()
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "judge_http",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string { return c.FullPath() }
	r.Use(p.HandlerFunc())

	r.GET("/progress/:id", s.handleSnapshot)
	r.GET("/ws/:id", s.handleWebSocket)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = r
	s.srv = &http.Server{Addr: addr, Handler: r}
	return s
}

// Publish records result as submissionID's latest snapshot, fans it out to
// subscribers, and (when done is true) updates the throughput/diagnostics
// counters — called once per Orchestrator.Run return, and optionally on
// every intermediate reportProgress callback with done=false.
func (s *Server) Publish(submissionID string, result *types.JudgeResult, done bool, judgeElapsed time.Duration, diagnosticsRan bool) {
	s.hub.publish(submissionID, result)
	if !done {
		return
	}
	s.metrics.submissionsJudged.Inc()
	s.metrics.judgeDuration.Observe(judgeElapsed.Seconds())
	if diagnosticsRan {
		s.metrics.diagnosticsTriggers.Inc()
	}
}

// Forget drops the retained in-memory snapshot for submissionID. The
// daemon calls it once a run has finished, after handing the result to
// the result sink (component M) when one is configured.
func (s *Server) Forget(submissionID string) {
	s.hub.forget(submissionID)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts it
// down gracefully — the same start/cleanup split as
// cmd/go-judge/main.go's initHTTPServer.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting progress server", zap.String("addr", s.addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("progress server shutting down")
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// handleSnapshot serves the latest retained JudgeResult for an id, gzip
// compressing the body when the client advertises support — this
// endpoint is polled by consumers that skip the WebSocket push, so its
// payload is the one worth compressing on this server.
func (s *Server) handleSnapshot(c *gin.Context) {
	result, ok := s.hub.snapshot(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
		c.JSON(http.StatusOK, result)
		return
	}

	c.Header("Content-Encoding", "gzip")
	c.Header("Content-Type", "application/json; charset=utf-8")
	gz := gzip.NewWriter(c.Writer)
	defer gz.Close()
	if err := json.NewEncoder(gz).Encode(result); err != nil {
		s.logger.Warn("failed to write gzip snapshot", zap.Error(err))
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	id := c.Param("id")
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("id", id), zap.Error(err))
		return
	}

	ch, last, cancel := s.hub.subscribe(id)
	defer cancel()

	s.metrics.activeSubscribers.Inc()
	defer s.metrics.activeSubscribers.Dec()

	s.sendLoop(conn, ch, last)
}

// sendLoop pushes JSON-encoded JudgeResult snapshots over conn and keeps
// it alive with periodic pings, mirroring
// cmd/go-judge/ws_executor/stream.go's streamWrapper.sendLoop.
func (s *Server) sendLoop(conn *websocket.Conn, ch <-chan *types.JudgeResult, last *types.JudgeResult) {
	defer conn.Close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if last != nil {
		if err := s.writeSnapshot(conn, last); err != nil {
			return
		}
	}

	for {
		select {
		case result, ok := <-ch:
			if !ok {
				return
			}
			if err := s.writeSnapshot(conn, result); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn, result *types.JudgeResult) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(result)
}
