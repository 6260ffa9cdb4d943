package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hotwords123/judge-v3/config"
	"github.com/hotwords123/judge-v3/diagnostics"
	"github.com/hotwords123/judge-v3/file"
	"github.com/hotwords123/judge-v3/judge"
	"github.com/hotwords123/judge-v3/judger"
	"github.com/hotwords123/judge-v3/language"
	"github.com/hotwords123/judge-v3/logging"
	"github.com/hotwords123/judge-v3/progress"
	"github.com/hotwords123/judge-v3/store"
	"github.com/hotwords123/judge-v3/taskqueue"
	"github.com/hotwords123/judge-v3/taskqueue/amqprunner"
	"github.com/hotwords123/judge-v3/taskqueue/channel"
	"github.com/hotwords123/judge-v3/testdata"
	"github.com/hotwords123/judge-v3/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the judge daemon",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	var conf config.Config
	if err := conf.LoadWithoutFlags(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if conf.Daemonize {
		cntxt := &daemon.Context{
			PidFileName: "/var/run/judged.pid",
			PidFilePerm: 0o644,
			LogFileName: "/var/log/judged.log",
			LogFilePerm: 0o640,
			WorkDir:     conf.TempDirectory,
			Umask:       0o27,
		}
		child, err := cntxt.Reborn()
		if err != nil {
			return fmt.Errorf("daemonize: %w", err)
		}
		if child != nil {
			// Parent process: the daemonized child now owns the process.
			return nil
		}
		defer cntxt.Release()
	}

	logger, err := logging.New(&conf)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	svc, err := newService(&conf, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	return svc.progress.ListenAndServe(ctx)
}

// service wires every component named in §6/§2 of the daemon's design
// into one running process: the runner transport (L), the test-data
// loader (K), the progress/metrics server (N) and the result sink (M),
// with the submission-intake route bridging them to the orchestrator (E).
type service struct {
	conf     *config.Config
	logger   *zap.Logger
	sender   taskqueue.Sender
	loader   *testdata.Loader
	lang     language.Language
	progress *progress.Server
	sink     *store.ResultSink
	cache    *store.ProgressCache

	closers []func() error
}

func newService(conf *config.Config, logger *zap.Logger) (*service, error) {
	s := &service{conf: conf, logger: logger, loader: testdata.NewLoader(conf.TestData), lang: language.NewRegistry()}

	if conf.RabbitMQURL != "" {
		queue, err := amqprunner.Dial(conf.RabbitMQURL, "judge.tasks", "")
		if err != nil {
			return nil, fmt.Errorf("dial runner transport: %w", err)
		}
		s.sender = queue
		s.closers = append(s.closers, queue.Close)
	} else {
		s.sender = channel.New()
	}

	s.progress = progress.NewServer(conf.HTTPAddr, conf.LogRelease, logger)
	s.progress.Engine().POST("/submissions/:id", s.handleSubmit)

	if conf.MySQLDSN != "" {
		sink, err := store.OpenResultSink(conf.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open result sink: %w", err)
		}
		if err := sink.EnsureSchema(context.Background()); err != nil {
			return nil, fmt.Errorf("ensure result sink schema: %w", err)
		}
		s.sink = sink
		s.closers = append(s.closers, sink.Close)
	}

	if conf.RedisURL != "" {
		cache, err := store.OpenProgressCache(conf.RedisURL, conf.RedisPoolSize, time.Hour)
		if err != nil {
			return nil, fmt.Errorf("open progress cache: %w", err)
		}
		s.cache = cache
		s.closers = append(s.closers, cache.Close)
	}

	return s, nil
}

func (s *service) Close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.logger.Warn("error closing service resource", zap.Error(err))
		}
	}
}

// submitRequest is the JSON body accepted at POST /submissions/:id.
type submitRequest struct {
	Kind        string `json:"kind"` // "standard", "answer_submission", or "interactive"
	Language    string `json:"language"`
	Code        string `json:"code"`
	TestData    string `json:"testData"`
	TimeLimit   uint64 `json:"timeLimit"`
	MemoryLimit uint64 `json:"memoryLimit"`
	// Priority overrides Config.Priority for this submission alone; zero
	// (the JSON default) means "use the configured default".
	Priority int `json:"priority"`
}

// handleSubmit decodes a submission, resolves its test data, builds the
// matching Judger, and runs it to completion in the background,
// streaming progress to the progress server and, once finished, to the
// result sink — the data flow named in §2.
func (s *service) handleSubmit(c *gin.Context) {
	id := c.Param("id")

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, files, err := s.loader.Load(req.TestData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("load test data: %v", err)})
		return
	}

	sub := &types.Submission{
		Language:    req.Language,
		Code:        file.NewMemFile("submission", []byte(req.Code)),
		TimeLimit:   req.TimeLimit,
		MemoryLimit: req.MemoryLimit,
	}

	priority := s.conf.Priority
	if req.Priority != 0 {
		priority = req.Priority
	}
	j, err := s.buildJudger(req.Kind, sub, files, data, priority)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orch := &judge.Orchestrator{Judger: j}
	if s.conf.DiagnosticsEnabled {
		orch.Diagnostics = diagnostics.New(diagnostics.Config{
			Enabled:        true,
			MaxTimeRatio:   s.conf.DiagnosticsMaxTimeRatio,
			MaxTime:        s.conf.DiagnosticsMaxTime,
			MaxMemoryRatio: s.conf.DiagnosticsMaxMemoryRatio,
			MaxMemoryMiB:   s.conf.DiagnosticsMaxMemory,
		}, j, sub, s.logger)
	}

	go s.runSubmission(id, orch, data)

	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

func (s *service) buildJudger(kind string, sub *types.Submission, files map[string]file.File, data *types.TestData, priority int) (judge.Judger, error) {
	switch kind {
	case types.TaskAnswerSubmission:
		if data.SPJ == nil {
			return nil, fmt.Errorf("answer_submission requires a special judge")
		}
		return judger.NewAnswerSubmission(s.sender, s.lang, sub, files, data.Name, data.ExtraSourceFiles, data.SPJ, s.conf.DataDisplayLimit, priority), nil
	case types.TaskInteractive:
		if data.Interactor == nil {
			return nil, fmt.Errorf("interactive requires an interactor")
		}
		return judger.NewInteractive(s.sender, s.lang, sub, files, data.Name, data.ExtraSourceFiles, data.Interactor, s.conf.DataDisplayLimit, priority), nil
	default:
		return judger.NewStandard(s.sender, s.lang, sub, files, data.Name, data.ExtraSourceFiles, data.SPJ, s.conf.DataDisplayLimit, priority), nil
	}
}

func (s *service) runSubmission(id string, orch *judge.Orchestrator, data *types.TestData) {
	ctx := context.Background()
	started := time.Now()

	report := func(result *types.JudgeResult) {
		s.progress.Publish(id, result, false, 0, false)
		if s.cache != nil {
			if err := s.cache.Set(ctx, id, result); err != nil {
				s.logger.Warn("cache progress failed", zap.String("id", id), zap.Error(err))
			}
		}
	}

	outcome, err := orch.Run(ctx, data, report)
	if err != nil {
		s.logger.Error("judge run failed", zap.String("id", id), zap.Error(err))
		return
	}
	if outcome.Judge == nil {
		// Compilation failed; nothing further to report as a JudgeResult.
		return
	}

	s.progress.Publish(id, outcome.Judge, true, time.Since(started), outcome.DiagnosticsTriggered)

	if s.sink != nil {
		if err := s.sink.Save(ctx, id, outcome.Judge); err != nil {
			s.logger.Error("save judge result failed", zap.String("id", id), zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			s.logger.Warn("delete cached progress failed", zap.String("id", id), zap.Error(err))
		}
	}
	s.progress.Forget(id)
}
