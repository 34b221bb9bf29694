// Package server exposes the HTTP surface of the signal bot: the
// TradingView webhook relay, the raw-text webhook that feeds the parsing
// pipeline, and the health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/tradeoracle/signal-bot/internal/errors"
	"github.com/tradeoracle/signal-bot/internal/format"
	"github.com/tradeoracle/signal-bot/internal/journal"
	"github.com/tradeoracle/signal-bot/internal/logger"
	"github.com/tradeoracle/signal-bot/internal/monitoring"
	"github.com/tradeoracle/signal-bot/internal/notifications"
	"github.com/tradeoracle/signal-bot/pkg/parser"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

const shutdownTimeout = 5 * time.Second

// Options carries the collaborators the server delivers through.
// Telegram is optional; without it alerts are accepted and formatted but
// not relayed.
type Options struct {
	Pipeline  *signal.Pipeline
	Formatter *format.Formatter
	Telegram  notifications.SignalSender
	Journal   *journal.Journal
	Secret    string
	Signature string

	TelegramConfigured bool
	ChannelConfigured  bool

	Logger *zap.Logger
}

// Server is the webhook HTTP server.
type Server struct {
	router    *gin.Engine
	pipeline  *signal.Pipeline
	formatter *format.Formatter
	telegram  notifications.SignalSender
	journal   *journal.Journal
	secret    string
	signature string

	telegramConfigured bool
	channelConfigured  bool

	log *zap.Logger
}

// New builds the server and its routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Component("server")
	}
	signature := opts.Signature
	if signature == "" {
		signature = format.DefaultSignature
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = format.New(format.StylePremium, signature)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		router:             router,
		pipeline:           opts.Pipeline,
		formatter:          formatter,
		telegram:           opts.Telegram,
		journal:            opts.Journal,
		secret:             opts.Secret,
		signature:          signature,
		telegramConfigured: opts.TelegramConfigured,
		channelConfigured:  opts.ChannelConfigured,
		log:                log,
	}

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(s.requestLogger())
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHome)
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/webhook", s.handleWebhook)
	s.router.POST("/webhook/raw", s.handleRawWebhook)
	s.router.GET("/test", s.handleTest)
	s.router.POST("/test", s.handleTest)
	s.router.GET("/metrics", gin.WrapH(monitoring.NewMetricsHandler()))
}

// Run serves until the context is cancelled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("webhook server listening", zap.Int("port", port))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("webhook server stopping")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)))
	}
}

func (s *Server) handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "running",
		"service":   "TradeOracle Webhook Server",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"telegram_configured": s.telegramConfigured,
		"channel_configured":  s.channelConfigured,
	})
}

// handleWebhook accepts a TradingView alert. Alerts that already carry
// levels are relayed to Telegram as-is; alerts without TP/SL are turned
// into a text instruction and run through the full pipeline. The alert
// body must carry the shared secret when one is configured.
func (s *Server) handleWebhook(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.secret != "" && stringField(data, "secret") != s.secret {
		s.log.Warn("webhook rejected", zap.String("reason", "invalid secret"))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid secret"})
		return
	}

	alert := AlertFromTradingView(data)
	s.log.Info("alert received",
		zap.String("symbol", alert.Symbol),
		zap.String("action", alert.Action),
		zap.Float64("price", alert.Price))

	if !alert.HasLevels() {
		s.processInstruction(c, "webhook", alert.Instruction())
		return
	}

	s.relay(alert.Message(s.signature))
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"signal": alert,
	})
}

// handleRawWebhook accepts a plain-text instruction (or JSON with a
// "message" field) and runs it through the full pipeline.
func (s *Server) handleRawWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := string(raw)
	if c.ContentType() == "application/json" {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		message = body.Message
	}

	s.processInstruction(c, "webhook_raw", message)
}

// processInstruction runs one text instruction through the pipeline and
// fans the outcome out to Telegram, the journal and the metrics.
func (s *Server) processInstruction(c *gin.Context, source, message string) {
	if strings.TrimSpace(message) == "" {
		err := apperrors.NewValidationError("server", source, "empty message body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	res, err := s.pipeline.Process(message)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			monitoring.RecordParseFailure(source, perr.Kind.String())
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formatted := s.formatter.Format(res)
	monitoring.RecordSignal(source, res.Asset, res.Direction, time.Since(started).Seconds())
	monitoring.RecordLevels(res.Unit.String())
	monitoring.UpdateReferencePrice(res.Asset, res.Entry)

	s.relay(formatted.Message)

	if s.journal != nil {
		if err := s.journal.Append(res); err != nil {
			s.log.Warn("could not journal signal", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"signal": res,
	})
}

// relay forwards a rendered message to Telegram when a sender is wired.
func (s *Server) relay(message string) {
	if s.telegram == nil {
		return
	}
	if err := s.telegram.SendSignal(message); err != nil {
		monitoring.RecordDeliveryFailure("telegram")
		s.log.Error("telegram relay failed", zap.Error(err))
	} else {
		monitoring.RecordDelivery("telegram")
	}
}

// handleTest renders a sample alert so deployments can check formatting
// without firing a real TradingView alert.
func (s *Server) handleTest(c *gin.Context) {
	sample := map[string]interface{}{
		"action":   "buy",
		"ticker":   "BTCUSD",
		"close":    65000.0,
		"interval": "5",
		"tp1":      65650.0,
		"tp2":      66300.0,
		"tp3":      68275.0,
		"sl":       64025.0,
	}

	alert := AlertFromTradingView(sample)
	c.JSON(http.StatusOK, gin.H{
		"test_payload":      sample,
		"formatted_message": alert.Message(s.signature),
	})
}
