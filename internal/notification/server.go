package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DigitalPlayLoad/monitor-notificacoes/pkg/middleware"
)

// shutdownTimeout はRun終了時にリクエストの完了を待つ最大時間。
const shutdownTimeout = 10 * time.Second

// duplicateIgnoredMessage は重複時のレスポンスメッセージ。既存クライアントとの互換のため固定。
const duplicateIgnoredMessage = "duplicate ignored"

// ServerConfig はHTTPサーバーの設定。
type ServerConfig struct {
	// Port はリッスンポート。
	Port string
	// JWTSecret は削除系エンドポイントを保護するJWTの署名鍵。空なら認証しない。
	JWTSecret string
	// AllowedOrigins はCORSを許可するオリジン。
	AllowedOrigins []string
}

// Server は通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサーバー設定。
	cfg ServerConfig
	// pipeline は通知の取り込みを行う。
	pipeline *Pipeline
	// service は一覧取得と削除を行う。
	service *Service
	// checker は重複判定を行う。ヘルスチェックで失敗回数を公開する。
	checker *Checker
}

// NewServer は新しい通知サーバーを生成する。
// ストアを含む依存はすべて呼び出し側で組み立てて渡す。
func NewServer(cfg ServerConfig, pipeline *Pipeline, service *Service, checker *Checker) *Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.AllowedOrigins))
	}

	s := &Server{
		router:   router,
		cfg:      cfg,
		pipeline: pipeline,
		service:  service,
		checker:  checker,
	}
	s.setupRoutes()

	return s
}

// Handler はルーティング済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("シャットダウンを開始します")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("シャットダウンに失敗: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 通知一覧取得
	s.router.GET("/notifications", s.handleList())
	// 通知の受信（フォーム形式）
	s.router.POST("/api/notification", s.handleReceive())

	// 削除系は署名鍵が設定されていればJWTで保護する
	admin := s.router.Group("")
	if s.cfg.JWTSecret != "" {
		admin.Use(middleware.JWTAuth(s.cfg.JWTSecret))
	}
	{
		// ID指定の削除
		admin.DELETE("/api/notification/:id", s.handleDelete())
		// 1ページ分の一括削除
		admin.POST("/clear", s.handleClear())
	}

	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())
}

// errorResponse は失敗時のJSONレスポンスを返す。
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// handleList は保存済み通知を新しい順に返すハンドラ。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				errorResponse(c, http.StatusBadRequest, "limitは正の整数で指定してください")
				return
			}
			limit = n
		}

		notifications, err := s.service.List(c.Request.Context(), limit)
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("通知一覧の取得に失敗しました: %v", err))
			log.Printf("通知一覧取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, notifications)
	}
}

// handleReceive はフォーム形式で届いた通知を取り込むハンドラ。
// 保存した場合も重複として見送った場合も200を返す。
func (s *Server) handleReceive() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := RawNotification{
			AppName: c.PostForm("appName"),
			Title:   c.PostForm("title"),
			Text:    c.PostForm("text"),
			Macro:   c.PostForm("macro"),
		}

		result, err := s.pipeline.Ingest(c.Request.Context(), raw)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				errorResponse(c, http.StatusBadRequest, ve.Message)
				return
			}
			errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("通知の処理に失敗しました: %v", err))
			log.Printf("通知取り込みエラー (app=%q): %v", raw.AppName, err)
			return
		}

		if result.Status == StatusDuplicateIgnored {
			log.Printf("重複した通知を無視しました (app=%q)", raw.AppName)
			c.JSON(http.StatusOK, gin.H{"status": "success", "message": duplicateIgnoredMessage})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "通知を受信しました",
			"id":      result.ID,
		})
	}
}

// handleDelete は指定されたIDの通知を削除するハンドラ。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if err := s.service.DeleteByID(c.Request.Context(), id); err != nil {
			if errors.Is(err, ErrNotFound) {
				errorResponse(c, http.StatusNotFound, "通知が見つかりません")
				return
			}
			errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("通知の削除に失敗しました: %v", err))
			log.Printf("通知削除エラー (id=%s): %v", id, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "通知を削除しました"})
	}
}

// handleClear は1ページ分の通知を一括削除するハンドラ。
// 件数がページサイズに達した場合はまだ残りがある可能性がある。
func (s *Server) handleClear() gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := s.service.ClearPage(c.Request.Context())
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("通知の一括削除に失敗しました: %v", err))
			log.Printf("通知一括削除エラー: %v", err)
			return
		}

		message := fmt.Sprintf("%d件の通知を削除しました", deleted)
		if deleted == 0 {
			message = "削除する通知はありません"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"message":      message,
			"deletedCount": deleted,
			"hasMore":      deleted >= s.service.PageSize(),
		})
	}
}

// handleHealth はヘルスチェックのハンドラ。重複チェックの失敗回数も返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":             "ok",
			"service":            "notifier",
			"dedupCheckFailures": s.checker.Failures(),
		})
	}
}
