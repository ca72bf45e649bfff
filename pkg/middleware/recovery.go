package middleware

import (
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// internalErrorMessage はパニックから回復した際に返すメッセージ。
const internalErrorMessage = "内部サーバーエラーが発生しました"

// Recovery はハンドラ内のパニックを500のJSONレスポンスに変換するGinミドルウェアを返す。
// http.ErrAbortHandler はnet/httpが接続の中断に使う値なので、そのまま再送出する。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			route := c.FullPath()
			if route == "" {
				route = c.Request.URL.Path
			}
			log.Printf("[PANIC] %s %s: %v\n%s", c.Request.Method, route, r, debug.Stack())

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": internalErrorMessage,
			})
		}()
		c.Next()
	}
}
