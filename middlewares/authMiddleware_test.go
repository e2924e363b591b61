package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/cityreport_bot/utils"
)

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", AuthMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d", w.Code)
	}
}

func TestAuthMiddlewarePutsClaimInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen *utils.JwtCustomClaim
	r := gin.New()
	r.GET("/guarded", AuthMiddleware(), func(c *gin.Context) {
		seen = CtxValue(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	token, err := utils.JwtGenerate(7, "ops")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("valid token: status = %d", w.Code)
	}
	if seen == nil {
		t.Fatal("claim missing from request context")
	}
	if seen.UserID != 7 || seen.Username != "ops" {
		t.Fatalf("claim = %+v", seen)
	}
}
