package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func shopTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ValidateShop())
	r.GET("/t", func(c *gin.Context) {
		c.String(http.StatusOK, ShopFromContext(c))
	})
	return r
}

func TestValidateShopHeader(t *testing.T) {
	r := shopTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderShopDomain, "demo.myshopify.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "demo.myshopify.com", w.Body.String())
}

func TestValidateShopQueryFallback(t *testing.T) {
	r := shopTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t?shop=demo.myshopify.com", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidateShopMissing(t *testing.T) {
	r := shopTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidateShopBadFormat(t *testing.T) {
	r := shopTestRouter()

	for _, shop := range []string{
		"not-a-shop",
		"demo.example.com",
		"demo.myshopify.com.evil.com",
		"-leading.myshopify.com",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		req.Header.Set(HeaderShopDomain, shop)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "shop %q should be rejected", shop)
	}
}
