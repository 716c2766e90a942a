package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

const (
	HeaderShopDomain = "X-Shop-Domain"
	ContextShop      = "shop_domain"
)

var shopDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.myshopify\.com$`)

// ValidateShop resolves the tenant for unauthenticated storefront
// requests from the shop-domain header or query parameter. Every
// downstream query is scoped by this value.
func ValidateShop() gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.GetHeader(HeaderShopDomain)
		if shop == "" {
			shop = c.Query("shop")
		}

		if shop == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "shop domain is required",
			})
			return
		}

		if !shopDomainPattern.MatchString(shop) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "invalid shop domain format",
			})
			return
		}

		c.Set(ContextShop, shop)
		c.Next()
	}
}

// ShopFromContext returns the tenant set by ValidateShop or the
// session middleware.
func ShopFromContext(c *gin.Context) string {
	return c.GetString(ContextShop)
}
