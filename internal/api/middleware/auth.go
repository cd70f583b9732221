package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/jwt"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/response"
)

// TokenChecker Token 黑名单查询，由 pkg/redis.Client 实现
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// blacklist 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		claims, msg := parseAccessToken(c, jwtMgr, blacklist, authHeader)
		if claims == nil {
			response.Unauthorized(c, 10002, msg)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth 可选认证：携带有效 Token 时注入用户信息，否则按匿名继续
// 用于扫码落地页识别持有者本人
func OptionalJWTAuth(jwtMgr *jwt.Manager, blacklist TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if claims, _ := parseAccessToken(c, jwtMgr, blacklist, authHeader); claims != nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// parseAccessToken 校验失败时返回 nil 与面向客户端的提示
func parseAccessToken(c *gin.Context, jwtMgr *jwt.Manager, blacklist TokenChecker, authHeader string) (*jwt.Claims, string) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "认证头格式无效"
	}

	claims, err := jwtMgr.ParseToken(parts[1])
	if err != nil {
		return nil, "Token 无效或已过期"
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return nil, "Token 类型无效"
	}

	if blacklist != nil {
		revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		// Redis 出错时降级放行
		if err == nil && revoked {
			return nil, "Token 已注销"
		}
	}
	return claims, ""
}

// setClaims 将用户信息注入上下文
func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
	c.Set("token_jti", claims.ID)
	if claims.ExpiresAt != nil {
		c.Set("token_exp", claims.ExpiresAt.Time)
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
