package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/movielog/internal/utils"
)

const tokenIssuer = "movielog"

// Claims API Token 声明
type Claims struct {
	Owner string `json:"owner"`
	jwt.RegisteredClaims
}

// RequireToken API 鉴权中间件，secret 为空时不做校验（本机单用户模式）
func RequireToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		claims, err := extractClaims(c, secret)
		if err != nil {
			utils.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set("owner", claims.Owner)
		c.Next()
	}
}

// GetOwner 从上下文获取 Token 持有人（未鉴权返回空字符串）
func GetOwner(c *gin.Context) string {
	return c.GetString("owner")
}

// extractClaims 从 Authorization Header 或 token 查询参数中提取 Claims
func extractClaims(c *gin.Context, secret string) (*Claims, error) {
	var tokenString string
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	} else {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return nil, jwt.ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// GenerateToken 生成 API Token
func GenerateToken(owner, secret string, expiry time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("secret is empty")
	}
	now := time.Now()
	claims := &Claims{
		Owner: owner,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   owner,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
