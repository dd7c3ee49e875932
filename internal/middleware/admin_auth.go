package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"noticeboard/internal/constants"
)

// AdminAuth 管理员认证中间件，校验 Authorization: Bearer <token> 与配置的 bcrypt 哈希。
// 未配置哈希时管理接口整体关闭。
func AdminAuth(tokenHash string) gin.HandlerFunc {
	hash := []byte(strings.TrimSpace(tokenHash))
	return func(c *gin.Context) {
		if len(hash) == 0 {
			c.JSON(http.StatusOK, gin.H{"code": 403, "msg": constants.ErrAdminDisabled})
			c.Abort()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.JSON(http.StatusOK, gin.H{"code": 401, "msg": constants.ErrUnauthorized})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
			c.JSON(http.StatusOK, gin.H{"code": 403, "msg": constants.ErrInsufficientPermission})
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
