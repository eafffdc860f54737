package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizkypratama/authguard/pkg/helpers"
)

type authFixture struct {
	router *gin.Engine
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	jwt    *helpers.JWTManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	jwtMgr := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	r := gin.New()
	r.GET("/me", Auth(rdb, jwtMgr), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("userID"),
			"email":   c.GetString("userEmail"),
			"roles":   rolesFromCtx(c),
		})
	})
	return &authFixture{router: r, mr: mr, rdb: rdb, jwt: jwtMgr}
}

func (f *authFixture) seedSession(t *testing.T, uid, sid, roles string) {
	t.Helper()
	f.mr.HSet(helpers.KeySession(uid),
		"sid", sid,
		"user_id", uid,
		"email", "alice@example.com",
		"name", "Alice",
		"roles", roles,
	)
}

func (f *authFixture) get(t *testing.T, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: cookie})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuth_HappyPath(t *testing.T) {
	f := newAuthFixture(t)
	f.seedSession(t, "u1", "s1", "user,admin")
	tok, _, err := f.jwt.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)

	w := f.get(t, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestAuth_MissingCookie(t *testing.T) {
	f := newAuthFixture(t)
	w := f.get(t, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_BadToken(t *testing.T) {
	f := newAuthFixture(t)
	w := f.get(t, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NoSession(t *testing.T) {
	f := newAuthFixture(t)
	tok, _, err := f.jwt.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)

	w := f.get(t, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_SupersededSession(t *testing.T) {
	// logging in elsewhere rotates the sid; old tokens stop working
	f := newAuthFixture(t)
	f.seedSession(t, "u1", "s2", "user")
	tok, _, err := f.jwt.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)

	w := f.get(t, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "superseded")
}

func TestSplitRoles(t *testing.T) {
	assert.Nil(t, splitRoles(""))
	assert.Equal(t, []string{"user"}, splitRoles("user"))
	assert.Equal(t, []string{"user", "admin"}, splitRoles("user, admin"))
	assert.Equal(t, []string{"user"}, splitRoles("user,,"))
}
