package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResponseMetaCollectsDegradedDimensions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/classes", func(c *gin.Context) {
		SetDegraded(c, nil)
		SetDegraded(c, []string{"teachers"})
		meta = ResponseMeta(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/classes", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"teachers"}, meta["degraded"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestResponseMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, ExtractMeta(c))
	meta := ResponseMeta(c)
	assert.NotNil(t, meta)
	assert.NotContains(t, meta, "processing_time_ms")
	assert.Nil(t, ExtractMeta(nil))
}
