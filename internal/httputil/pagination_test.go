package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func paginationContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/expenses"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
		wantErr    bool
	}{
		{name: "Defaults", query: "", wantOffset: 0, wantLimit: 50},
		{name: "ExplicitValues", query: "?offset=20&limit=10", wantOffset: 20, wantLimit: 10},
		{name: "MaxLimit", query: "?limit=100", wantOffset: 0, wantLimit: 100},
		{name: "NegativeOffset", query: "?offset=-1", wantErr: true},
		{name: "NonNumericOffset", query: "?offset=abc", wantErr: true},
		{name: "ZeroLimit", query: "?limit=0", wantErr: true},
		{name: "LimitAboveMax", query: "?limit=101", wantErr: true},
		{name: "NonNumericLimit", query: "?limit=ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit, err := ParsePagination(paginationContext(t, tt.query))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
