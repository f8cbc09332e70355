package metrics

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	requestsTotal     *prometheus.CounterVec
	photoUploadsTotal prometheus.Counter
)

// InitMetrics registers the service collectors. Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctuarypics_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"})

		photoUploadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sanctuarypics_photo_uploads_total",
			Help: "Photos uploaded successfully.",
		})

		prometheus.MustRegister(requestsTotal, photoUploadsTotal)
	})
}

// Middleware counts every served request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if requestsTotal == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RecordUpload bumps the upload counter.
func RecordUpload() {
	if photoUploadsTotal != nil {
		photoUploadsTotal.Inc()
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
