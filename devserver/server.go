// Package devserver serves the contact handlers over plain HTTP so they can be
// exercised locally, typically against DynamoDB Local.
//
// Requests are translated into API Gateway proxy events and passed to the
// same [api.Handler] methods the Lambda functions use, so responses are
// byte-for-byte what API Gateway would return.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/slackmgr/contacts/api"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var buckets = metrics.ExponentialBuckets(1e-3, 5, 6)

type proxyFunc func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Server routes HTTP requests to an [api.Handler].
type Server struct {
	router  chi.Router
	metrics *metrics.Set
	logger  logrus.FieldLogger
}

// New builds the router:
//
//	GET  /contacts       list
//	GET  /contacts/{id}  get
//	POST /contacts       create
//	GET  /metrics        Prometheus metrics
//	GET  /liveness       200 OK
func New(h *api.Handler, logger logrus.FieldLogger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		metrics: metrics.NewSet(),
		logger:  logger.WithField("component", "devserver"),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		s.metrics.WritePrometheus(w)
	})

	s.router.Get("/contacts", s.proxy(h.ListContacts))
	s.router.Post("/contacts", s.proxy(h.CreateContact))
	s.router.Get("/contacts/{"+api.ContactIDParam+"}", s.proxy(h.GetContact))

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Infof("Listening on %s", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		s.logger.Info("Server closed")

		return nil
	})

	return g.Wait()
}

// proxy adapts a proxy-integration handler to net/http.
func (s *Server) proxy(fn proxyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		resp, err := fn(r.Context(), toProxyRequest(r, body))
		if err != nil {
			s.logger.Errorf("Handler returned an error: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}

		for k, vs := range resp.MultiValueHeaders {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}

		w.WriteHeader(resp.StatusCode)

		if resp.Body != "" {
			_, _ = io.WriteString(w, resp.Body)
		}
	}
}

func toProxyRequest(r *http.Request, body []byte) events.APIGatewayProxyRequest {
	route := chi.RouteContext(r.Context())

	pathParams := make(map[string]string, len(route.URLParams.Keys))
	for i, key := range route.URLParams.Keys {
		pathParams[key] = route.URLParams.Values[i]
	}

	query := r.URL.Query()

	return events.APIGatewayProxyRequest{
		Resource:                        route.RoutePattern(),
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         firstValues(r.Header),
		MultiValueHeaders:               r.Header,
		QueryStringParameters:           firstValues(query),
		MultiValueQueryStringParameters: query,
		PathParameters:                  pathParams,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  middleware.GetReqID(r.Context()),
			HTTPMethod: r.Method,
			Stage:      "local",
		},
		Body: string(body),
	}
}

func firstValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// observe logs every request and records request counters and durations
// labelled by method, route pattern and status.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		labels := fmt.Sprintf(`{method="%s",path="%s",status="%d"}`, r.Method, route, status)
		s.metrics.GetOrCreateCounter("http_requests_total" + labels).Inc()
		s.metrics.GetOrCreatePrometheusHistogramExt("http_request_duration_seconds"+labels, buckets).UpdateDuration(start)

		s.logger.
			WithField("request_id", middleware.GetReqID(r.Context())).
			WithField("status", status).
			WithField("duration", time.Since(start)).
			WithField("user_agent", r.UserAgent()).
			Infof("%s %s %s", r.Method, r.URL.Path, r.Proto)
	})
}
