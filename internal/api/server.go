// Package api exposes the slot and swap services over JSON HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	Users          *service.UserService
	Slots          *service.SlotService
	Swaps          *service.SwapService
	JWTSecret      []byte
	AllowedOrigins []string
	// WriteRate limits mutating requests per user; zero disables the limit.
	WriteRate  rate.Limit
	WriteBurst int
	Logger     *zap.Logger
	Now        func() time.Time
}

type Server struct {
	users   *service.UserService
	slots   *service.SlotService
	swaps   *service.SwapService
	secret  []byte
	origins []string
	limiter *userLimiter
	logger  *zap.Logger
	now     func() time.Time
}

func NewServer(opts Options) *Server {
	s := &Server{
		users:   opts.Users,
		slots:   opts.Slots,
		swaps:   opts.Swaps,
		secret:  opts.JWTSecret,
		origins: opts.AllowedOrigins,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	if opts.WriteRate > 0 {
		s.limiter = newUserLimiter(opts.WriteRate, max(opts.WriteBurst, 1))
	}
	return s
}

// Handler builds the router wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.GET("/health", s.handleHealth)

	router.GET("/api/slots", s.authenticate(s.handleListSlots))
	router.POST("/api/slots", s.authenticate(s.limit(s.handleCreateSlot)))
	router.GET("/api/slots/:id", s.authenticate(s.handleGetSlot))
	router.PUT("/api/slots/:id", s.authenticate(s.limit(s.handleUpdateSlot)))
	router.DELETE("/api/slots/:id", s.authenticate(s.limit(s.handleDeleteSlot)))

	router.GET("/api/swappable-slots", s.authenticate(s.handleListSwappable))

	router.POST("/api/swap-request", s.authenticate(s.limit(s.handleCreateSwapRequest)))
	router.GET("/api/swap-requests/incoming", s.authenticate(s.handleIncoming))
	router.GET("/api/swap-requests/outgoing", s.authenticate(s.handleOutgoing))
	router.POST("/api/swap-response/:id", s.authenticate(s.limit(s.handleRespond)))

	router.GET("/api/calendar.ics", s.authenticate(s.handleCalendar))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	return s.logRequests(corsHandler)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
