// Command routefinder-server exposes planservice.FindBestPlans over a
// thin HTTP API (spec.md §6's statement that wire wrappers live outside
// the core library).
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/atomic"

	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/planservice"
	"github.com/mExOms/routefinder/internal/tolerance"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
	"github.com/mExOms/routefinder/pkg/wire"
)

type server struct {
	logger        *logrus.Entry
	cache         *redis.Client
	requestsTotal *atomic.Int64
	requestsFailed *atomic.Int64
}

type planRequest struct {
	Source          string                    `json:"source"`
	Target          string                    `json:"target"`
	SpendMin        money.Money               `json:"spendMin"`
	SpendMax        money.Money               `json:"spendMax"`
	Desired         *money.Money              `json:"desired,omitempty"`
	MinHops         int                       `json:"minHops"`
	MaxHops         int                       `json:"maxHops"`
	Tolerance       string                    `json:"tolerance"`
	ToleranceMin    string                    `json:"toleranceWindowMin"`
	ToleranceMax    string                    `json:"toleranceWindowMax"`
	TopK            int                       `json:"topK"`
	MaxExpansions   int                       `json:"maxExpansions"`
	MaxVisitedStates int                      `json:"maxVisitedStates"`
	TimeBudgetMs    int64             `json:"timeBudgetMs,omitempty"`
	Orders          []wire.OrderWire  `json:"orders"`

	DisjointPlans      *bool `json:"disjointPlans,omitempty"`
	ThrowOnGuardBreach bool  `json:"throwOnGuardBreach,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/configs")
	viper.AddConfigPath("./configs")
	viper.SetDefault("server.addr", ":8090")
	viper.SetDefault("server.read_timeout_seconds", 15)
	viper.SetDefault("server.write_timeout_seconds", 15)
	if err := viper.ReadInConfig(); err != nil {
		logger.WithError(err).Warn("no config file found, using defaults and environment")
	}

	var cache *redis.Client
	if addr := viper.GetString("cache.redis_addr"); addr != "" {
		cache = redis.NewClient(&redis.Options{Addr: addr})
		logger.WithField("addr", addr).Info("enabled redis-backed plan cache")
	}

	srv := &server{
		logger:         logger.WithField("component", "routefinder-server"),
		cache:          cache,
		requestsTotal:  atomic.NewInt64(0),
		requestsFailed: atomic.NewInt64(0),
	}

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, r)
		})
	})

	api := router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/plans", srv.handleFindPlans).Methods(http.MethodPost)
	api.HandleFunc("/health", srv.handleHealth).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:         viper.GetString("server.addr"),
		Handler:      router,
		ReadTimeout:  time.Duration(viper.GetInt("server.read_timeout_seconds")) * time.Second,
		WriteTimeout: time.Duration(viper.GetInt("server.write_timeout_seconds")) * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("server shutdown error")
		}
	}()

	logger.WithField("addr", httpServer.Addr).Info("routefinder-server starting")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("server error")
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"requestsTotal":   s.requestsTotal.Load(),
		"requestsFailed":  s.requestsFailed.Load(),
	})
}

func (s *server) handleFindPlans(w http.ResponseWriter, r *http.Request) {
	s.requestsTotal.Inc()
	body, err := readAll(r)
	if err != nil {
		s.requestsFailed.Inc()
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var reqBody planRequest
	if err := json.Unmarshal(body, &reqBody); err != nil {
		s.requestsFailed.Inc()
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cacheKey := cacheKeyFor(body)
	if s.cache != nil {
		if cached, err := s.cache.Get(r.Context(), cacheKey).Result(); err == nil {
			w.Header().Set("X-Cache", "hit")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		}
	}

	request, err := toPlanRequest(reqBody)
	if err != nil {
		s.requestsFailed.Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := planservice.FindBestPlans(request)
	if err != nil {
		s.requestsFailed.Inc()
		s.logger.WithError(err).Warn("plan search failed")
		status := http.StatusUnprocessableEntity
		var invalid *planservice.InvalidInputError
		var guard *planservice.GuardLimitExceededError
		switch {
		case asError(err, &invalid):
			status = http.StatusBadRequest
		case asError(err, &guard):
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		s.requestsFailed.Inc()
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	if s.cache != nil {
		s.cache.Set(r.Context(), cacheKey, payload, 30*time.Second)
	}

	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func toPlanRequest(reqBody planRequest) (planservice.Request, error) {
	tol, err := decimalOrZero(reqBody.Tolerance, 18)
	if err != nil {
		return planservice.Request{}, err
	}
	windowMin, err := decimalOrZero(reqBody.ToleranceMin, tolerance.ResidualScale)
	if err != nil {
		return planservice.Request{}, err
	}
	windowMax, err := decimalOrZero(reqBody.ToleranceMax, tolerance.ResidualScale)
	if err != nil {
		return planservice.Request{}, err
	}

	orders := make([]*orderbook.Order, 0, len(reqBody.Orders))
	for _, o := range reqBody.Orders {
		order, err := o.ToOrder()
		if err != nil {
			return planservice.Request{}, err
		}
		orders = append(orders, order)
	}

	req := planservice.Request{
		Source:           reqBody.Source,
		Target:           reqBody.Target,
		SpendMin:         reqBody.SpendMin,
		SpendMax:         reqBody.SpendMax,
		Desired:          reqBody.Desired,
		MinHops:          reqBody.MinHops,
		MaxHops:          reqBody.MaxHops,
		Tolerance:        tol,
		ToleranceWindow:  tolerance.Window{Min: windowMin, Max: windowMax},
		TopK:             reqBody.TopK,
		MaxExpansions:    reqBody.MaxExpansions,
		MaxVisitedStates: reqBody.MaxVisitedStates,
		Orders:           orders,

		DisjointPlans:      reqBody.DisjointPlans,
		ThrowOnGuardBreach: reqBody.ThrowOnGuardBreach,
	}
	if reqBody.TimeBudgetMs > 0 {
		d := time.Duration(reqBody.TimeBudgetMs) * time.Millisecond
		req.TimeBudget = &d
	}
	return req, nil
}

func decimalOrZero(s string, scale int32) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero(scale)
	}
	return decimal.NewFromString(s, scale)
}

func cacheKeyFor(body []byte) string {
	sum := sha256.Sum256(body)
	return "routefinder:plan:" + hex.EncodeToString(sum[:])
}

func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// asError matches err's concrete type against the planservice error
// type target points to, by direct type assertion; wrapped errors are
// not unwrapped.
func asError(err error, target interface{}) bool {
	switch t := target.(type) {
	case **planservice.InvalidInputError:
		if v, ok := err.(*planservice.InvalidInputError); ok {
			*t = v
			return true
		}
	case **planservice.GuardLimitExceededError:
		if v, ok := err.(*planservice.GuardLimitExceededError); ok {
			*t = v
			return true
		}
	}
	return false
}
