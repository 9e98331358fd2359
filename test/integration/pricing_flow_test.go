//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/richxcame/bid-pricing/internal/auth"
	"github.com/richxcame/bid-pricing/internal/history"
	"github.com/richxcame/bid-pricing/internal/model"
	"github.com/richxcame/bid-pricing/internal/pricing"
	"github.com/richxcame/bid-pricing/pkg/common"
	"github.com/richxcame/bid-pricing/pkg/middleware"
)

// artefactJSON is a two-tree ensemble keyed on the bid price: margins fall as
// the price grows, giving a declining acceptance curve.
const artefactJSON = `{
  "schema_version": 1,
  "feature_names": ["price_bid_local", "distance_km", "duration_min"],
  "base_score": 0.0,
  "trees": [
    {
      "feature": [0, -1, -1],
      "threshold": [500, 0, 0],
      "left": [1, 0, 0],
      "right": [2, 0, 0],
      "value": [0, 1.5, -0.5]
    },
    {
      "feature": [0, -1, -1],
      "threshold": [700, 0, 0],
      "left": [1, 0, 0],
      "right": [2, 0, 0],
      "value": [0, 0.5, -1.0]
    }
  ]
}`

// PricingFlowTestSuite exercises the full HTTP surface: token issuance, the
// guarded recommendation route, and the unauthenticated endpoints.
type PricingFlowTestSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func TestPricingFlowSuite(t *testing.T) {
	suite.Run(t, new(PricingFlowTestSuite))
}

func (s *PricingFlowTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	dir := s.T().TempDir()
	modelPath := filepath.Join(dir, "model_enhanced.json")
	require.NoError(s.T(), os.WriteFile(modelPath, []byte(artefactJSON), 0o644))

	authService, err := auth.NewService("integration-secret", "demo@example.com", "demo", time.Hour)
	require.NoError(s.T(), err)

	cache := history.Load(filepath.Join(dir, "absent-users.csv"), filepath.Join(dir, "absent-drivers.csv"))
	loader := model.NewLoader(modelPath)
	loadPredictor := func() (pricing.Predictor, error) {
		artefact, err := loader.Load()
		if err != nil {
			return nil, err
		}
		return artefact, nil
	}

	builder := pricing.NewFeatureBuilder(cache, pricing.DefaultFuelParams)
	pricingService := pricing.NewService(loadPredictor, builder, 100, pricing.DefaultFuelParams, false, nil)

	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery())
	router.GET("/health", common.HealthCheck())

	auth.NewHandler(authService).RegisterRoutes(router)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(authService))
	pricing.NewHandler(pricingService).RegisterRoutes(api)

	s.router = router
	s.token = s.obtainToken()
}

func (s *PricingFlowTestSuite) obtainToken() string {
	form := url.Values{"username": {"demo@example.com"}, "password": {"demo"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var resp auth.TokenResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (s *PricingFlowTestSuite) recommend(token string, payload map[string]interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/price-recommendation", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func orderPayload() map[string]interface{} {
	return map[string]interface{}{
		"order_timestamp":     time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC).Unix(),
		"distance_in_meters":  15000,
		"duration_in_seconds": 1800,
		"pickup_in_meters":    1200,
		"pickup_in_seconds":   240,
		"driver_rating":       4.8,
		"platform":            "android",
		"price_start_local":   550,
	}
}

func (s *PricingFlowTestSuite) TestHealthEndpoint() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ok")
}

func (s *PricingFlowTestSuite) TestRecommendationRequiresToken() {
	w := s.recommend("", orderPayload())
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Bearer", w.Header().Get("WWW-Authenticate"))
}

func (s *PricingFlowTestSuite) TestRecommendationRejectsBadToken() {
	w := s.recommend("not-a-real-token", orderPayload())
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *PricingFlowTestSuite) TestFullRecommendationFlow() {
	w := s.recommend(s.token, orderPayload())
	s.Require().Equal(http.StatusOK, w.Code)

	var resp pricing.ModelResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))

	s.NotEmpty(resp.Zones)
	s.Greater(resp.OptimalPrice.Price, 0.0)
	s.GreaterOrEqual(resp.OptimalPrice.Price, 550.0)
	s.Equal(74.25, resp.FuelEconomics.FuelCost)
	s.Equal(550.0, resp.Analysis.StartPrice)
	s.NotEmpty(resp.Analysis.Timestamp)
}

func (s *PricingFlowTestSuite) TestRecommendationValidation() {
	payload := orderPayload()
	payload["platform"] = "symbian"

	w := s.recommend(s.token, payload)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(w.Body.String(), "detail")
}
