package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"paper-trader-go/internal/analysis"
	"paper-trader-go/internal/bot"
	"paper-trader-go/internal/ledger"
	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/models"
	"paper-trader-go/internal/paper"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler holds dependencies for the API endpoints.
type Handler struct {
	log        *zap.Logger
	store      ledger.Store
	market     *marketdata.Router
	executor   *paper.Executor
	reconciler *paper.Reconciler
	valuator   *paper.Valuator
	account    *paper.Account
	bot        *bot.Bot
}

// NewHandler creates a new Handler.
func NewHandler(
	log *zap.Logger,
	store ledger.Store,
	market *marketdata.Router,
	executor *paper.Executor,
	reconciler *paper.Reconciler,
	valuator *paper.Valuator,
	account *paper.Account,
	trader *bot.Bot,
) *Handler {
	return &Handler{
		log:        log,
		store:      store,
		market:     market,
		executor:   executor,
		reconciler: reconciler,
		valuator:   valuator,
		account:    account,
		bot:        trader,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.healthHandler)

	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Post("/", h.registerHandler)
		r.Get("/profile", h.getProfileHandler)
		r.Put("/profile", h.putProfileHandler)
		r.Post("/orders", h.orderHandler)
		r.Get("/performance", h.performanceHandler)
		r.Get("/balance", h.balanceHandler)
		r.Post("/reset", h.resetHandler)
		r.Get("/bot-settings", h.getBotSettingsHandler)
		r.Put("/bot-settings", h.putBotSettingsHandler)
		r.Get("/analysis", h.analysisHandler)
	})

	return r
}

// credential extracts the opaque bearer token forwarded to the ledger
// store. The core does not validate it; the store does.
func credential(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (h *Handler) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := h.account.Bootstrap(r.Context(), userID, credential(r), req.Email, req.Username); err != nil {
		h.log.Error("Registration bootstrap failed", zap.String("user_id", userID), zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not create account"})
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id": userID,
		"balance": paper.StartingBalance,
	})
}

func (h *Handler) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	profile, err := h.store.Profile(r.Context(), userID, credential(r))
	if err != nil {
		if errors.Is(err, ledger.ErrProfileNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no profile"})
			return
		}
		h.log.Error("Profile read failed", zap.String("user_id", userID), zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not read profile"})
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

type profileRequest struct {
	Username        string `json:"username"`
	RiskTolerance   string `json:"risk_tolerance"`
	ExperienceLevel string `json:"experience_level"`
	PreferredMarket string `json:"preferred_market"`
}

func (h *Handler) putProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	userID := chi.URLParam(r, "userID")
	cred := credential(r)

	// Merge onto the stored record: only the descriptive fields are
	// user-mutable. The cached balance belongs to the executor and the
	// reconciler and must survive a profile update untouched.
	profile, err := h.store.Profile(r.Context(), userID, cred)
	if err != nil {
		if errors.Is(err, ledger.ErrProfileNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no profile"})
			return
		}
		h.log.Error("Profile read failed", zap.String("user_id", userID), zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not read profile"})
		return
	}

	if req.Username != "" {
		profile.Username = req.Username
	}
	if req.RiskTolerance != "" {
		profile.RiskTolerance = req.RiskTolerance
	}
	if req.ExperienceLevel != "" {
		profile.ExperienceLevel = req.ExperienceLevel
	}
	if req.PreferredMarket != "" {
		profile.PreferredMarket = req.PreferredMarket
	}

	if err := h.store.SaveProfile(r.Context(), userID, cred, *profile); err != nil {
		h.log.Error("Profile save failed", zap.String("user_id", userID), zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not save profile"})
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

type orderRequest struct {
	AssetID  string  `json:"asset_id"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Note     string  `json:"note"`
}

func (h *Handler) orderHandler(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	userID := chi.URLParam(r, "userID")
	result := h.executor.Execute(r.Context(), userID, credential(r),
		req.AssetID, models.Side(strings.ToUpper(req.Side)), req.Quantity, req.Note)

	h.writeJSON(w, statusForResult(result), result)
}

// statusForResult maps the order outcome onto an HTTP status. Business
// rejections stay 4xx so the caller can show the reason; store failures
// are upstream problems.
func statusForResult(res paper.Result) int {
	if res.OK {
		return http.StatusCreated
	}
	switch res.Reason {
	case paper.ReasonValidation:
		return http.StatusBadRequest
	case paper.ReasonInsufficientFunds, paper.ReasonInsufficientHoldings:
		return http.StatusConflict
	case paper.ReasonMarketUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) performanceHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	cred := credential(r)

	// Automated strategy checks run inline on report fetches; there is no
	// background scheduler.
	botResult := h.bot.CheckAndTrade(r.Context(), userID, cred)

	// Heal any cached-balance drift before reporting.
	if _, err := h.reconciler.Reconcile(r.Context(), userID, cred); err != nil {
		h.log.Error("Reconcile failed", zap.String("user_id", userID), zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not read trade history"})
		return
	}

	perf, err := h.valuator.Performance(r.Context(), userID, cred)
	if err != nil {
		h.log.Error("Performance aggregation failed", zap.String("user_id", userID), zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not read trade history"})
		return
	}

	resp := map[string]interface{}{"performance": perf}
	if botResult != nil {
		resp["bot_result"] = botResult
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) balanceHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	balance, err := h.reconciler.Reconcile(r.Context(), userID, credential(r))
	if err != nil {
		h.log.Error("Reconcile failed", zap.String("user_id", userID), zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not read trade history"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

func (h *Handler) resetHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.account.Reset(r.Context(), userID, credential(r)); err != nil {
		h.log.Error("Reset failed", zap.String("user_id", userID), zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not reset account"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{"balance": paper.StartingBalance})
}

func (h *Handler) getBotSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	settings, err := h.store.BotSettings(r.Context(), userID, credential(r))
	if err != nil {
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not read bot settings"})
		return
	}
	if settings == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no bot settings"})
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) putBotSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var settings models.BotSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := h.store.SaveBotSettings(r.Context(), userID, credential(r), settings); err != nil {
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not save bot settings"})
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) analysisHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	cred := credential(r)

	assetID := r.URL.Query().Get("asset_id")
	risk := "medium"
	indicators := ""
	if settings, err := h.store.BotSettings(r.Context(), userID, cred); err == nil && settings != nil {
		if assetID == "" {
			assetID = settings.SelectedAsset
		}
		risk = settings.RiskTolerance
		indicators = settings.ActiveIndicators
	}
	if assetID == "" {
		assetID = "crypto_btc_usd"
	}

	symbol, _ := h.market.Route(assetID)
	candles := h.market.Candles(r.Context(), assetID, "1h", 50)
	closes := analysis.Closes(candles)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"asset_id":   assetID,
		"symbol":     symbol,
		"price":      h.market.Price(r.Context(), assetID),
		"rsi":        analysis.RSI(closes, 14),
		"sma":        analysis.SMA(closes, 20),
		"commentary": analysis.Commentary(assetID, risk, indicators),
	})
}
