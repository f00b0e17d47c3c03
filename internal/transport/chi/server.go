// Package chi exposes the litswap HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/domain"
	healthuc "github.com/litswap/litswap/internal/usecase/health"
	marketuc "github.com/litswap/litswap/internal/usecase/market"
	recommenduc "github.com/litswap/litswap/internal/usecase/recommend"
	useruc "github.com/litswap/litswap/internal/usecase/user"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server hosts the HTTP handlers over the use case services.
type Server struct {
	recommend     *recommenduc.Service
	market        *marketuc.Service
	users         *useruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	market *marketuc.Service,
	users *useruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		market:    market,
		users:     users,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyInput, http.StatusBadRequest, "empty_input"),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, "invalid_record"),
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"),
		sentinelHandler(domain.ErrBookNotFound, http.StatusNotFound, "book_not_found"),
		sentinelHandler(domain.ErrShopItemNotFound, http.StatusNotFound, "shop_item_not_found"),
		sentinelHandler(domain.ErrInsufficientPoints, http.StatusPaymentRequired, "insufficient_points"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
	}
	return s
}

// Routes mounts all API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/login", s.Login)
	r.Post("/preferences", s.SavePreferences)

	r.Get("/books/match", s.MatchBooks)
	r.Get("/books/search", s.SearchBook)
	r.Post("/chat/recommendations", s.ChatRecommendations)
	r.Post("/friends/match", s.MatchFriends)

	r.Get("/market", s.ListMarket)
	r.Post("/market/add", s.AddListing)

	r.Get("/users/points", s.GetPoints)
	r.Post("/users/points", s.AddPoints)
	r.Get("/leaderboard", s.Leaderboard)
	r.Get("/shop", s.ListShop)
	r.Post("/shop/redeem", s.Redeem)

	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// --- Auth and preferences ---

type loginRequest struct {
	Username string `json:"username"`
}

type loginResponse struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Created  bool   `json:"created"`
}

// Login handles POST /login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	points, created, err := s.users.Login(req.Username)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, loginResponse{Username: req.Username, Points: points, Created: created})
}

type preferencesRequest struct {
	Username    string   `json:"username"`
	Preferences []string `json:"preferences"`
}

// SavePreferences handles POST /preferences.
func (s *Server) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if err := s.users.SavePreferences(req.Username, req.Preferences); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username":    req.Username,
		"preferences": req.Preferences,
	})
}

// --- Matching ---

type scoredBookItem struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Seller      string   `json:"seller"`
	Categories  []string `json:"categories,omitempty"`
	Score       float64  `json:"score"`
}

type bookMatchesResponse struct {
	Books    []scoredBookItem `json:"books"`
	Fallback bool             `json:"fallback,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// MatchBooks handles GET /books/match. Preferences come from the saved
// profile of the username query parameter; blank preferences degrade to
// the popular-books fallback.
func (s *Server) MatchBooks(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "empty_input", "username query parameter is required")
		return
	}

	prefs, err := s.users.Preferences(username)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	matches := s.recommend.MatchByPreferences(prefs)
	resp := bookMatchesResponse{
		Books:    scoredBooksToItems(matches.Books),
		Fallback: matches.Fallback,
	}
	if matches.Fallback {
		resp.Message = "No preferences saved, showing popular books"
	}
	writeJSON(w, http.StatusOK, resp)
}

type titleMatchResponse struct {
	Found      bool            `json:"found"`
	Confidence int             `json:"confidence"`
	Book       *scoredBookItem `json:"book,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// SearchBook handles GET /books/search.
func (s *Server) SearchBook(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")

	match, err := s.recommend.ResolveTitle(title)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := titleMatchResponse{Found: match.Found, Confidence: match.Confidence}
	if match.Found {
		item := bookToItem(match.Book, 0)
		resp.Book = &item
	} else {
		resp.Message = "No matching book found"
	}
	writeJSON(w, http.StatusOK, resp)
}

type chatRequest struct {
	Message string `json:"message"`
}

// ChatRecommendations handles POST /chat/recommendations.
func (s *Server) ChatRecommendations(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	matches, err := s.recommend.MatchByConversation(r.Context(), req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := bookMatchesResponse{Books: scoredBooksToItems(matches.Books)}
	if matches.NoTopics {
		resp.Message = "Could not identify any book topics in the message"
	}
	writeJSON(w, http.StatusOK, resp)
}

type scoredPeerItem struct {
	Name        string   `json:"name"`
	Preferences []string `json:"preferences"`
	Status      string   `json:"status,omitempty"`
	Score       float64  `json:"score"`
}

type friendMatchRequest struct {
	Username    string   `json:"username"`
	Preferences []string `json:"preferences,omitempty"`
}

// MatchFriends handles POST /friends/match. Preferences in the body
// override the saved profile.
func (s *Server) MatchFriends(w http.ResponseWriter, r *http.Request) {
	var req friendMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	prefs := req.Preferences
	if len(prefs) == 0 && req.Username != "" {
		saved, err := s.users.Preferences(req.Username)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		prefs = saved
	}

	matched := s.recommend.MatchPeers(prefs)
	items := make([]scoredPeerItem, len(matched))
	for i, m := range matched {
		items[i] = scoredPeerItem{
			Name:        m.Peer.Name,
			Preferences: m.Peer.Preferences,
			Status:      m.Peer.Status,
			Score:       m.Score,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"friends": items})
}

// --- Marketplace ---

// ListMarket handles GET /market.
func (s *Server) ListMarket(w http.ResponseWriter, r *http.Request) {
	books := s.market.Books()
	items := make([]scoredBookItem, len(books))
	for i, b := range books {
		items[i] = bookToItem(b, 0)
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": items})
}

type addListingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Seller      string   `json:"seller"`
	Categories  []string `json:"categories,omitempty"`
}

// AddListing handles POST /market/add.
func (s *Server) AddListing(w http.ResponseWriter, r *http.Request) {
	var req addListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	id, err := s.market.AddListing(req.Title, req.Description, req.Price, req.Seller, req.Categories)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// --- Points, shop and leaderboard ---

// GetPoints handles GET /users/points.
func (s *Server) GetPoints(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	points, err := s.users.Points(username)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"username": username, "points": points})
}

type addPointsRequest struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Shared   bool   `json:"shared"`
}

// AddPoints handles POST /users/points.
func (s *Server) AddPoints(w http.ResponseWriter, r *http.Request) {
	var req addPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	balance, err := s.users.AddPoints(req.Username, req.Points, req.Shared)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"username": req.Username, "points": balance})
}

type leaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// Leaderboard handles GET /leaderboard.
func (s *Server) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries := s.users.Leaderboard()
	out := make([]leaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = leaderboardEntry{Rank: e.Rank, Username: e.Username, Points: e.Points}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": out})
}

type shopItemResponse struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ListShop handles GET /shop.
func (s *Server) ListShop(w http.ResponseWriter, r *http.Request) {
	items := s.users.ShopItems()
	out := make([]shopItemResponse, len(items))
	for i, it := range items {
		out[i] = shopItemResponse{Name: it.Name, Points: it.Points}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

type redeemRequest struct {
	Username string `json:"username"`
	Item     string `json:"item"`
}

// Redeem handles POST /shop/redeem.
func (s *Server) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	balance, err := s.users.Redeem(req.Username, req.Item)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username": req.Username,
		"item":     req.Item,
		"points":   balance,
	})
}

// --- Operational ---

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

func bookToItem(b domain.Book, score float64) scoredBookItem {
	return scoredBookItem{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Price:       b.Price,
		Seller:      b.Seller,
		Categories:  b.Categories,
		Score:       score,
	}
}

func scoredBooksToItems(books []recommenduc.ScoredBook) []scoredBookItem {
	items := make([]scoredBookItem, len(books))
	for i, sb := range books {
		items[i] = bookToItem(sb.Book, sb.Score)
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyInput,
		domain.ErrInvalidRecord,
		domain.ErrUserNotFound,
		domain.ErrBookNotFound,
		domain.ErrShopItemNotFound,
		domain.ErrInsufficientPoints,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
