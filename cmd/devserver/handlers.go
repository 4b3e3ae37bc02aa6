package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/committeehq/committee-client/pkg/logger"
)

// server is the dev backend: fixtures, token signing and the route handlers.
type server struct {
	store  *store
	secret []byte
	log    *logger.Logger

	mu      sync.Mutex
	revoked map[string]bool // tokens invalidated by logout
}

func newServer(secret []byte, log *logger.Logger) *server {
	return &server{
		store:   newStore(),
		secret:  secret,
		log:     log,
		revoked: make(map[string]bool),
	}
}

func (s *server) routes(r *mux.Router) {
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/committee/get", s.handleCommittees).Methods(http.MethodGet)
	authed.HandleFunc("/committee/analysis", s.handleAnalysis).Methods(http.MethodGet)
	authed.HandleFunc("/committee/member/get", s.handleMembers).Methods(http.MethodGet)
	authed.HandleFunc("/committee/draw/get", s.handleDraws).Methods(http.MethodGet)
	authed.HandleFunc("/committee/draw/user-wise-paid", s.handlePaidList).Methods(http.MethodGet)
	authed.HandleFunc("/committee/draw/user-wise-paid", s.handlePaidUpdate).Methods(http.MethodPatch)
	authed.HandleFunc("/draw/amount-update", s.handleAmountUpdate).Methods(http.MethodPatch)
	authed.HandleFunc("/committee/lottery/random-user", s.handleLottery).Methods(http.MethodPost)
}

// claims is the token payload.
type claims struct {
	UserID  int    `json:"user_id"`
	PhoneNo string `json:"phoneNo"`
	jwt.RegisteredClaims
}

func (s *server) signToken(u *fixtureUser) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:  u.ID,
		PhoneNo: u.PhoneNo,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString(s.secret)
}

// authMiddleware validates the bearer token. Revoked or invalid tokens get
// 401 so the client's session-expiry path can be exercised end to end.
func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.jsonError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		raw := parts[1]

		s.mu.Lock()
		revoked := s.revoked[raw]
		s.mu.Unlock()
		if revoked {
			s.jsonError(w, http.StatusUnauthorized, "token has been revoked")
			return
		}

		token, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			s.jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		PhoneNo  string `json:"phoneNo"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNo == "" || req.Password == "" {
		s.jsonError(w, http.StatusBadRequest, "phoneNo and password are required")
		return
	}

	u, err := s.store.createUser(req.Name, req.Email, req.PhoneNo, req.Password, req.Role)
	if err != nil {
		s.jsonError(w, http.StatusConflict, err.Error())
		return
	}
	token, err := s.signToken(u)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	s.log.Infof("registered user %s (%d)", u.PhoneNo, u.ID)
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "registered successfully",
		"success": true,
		"data": map[string]interface{}{
			"token": token,
			"user":  u,
		},
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNo  string `json:"phoneNo"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, ok := s.store.authenticate(req.PhoneNo, req.Password)
	if !ok {
		s.jsonError(w, http.StatusUnauthorized, "invalid phone number or password")
		return
	}
	token, err := s.signToken(u)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	s.log.Infof("login by %s", u.PhoneNo)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "login successful",
		"success": true,
		"data": map[string]interface{}{
			"token": token,
			"user":  u,
		},
	})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 {
		s.mu.Lock()
		s.revoked[parts[1]] = true
		s.mu.Unlock()
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "logged out",
		"success": true,
	})
}

func (s *server) handleCommittees(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "ok",
		"success": true,
		"data":    s.store.listCommittees(),
	})
}

func (s *server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	committeeID, ok := s.queryInt(w, r, "committeeId")
	if !ok {
		return
	}
	c, found := s.store.committee(committeeID)
	if !found {
		s.jsonError(w, http.StatusNotFound, "committee not found")
		return
	}

	members := s.store.committeeMembers(committeeID)
	draws := s.store.committeeDraws(committeeID)
	completed := 0
	var paid float64
	for _, d := range draws {
		if d.IsDrawCompleted {
			completed++
		}
		paid += d.CommitteeDrawPaid
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "ok",
		"success": true,
		"data": map[string]interface{}{
			"committeeId":         c.ID,
			"committeeName":       c.CommitteeName,
			"committeeAmount":     c.CommitteeAmount,
			"commissionMaxMember": c.CommissionMax,
			"committeeStatus":     c.CommitteeStatus,
			"noOfMonths":          c.NoOfMonths,
			"fineAmount":          c.FineAmount,
			"extraDaysForFine":    c.ExtraDaysForFine,
			"startCommitteeDate":  c.StartCommitteeDate,
			"analysis": map[string]interface{}{
				"totalMembers":             len(members),
				"totalCommitteeAmount":     c.CommitteeAmount * float64(c.NoOfMonths),
				"totalCommitteePaidAmount": paid,
				"totalCommitteeFineAmount": 0,
				"noOfDrawsCompleted":       completed,
				"totalDraws":               len(draws),
			},
		},
	})
}

func (s *server) handleMembers(w http.ResponseWriter, r *http.Request) {
	committeeID, ok := s.queryInt(w, r, "committeeId")
	if !ok {
		return
	}
	members := s.store.committeeMembers(committeeID)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "ok",
		"success": true,
		"data":    members,
	})
}

func (s *server) handleDraws(w http.ResponseWriter, r *http.Request) {
	committeeID, ok := s.queryInt(w, r, "committeeId")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "ok",
		"success": true,
		"data":    s.store.committeeDraws(committeeID),
	})
}

func (s *server) handlePaidList(w http.ResponseWriter, r *http.Request) {
	committeeID, ok := s.queryInt(w, r, "committeeId")
	if !ok {
		return
	}
	drawID, ok := s.queryInt(w, r, "drawId")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "ok",
		"success": true,
		"data":    s.store.drawPayments(committeeID, drawID),
	})
}

func (s *server) handlePaidUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommitteeID        int     `json:"committeeId"`
		UserID             int     `json:"userId"`
		DrawID             int     `json:"drawId"`
		UserDrawAmountPaid float64 `json:"userDrawAmountPaid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.store.upsertPayment(req.CommitteeID, req.UserID, req.DrawID, req.UserDrawAmountPaid, now); err != nil {
		s.jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "payment updated",
		"success": true,
	})
}

func (s *server) handleAmountUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommitteeID int     `json:"committeeId"`
		DrawID      int     `json:"drawId"`
		Amount      float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		s.jsonError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}

	if err := s.store.updateDrawAmount(req.CommitteeID, req.DrawID, req.Amount); err != nil {
		s.jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "amount updated",
		"success": true,
	})
}

func (s *server) handleLottery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommitteeID int `json:"committeeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	members := s.store.committeeMembers(req.CommitteeID)
	if len(members) == 0 {
		s.jsonError(w, http.StatusNotFound, "no members in committee")
		return
	}

	winner := members[rand.Intn(len(members))]
	s.log.Infof("lottery winner for committee %d: user %d", req.CommitteeID, winner.User.ID)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "winner selected",
		"success": true,
		"data": map[string]interface{}{
			"id":      winner.User.ID,
			"userId":  winner.User.ID,
			"name":    winner.User.Name,
			"phoneNo": winner.User.PhoneNo,
		},
	})
}

func (s *server) queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("%s query parameter is required", key))
		return 0, false
	}
	return v, true
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *server) jsonError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"message": message,
		"success": false,
	})
}
