package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ApexYash11/TradeguardAI/internal/auth"
	"github.com/ApexYash11/TradeguardAI/internal/db"
)

const maxAuthBody = 4 << 10

var validate = newValidator()

// newValidator adds "pwbytes", which bounds a password by bcrypt's byte limit;
// the built-in max counts runes.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	})
	return v
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,pwbytes"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,printascii"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,pwbytes"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
}

type meResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// decodeBody decodes a bounded JSON body into v and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxAuthBody))
	if err := dec.Decode(v); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			jsonError(w, "invalid field: "+verrs[0].Field(), http.StatusBadRequest)
			return false
		}
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// --- Auth ---

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	hash, err := a.auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		jsonError(w, "invalid field: Password", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("hashing password", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	user, err := a.db.CreateUser(db.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, db.ErrConflict) {
		jsonError(w, "username or email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		storeError(w, r, err, "User")
		return
	}

	a.issueToken(w, http.StatusCreated, user.ID)
}

// handleLogin answers both an unknown username and a wrong password with the
// same status, body and cost.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, hash, err := a.db.GetUserByUsername(req.Username)
	switch {
	case errors.Is(err, db.ErrNotFound):
		a.auth.BurnCompare(req.Password)
		a.loginOutcome("invalid")
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	case err != nil:
		a.loginOutcome("error")
		storeError(w, r, err, "User")
		return
	}

	if !a.auth.CheckPassword(hash, req.Password) {
		a.loginOutcome("invalid")
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	a.loginOutcome("success")
	a.issueToken(w, http.StatusOK, user.ID)
}

func (a *API) issueToken(w http.ResponseWriter, status int, userID int64) {
	token, err := a.auth.GenerateToken(userID)
	if err != nil {
		slog.Error("signing token", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, status, tokenResponse{AccessToken: token, TokenType: "bearer", UserID: userID})
}

func (a *API) loginOutcome(outcome string) {
	if a.metrics != nil {
		a.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	tok := auth.BearerToken(r)
	if tok == "" {
		unauthorized(w, "not authenticated")
		return
	}
	userID, err := a.auth.ValidateToken(tok)
	if err != nil {
		unauthorized(w, "invalid token")
		return
	}

	user, err := a.db.GetUserByID(userID)
	if err != nil {
		storeError(w, r, err, "User")
		return
	}
	jsonResp(w, http.StatusOK, meResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	})
}

// handleLogout is an acknowledgment only. Tokens stay valid until they expire.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	jsonError(w, msg, http.StatusUnauthorized)
}
