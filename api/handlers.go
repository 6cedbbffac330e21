package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jmcleod/gatehouse/credential"
	"github.com/jmcleod/gatehouse/session"
)

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	key := rateLimitKey(req.Email)
	if blocked, retryAfter := a.rateLimiter.check(key); blocked {
		a.audit.log(AuditLoginRateLimited, r)
		writeRateLimited(w, retryAfter)
		return
	}

	if err := a.sessions.Login(req.Email, req.Password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			a.rateLimiter.recordFailure(key)
			a.audit.log(AuditLoginFailure, r)
		}
		mapError(w, err)
		return
	}
	a.rateLimiter.recordSuccess(key)

	snap, _ := a.sessions.Session()
	a.audit.logUser(AuditLoginSuccess, r, snap.UserID)
	writeJSON(w, http.StatusOK, sessionResponse(snap))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Logout()
	a.audit.log(AuditLogout, r)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.sessions.Session()
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(snap))
}

// handleForgotPassword acknowledges a reset request. The response is the same
// whether or not the account exists, so the endpoint cannot be used to probe
// for registered emails; the lookup result only feeds the audit log.
func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, known := a.users.FindByEmail(req.Email)
	a.audit.log(AuditPasswordResetRequested, r, slog.Bool("known_account", known))
	writeJSON(w, http.StatusAccepted, ForgotPasswordResponse{
		Message: "If an account exists with that email address, you will receive password reset instructions shortly.",
	})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	records := a.users.List()
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	resp := ListUsersResponse{Users: make([]UserSummary, 0, len(records))}
	for _, rec := range records {
		resp.Users = append(resp.Users, userSummary(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email, and password are required")
		return
	}
	role := credential.Role(req.Role)
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "role must be Admin or User")
		return
	}

	if err := a.users.Add(credential.Candidate{
		Name:          req.Name,
		Email:         req.Email,
		RawCredential: req.Password,
		Role:          role,
	}); err != nil {
		mapError(w, err)
		return
	}

	rec, _ := a.users.FindByEmail(req.Email)
	a.audit.logUser(AuditUserCreated, r, rec.ID)
	writeJSON(w, http.StatusCreated, userSummary(rec))
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	current, ok := a.users.FindByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec := current
	if req.Name != "" {
		rec.Name = req.Name
	}
	if req.Email != "" {
		rec.Email = req.Email
	}
	if req.Password != "" {
		// May be a new raw credential or the unchanged hash; the store tells
		// them apart by format.
		rec.CredentialHash = req.Password
	}
	if req.Role != "" {
		role := credential.Role(req.Role)
		if !role.Valid() {
			writeError(w, http.StatusBadRequest, "role must be Admin or User")
			return
		}
		rec.Role = role
	}
	if req.Status != "" {
		status := credential.Status(req.Status)
		if status != credential.StatusActive && status != credential.StatusInactive {
			writeError(w, http.StatusBadRequest, "status must be Active or Inactive")
			return
		}
		rec.Status = status
	}

	if err := a.users.Update(rec); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logUser(AuditUserUpdated, r, rec.ID)
	writeJSON(w, http.StatusOK, userSummary(rec))
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	a.users.Remove(id)
	a.audit.logUser(AuditUserDeleted, r, id)
	w.WriteHeader(http.StatusNoContent)
}

func sessionResponse(snap session.Snapshot) SessionResponse {
	return SessionResponse{
		UserID: snap.UserID,
		Email:  snap.Email,
		Name:   snap.Name,
		Role:   snap.Role,
		Status: snap.Status,
	}
}

func userSummary(rec credential.UserRecord) UserSummary {
	return UserSummary{
		ID:     rec.ID,
		Name:   rec.Name,
		Email:  rec.Email,
		Role:   string(rec.Role),
		Status: string(rec.Status),
	}
}
