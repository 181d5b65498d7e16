package daemon

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/codeforge-dev/codeforge/internal/catalog"
	"github.com/codeforge-dev/codeforge/internal/domain"
	"github.com/codeforge-dev/codeforge/internal/progress"
)

// userResponse is the account shape returned over the wire. The stored
// password never leaves the daemon.
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
		Avatar:   user.Avatar,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		s.jsonError(w, http.StatusBadRequest, "username and password are required", nil)
		return
	}

	if !s.store.Signup(req.Username, req.Password, req.Name, req.Email, req.Avatar) {
		s.jsonError(w, http.StatusConflict, "username already taken", nil)
		return
	}

	user, _ := s.store.CurrentUser()
	s.jsonResponse(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if !s.store.Login(req.Username, req.Password) {
		s.jsonError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	user, _ := s.store.CurrentUser()
	s.jsonResponse(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.store.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.store.CurrentUser()
	if !ok {
		s.jsonError(w, http.StatusUnauthorized, "not logged in", nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if !s.store.IsLoggedIn() {
		s.jsonError(w, http.StatusUnauthorized, "not logged in", nil)
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Email  *string `json:"email"`
		Avatar *string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	s.store.UpdateProfile(progress.ProfileUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})

	user, _ := s.store.CurrentUser()
	s.jsonResponse(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.NewPassword == "" {
		s.jsonError(w, http.StatusBadRequest, "new password is required", nil)
		return
	}

	if !s.store.ChangePassword(req.OldPassword, req.NewPassword) {
		s.jsonError(w, http.StatusUnauthorized, "password change rejected", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := catalog.Filters{
		Tags:   splitParam(query.Get("tags")),
		Search: query.Get("search"),
	}
	for _, d := range splitParam(query.Get("difficulty")) {
		filters.Difficulty = append(filters.Difficulty, domain.Difficulty(d))
	}
	for _, st := range splitParam(query.Get("status")) {
		filters.Status = append(filters.Status, catalog.Status(st))
	}

	problems := s.registry.Filtered(s.store, filters)
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"problems": problems,
		"count":    len(problems),
	})
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	problem, ok := s.registry.ByID(s.store, r.PathValue("id"))
	if !ok {
		s.jsonError(w, http.StatusNotFound, "problem not found", nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, problem)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"tags": s.registry.AllTags(),
	})
}

func (s *Server) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"languages": catalog.Languages,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	problem, ok := s.registry.Problem(r.PathValue("id"))
	if !ok {
		s.jsonError(w, http.StatusNotFound, "problem not found", nil)
		return
	}

	var req struct {
		Language string `json:"language"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Language == "" {
		s.jsonError(w, http.StatusBadRequest, "language is required", nil)
		return
	}

	eval, err := s.runner.Evaluate(r.Context(), problem, req.Language, req.Code)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "evaluation failed", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, eval)
}

func (s *Server) handleGetCode(w http.ResponseWriter, r *http.Request) {
	problemID := r.PathValue("id")
	language := r.URL.Query().Get("language")
	if language == "" {
		s.jsonError(w, http.StatusBadRequest, "language query parameter is required", nil)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"problem_id": problemID,
		"language":   language,
		"code":       s.store.GetCode(problemID, language),
		"template":   catalog.TemplateFor(language),
	})
}

func (s *Server) handleSaveCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Language == "" {
		s.jsonError(w, http.StatusBadRequest, "language is required", nil)
		return
	}

	s.store.SaveCode(r.PathValue("id"), req.Language, req.Code)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	problemID := r.PathValue("id")
	s.store.ToggleBookmark(problemID)
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"problem_id": problemID,
		"bookmarked": s.store.IsBookmarked(problemID),
	})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions := s.store.GetSubmissions(r.PathValue("id"))
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	problemID := r.PathValue("id")
	s.store.StartSession(problemID)

	session, _ := s.store.GetSession(problemID)
	s.jsonResponse(w, http.StatusCreated, session)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	problemID := r.PathValue("id")
	// No-op when nothing was started; the response reflects whatever
	// session state exists.
	s.store.EndSession(problemID)

	session, ok := s.store.GetSession(problemID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleSessionHints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	problemID := r.PathValue("id")
	s.store.UpdateSession(problemID, req.Delta)

	session, ok := s.store.GetSession(problemID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.store.GetSession(r.PathValue("id"))
	if !ok {
		s.jsonError(w, http.StatusNotFound, "no session for problem", nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to build overview", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, overview)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"leaderboard": s.stats.Leaderboard(),
	})
}

// splitParam parses a comma-separated query parameter, dropping empties
func splitParam(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
