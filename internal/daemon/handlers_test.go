package daemon

import (
	"net/http"
	"testing"

	"github.com/codeforge-dev/codeforge/internal/domain"
	"github.com/codeforge-dev/codeforge/internal/runner"
	"github.com/codeforge-dev/codeforge/internal/stats"
)

func signup(t *testing.T, server *Server, username string) userResponse {
	t.Helper()
	rec := do(t, server, http.MethodPost, "/v1/auth/signup", map[string]string{
		"username": username,
		"password": "secret",
		"name":     "Test " + username,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup = %d: %s", rec.Code, rec.Body.String())
	}
	return decode[userResponse](t, rec)
}

func TestHandlers_AuthFlow(t *testing.T) {
	server := newTestServer(t)

	user := signup(t, server, "alice")
	if user.Username != "alice" || user.ID == "" {
		t.Errorf("signup response = %+v", user)
	}

	// Duplicate username is a conflict.
	rec := do(t, server, http.MethodPost, "/v1/auth/signup", map[string]string{
		"username": "alice", "password": "other",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup = %d; want 409", rec.Code)
	}

	rec = do(t, server, http.MethodGet, "/v1/auth/me", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /v1/auth/me = %d; want 200", rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/v1/auth/logout", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("logout = %d; want 204", rec.Code)
	}

	rec = do(t, server, http.MethodGet, "/v1/auth/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d; want 401", rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": "alice", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d; want 401", rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": "alice", "password": "secret",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login = %d; want 200", rec.Code)
	}
}

func TestHandlers_UpdateProfile(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodPut, "/v1/auth/profile", map[string]string{"name": "X"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("profile while logged out = %d; want 401", rec.Code)
	}

	signup(t, server, "alice")
	rec = do(t, server, http.MethodPut, "/v1/auth/profile", map[string]string{"name": "Alice Smith"})
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update = %d: %s", rec.Code, rec.Body.String())
	}
	if user := decode[userResponse](t, rec); user.Name != "Alice Smith" {
		t.Errorf("Name = %s; want Alice Smith", user.Name)
	}
}

func TestHandlers_ChangePassword(t *testing.T) {
	server := newTestServer(t)
	signup(t, server, "alice")

	rec := do(t, server, http.MethodPut, "/v1/auth/password", map[string]string{
		"old_password": "nope", "new_password": "next",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong old password = %d; want 401", rec.Code)
	}

	rec = do(t, server, http.MethodPut, "/v1/auth/password", map[string]string{
		"old_password": "secret", "new_password": "next",
	})
	if rec.Code != http.StatusNoContent {
		t.Errorf("password change = %d; want 204", rec.Code)
	}
}

func TestHandlers_ListProblems(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodGet, "/v1/problems", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/problems = %d", rec.Code)
	}
	body := decode[struct {
		Problems []domain.Problem `json:"problems"`
		Count    int              `json:"count"`
	}](t, rec)
	if body.Count != 10 {
		t.Errorf("count = %d; want 10", body.Count)
	}
	if body.Problems[0].ID != "two-sum" {
		t.Errorf("first problem = %s; want two-sum (catalog order)", body.Problems[0].ID)
	}
}

func TestHandlers_ListProblems_Filtered(t *testing.T) {
	server := newTestServer(t)
	server.store.MarkProblemSolved("two-sum")

	rec := do(t, server, http.MethodGet, "/v1/problems?difficulty=Easy&tags=Array,Hash%20Table&status=Solved", nil)
	body := decode[struct {
		Problems []domain.Problem `json:"problems"`
	}](t, rec)
	if len(body.Problems) != 1 || body.Problems[0].ID != "two-sum" {
		t.Fatalf("filtered problems = %+v; want just two-sum", body.Problems)
	}
	if !body.Problems[0].Solved {
		t.Error("problem must carry the derived solved flag")
	}

	rec = do(t, server, http.MethodGet, "/v1/problems?search=median", nil)
	body = decode[struct {
		Problems []domain.Problem `json:"problems"`
	}](t, rec)
	if len(body.Problems) != 1 || body.Problems[0].ID != "median-two-sorted-arrays" {
		t.Errorf("search result = %+v; want median problem", body.Problems)
	}
}

func TestHandlers_GetProblem(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodGet, "/v1/problems/two-sum", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET problem = %d", rec.Code)
	}
	problem := decode[domain.Problem](t, rec)
	if problem.Title != "Two Sum" || len(problem.TestCases) != 3 {
		t.Errorf("problem = %s with %d cases; want Two Sum with 3", problem.Title, len(problem.TestCases))
	}

	rec = do(t, server, http.MethodGet, "/v1/problems/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing problem = %d; want 404", rec.Code)
	}
}

func TestHandlers_Tags_Languages(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodGet, "/v1/tags", nil)
	tags := decode[struct {
		Tags []string `json:"tags"`
	}](t, rec)
	if len(tags.Tags) == 0 {
		t.Error("tags must not be empty")
	}

	rec = do(t, server, http.MethodGet, "/v1/languages", nil)
	languages := decode[struct {
		Languages []struct {
			ID       string `json:"id"`
			Template string `json:"template"`
		} `json:"languages"`
	}](t, rec)
	if len(languages.Languages) != 5 {
		t.Errorf("languages = %d; want 5", len(languages.Languages))
	}
	if languages.Languages[0].Template == "" {
		t.Error("language entries must carry starter templates")
	}
}

func TestHandlers_Run(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/v1/problems/two-sum/run", map[string]string{
		"language": "python",
		"code":     "def solution(): pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("run = %d: %s", rec.Code, rec.Body.String())
	}
	eval := decode[runner.Evaluation](t, rec)
	if !eval.Passed || eval.TestsPassed != 3 {
		t.Errorf("eval = passed=%v %d/%d; want 3/3", eval.Passed, eval.TestsPassed, eval.TestsTotal)
	}

	// The run marked the problem solved and recorded a submission.
	rec = do(t, server, http.MethodGet, "/v1/problems/two-sum", nil)
	if problem := decode[domain.Problem](t, rec); !problem.Solved {
		t.Error("successful run must mark the problem solved")
	}

	rec = do(t, server, http.MethodGet, "/v1/problems/two-sum/submissions", nil)
	subs := decode[struct {
		Count int `json:"count"`
	}](t, rec)
	if subs.Count != 1 {
		t.Errorf("submissions = %d; want 1", subs.Count)
	}
}

func TestHandlers_Run_Validation(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/v1/problems/ghost/run", map[string]string{
		"language": "python", "code": "x",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("run on missing problem = %d; want 404", rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/v1/problems/two-sum/run", map[string]string{"code": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("run without language = %d; want 400", rec.Code)
	}
}

func TestHandlers_Code(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodGet, "/v1/problems/two-sum/code?language=python", nil)
	body := decode[map[string]string](t, rec)
	if body["code"] != "" {
		t.Errorf("unsaved code = %q; want empty", body["code"])
	}
	if body["template"] == "" {
		t.Error("response must carry the language starter template")
	}

	rec = do(t, server, http.MethodPut, "/v1/problems/two-sum/code", map[string]string{
		"language": "python", "code": "def solution(): return [0, 1]",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("save code = %d", rec.Code)
	}

	rec = do(t, server, http.MethodGet, "/v1/problems/two-sum/code?language=python", nil)
	body = decode[map[string]string](t, rec)
	if body["code"] != "def solution(): return [0, 1]" {
		t.Errorf("code = %q", body["code"])
	}

	rec = do(t, server, http.MethodGet, "/v1/problems/two-sum/code", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code without language = %d; want 400", rec.Code)
	}
}

func TestHandlers_Bookmark(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/v1/problems/two-sum/bookmark", nil)
	if body := decode[map[string]interface{}](t, rec); body["bookmarked"] != true {
		t.Errorf("first toggle = %v; want true", body["bookmarked"])
	}

	rec = do(t, server, http.MethodPost, "/v1/problems/two-sum/bookmark", nil)
	if body := decode[map[string]interface{}](t, rec); body["bookmarked"] != false {
		t.Errorf("second toggle = %v; want false", body["bookmarked"])
	}
}

func TestHandlers_Sessions(t *testing.T) {
	server := newTestServer(t)

	rec := do(t, server, http.MethodGet, "/v1/problems/two-sum/session", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("session before start = %d; want 404", rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/v1/problems/two-sum/session/start", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start session = %d", rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/v1/problems/two-sum/session/hints", map[string]int{"delta": 2})
	session := decode[domain.ProblemSession](t, rec)
	if session.HintsUsed != 2 {
		t.Errorf("HintsUsed = %d; want 2", session.HintsUsed)
	}

	rec = do(t, server, http.MethodPost, "/v1/problems/two-sum/session/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end session = %d", rec.Code)
	}
	session = decode[domain.ProblemSession](t, rec)
	if session.StartedAt != 0 {
		t.Errorf("StartedAt = %d after end; want 0", session.StartedAt)
	}

	// Ending a problem that never had a session is a quiet no-op.
	rec = do(t, server, http.MethodPost, "/v1/problems/ghost/session/end", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("end without session = %d; want 204", rec.Code)
	}
}

func TestHandlers_Stats(t *testing.T) {
	server := newTestServer(t)
	signup(t, server, "alice")

	rec := do(t, server, http.MethodPost, "/v1/problems/two-sum/run", map[string]string{
		"language": "python", "code": "x",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("run = %d", rec.Code)
	}

	rec = do(t, server, http.MethodGet, "/v1/stats/overview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview = %d: %s", rec.Code, rec.Body.String())
	}
	overview := decode[stats.Overview](t, rec)
	if overview.TotalSolved != 1 || overview.TotalProblems != 10 {
		t.Errorf("overview = %d/%d; want 1 of 10", overview.TotalSolved, overview.TotalProblems)
	}
	if len(overview.RecentActivity) != 1 {
		t.Errorf("RecentActivity = %d rows; want 1", len(overview.RecentActivity))
	}

	rec = do(t, server, http.MethodGet, "/v1/stats/leaderboard", nil)
	board := decode[struct {
		Leaderboard []stats.LeaderboardEntry `json:"leaderboard"`
	}](t, rec)
	if len(board.Leaderboard) != 1 || board.Leaderboard[0].Solved != 1 {
		t.Errorf("leaderboard = %+v; want alice with 1 solved", board.Leaderboard)
	}
}
