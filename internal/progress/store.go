package progress

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeforge-dev/codeforge/internal/domain"
	"github.com/codeforge-dev/codeforge/internal/storage/local"
)

const (
	collectionUsers = "users"
	collectionState = "state"
	stateRecordID   = "app"
)

// appState is the persisted snapshot: the active progress plus the
// identity flags. Field names mirror the browser client's storage record.
type appState struct {
	UserProgress  *domain.UserProgress `json:"userProgress"`
	CurrentUserID string               `json:"currentUserId"`
	IsLoggedIn    bool                 `json:"isLoggedIn"`
}

// Store is the single source of truth for accounts and problem progress.
// All mutations are synchronous and immediately visible to reads; each
// mutation is followed by a write-behind persist to the local JSON store,
// whose failure is logged and never surfaced to the caller.
//
// Progress is keyed by the active user: signup and login swap the active
// progress to that user's record, and a separate anonymous progress
// serves the logged-out state.
type Store struct {
	local  *local.Store
	logger *slog.Logger

	now   func() time.Time
	newID func() string

	mu        sync.RWMutex
	users     map[string]*domain.User
	order     []string
	currentID string
	loggedIn  bool
	anonymous *domain.UserProgress
}

// NewStore creates a progress store over basePath and rehydrates any
// previously persisted users and snapshot. A missing snapshot rehydrates
// to empty progress and the logged-out state.
func NewStore(basePath string, logger *slog.Logger) (*Store, error) {
	localStore, err := local.NewStore(basePath)
	if err != nil {
		return nil, fmt.Errorf("create local store: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		local:     localStore,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
		users:     make(map[string]*domain.User),
		anonymous: domain.NewUserProgress(),
	}
	if err := s.rehydrate(); err != nil {
		return nil, fmt.Errorf("rehydrate progress: %w", err)
	}
	return s, nil
}

func (s *Store) rehydrate() error {
	ids, err := s.local.List(collectionUsers)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, id := range ids {
		var user domain.User
		if err := s.local.Load(collectionUsers, id, &user); err != nil {
			s.logger.Warn("skipping unreadable user record", "id", id, "error", err)
			continue
		}
		normalizeProgress(&user)
		s.users[user.ID] = &user
		s.order = append(s.order, user.ID)
	}

	var state appState
	if err := s.local.Load(collectionState, stateRecordID, &state); err != nil {
		if errors.Is(err, local.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load snapshot: %w", err)
	}

	if state.IsLoggedIn {
		user, ok := s.users[state.CurrentUserID]
		if !ok {
			// Snapshot references an account that no longer exists;
			// fall back to logged out.
			return nil
		}
		if state.UserProgress != nil {
			user.Progress = state.UserProgress
			normalizeProgress(user)
		}
		s.currentID = user.ID
		s.loggedIn = true
		return nil
	}

	if state.UserProgress != nil {
		s.anonymous = state.UserProgress
		ensureProgress(s.anonymous)
	}
	return nil
}

// normalizeProgress repairs nil fields after a JSON round trip
func normalizeProgress(user *domain.User) {
	if user.Progress == nil {
		user.Progress = domain.NewUserProgress()
		return
	}
	ensureProgress(user.Progress)
}

func ensureProgress(p *domain.UserProgress) {
	if p.Solved == nil {
		p.Solved = []string{}
	}
	if p.Attempted == nil {
		p.Attempted = []string{}
	}
	if p.Bookmarked == nil {
		p.Bookmarked = []string{}
	}
	if p.CodeByProblem == nil {
		p.CodeByProblem = make(map[string]map[string]string)
	}
	if p.Submissions == nil {
		p.Submissions = make(map[string][]domain.CodeSubmission)
	}
	if p.Sessions == nil {
		p.Sessions = make(map[string]*domain.ProblemSession)
	}
}

// active returns the progress record mutations apply to. Callers hold the
// lock.
func (s *Store) active() *domain.UserProgress {
	if s.loggedIn {
		if user, ok := s.users[s.currentID]; ok {
			return user.Progress
		}
	}
	return s.anonymous
}

// persist writes the active user record and the snapshot. Callers hold
// the lock. Persistence is write-behind: failures are logged, the
// in-memory mutation stands.
func (s *Store) persist() {
	if s.loggedIn {
		if user, ok := s.users[s.currentID]; ok {
			if err := s.local.Save(collectionUsers, user.ID, user); err != nil {
				s.logger.Warn("persist user failed", "user_id", user.ID, "error", err)
			}
		}
	}

	state := appState{
		UserProgress:  s.active(),
		CurrentUserID: s.currentID,
		IsLoggedIn:    s.loggedIn,
	}
	if err := s.local.Save(collectionState, stateRecordID, &state); err != nil {
		s.logger.Warn("persist snapshot failed", "error", err)
	}
}

func (s *Store) persistUser(user *domain.User) {
	if err := s.local.Save(collectionUsers, user.ID, user); err != nil {
		s.logger.Warn("persist user failed", "user_id", user.ID, "error", err)
	}
}

// Signup registers a new account and makes it the active identity. It
// fails when the username is already taken (case-sensitive exact match).
func (s *Store) Signup(username, password, name, email, avatar string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByUsername(username) != nil {
		return false
	}

	user := &domain.User{
		ID:       s.newID(),
		Username: username,
		Password: password,
		Name:     name,
		Email:    email,
		Avatar:   avatar,
		Progress: domain.NewUserProgress(),
	}
	s.users[user.ID] = user
	s.order = append(s.order, user.ID)
	s.currentID = user.ID
	s.loggedIn = true

	s.persistUser(user)
	s.persist()
	return true
}

// Login sets the active identity if username and password both match.
// On failure nothing changes.
func (s *Store) Login(username, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findByUsername(username)
	if user == nil || user.Password != password {
		return false
	}

	s.currentID = user.ID
	s.loggedIn = true
	s.persist()
	return true
}

// Logout clears the active identity. No user or progress data is deleted.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentID = ""
	s.loggedIn = false
	s.persist()
}

// IsLoggedIn reports whether an account is active
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// CurrentUser returns a copy of the active account, or false when logged
// out. The copy shares the progress record; callers must not mutate it.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loggedIn {
		return domain.User{}, false
	}
	user, ok := s.users[s.currentID]
	if !ok {
		return domain.User{}, false
	}
	return *user, true
}

// ProfileUpdate carries the optional profile fields. Nil means "leave
// unchanged".
type ProfileUpdate struct {
	Name   *string
	Email  *string
	Avatar *string
}

// UpdateProfile applies a field-level overwrite to the active user.
// No-op when logged out.
func (s *Store) UpdateProfile(update ProfileUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		return
	}
	user, ok := s.users[s.currentID]
	if !ok {
		return
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	s.persist()
}

// ChangePassword overwrites the active user's password when oldPassword
// matches exactly.
func (s *Store) ChangePassword(oldPassword, newPassword string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		return false
	}
	user, ok := s.users[s.currentID]
	if !ok || user.Password != oldPassword {
		return false
	}

	user.Password = newPassword
	s.persist()
	return true
}

// Users returns the registered accounts in signup order. Read-only.
func (s *Store) Users() []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.order))
	for _, id := range s.order {
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}
	return users
}

func (s *Store) findByUsername(username string) *domain.User {
	for _, user := range s.users {
		if user.Username == username {
			return user
		}
	}
	return nil
}

// MarkProblemSolved records a solve: idempotent set add, and the problem
// leaves the attempted set unconditionally. The first solve of a problem
// advances the streak counters.
func (s *Store) MarkProblemSolved(problemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.active()
	if !containsID(p.Solved, problemID) {
		p.Solved = append(p.Solved, problemID)
		advanceStreak(&p.Streak, s.now())
	}
	p.Attempted = removeID(p.Attempted, problemID)
	s.persist()
}

// MarkProblemAttempted records an unsuccessful attempt. Solved is sticky:
// a solved problem is never downgraded to attempted.
func (s *Store) MarkProblemAttempted(problemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.active()
	if containsID(p.Solved, problemID) {
		return
	}
	if !containsID(p.Attempted, problemID) {
		p.Attempted = append(p.Attempted, problemID)
	}
	s.persist()
}

// ToggleBookmark flips the problem's bookmark membership
func (s *Store) ToggleBookmark(problemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.active()
	if containsID(p.Bookmarked, problemID) {
		p.Bookmarked = removeID(p.Bookmarked, problemID)
	} else {
		p.Bookmarked = append(p.Bookmarked, problemID)
	}
	s.persist()
}

// SaveCode overwrites the stored source for the exact (problem, language)
// pair. Other languages for the same problem are untouched.
func (s *Store) SaveCode(problemID, language, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.active()
	byLanguage, ok := p.CodeByProblem[problemID]
	if !ok {
		byLanguage = make(map[string]string)
		p.CodeByProblem[problemID] = byLanguage
	}
	byLanguage[language] = code
	s.persist()
}

// GetCode returns the stored source for the pair, or the empty string
func (s *Store) GetCode(problemID, language string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active().CodeByProblem[problemID][language]
}

// AddSubmission appends a submission with a fresh ID and the current
// timestamp to the problem's history. Existing entries are never removed
// or reordered. The completed record is returned.
func (s *Store) AddSubmission(problemID string, submission domain.CodeSubmission) domain.CodeSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()

	if submission.ID == "" {
		submission.ID = s.newID()
	}
	submission.Timestamp = s.now().UnixMilli()

	p := s.active()
	p.Submissions[problemID] = append(p.Submissions[problemID], submission)
	s.persist()
	return submission
}

// GetSubmissions returns the problem's submission history in order,
// empty when none were recorded.
func (s *Store) GetSubmissions(problemID string) []domain.CodeSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.active().Submissions[problemID]
	out := make([]domain.CodeSubmission, len(history))
	copy(out, history)
	return out
}

// StartSession unconditionally replaces any existing session for the
// problem with a fresh running one.
func (s *Store) StartSession(problemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active().Sessions[problemID] = &domain.ProblemSession{
		StartedAt: s.now().UnixMilli(),
	}
	s.persist()
}

// UpdateSession adds hintsDelta to the session's hint count. No-op when
// no session exists for the problem.
func (s *Store) UpdateSession(problemID string, hintsDelta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.active().Sessions[problemID]
	if !ok {
		return
	}
	session.HintsUsed += hintsDelta
	s.persist()
}

// EndSession folds the elapsed time into the session's total and stops
// the clock. Ending an already stopped session, or one that was never
// started, is a no-op.
func (s *Store) EndSession(problemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.active().Sessions[problemID]
	if !ok || session.StartedAt == 0 {
		return
	}
	session.TotalTimeMs += s.now().UnixMilli() - session.StartedAt
	session.StartedAt = 0
	s.persist()
}

// GetSession returns a copy of the problem's session, or false when none
// exists.
func (s *Store) GetSession(problemID string) (domain.ProblemSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.active().Sessions[problemID]
	if !ok {
		return domain.ProblemSession{}, false
	}
	return *session, true
}

// IsSolved reports whether the active progress has solved the problem
func (s *Store) IsSolved(problemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsID(s.active().Solved, problemID)
}

// IsAttempted reports whether the active progress has attempted the
// problem without solving it.
func (s *Store) IsAttempted(problemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsID(s.active().Attempted, problemID)
}

// IsBookmarked reports whether the problem is bookmarked
func (s *Store) IsBookmarked(problemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsID(s.active().Bookmarked, problemID)
}

// SolvedProblems returns a copy of the active solved set
func (s *Store) SolvedProblems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIDs(s.active().Solved)
}

// AttemptedProblems returns a copy of the active attempted set
func (s *Store) AttemptedProblems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIDs(s.active().Attempted)
}

// BookmarkedProblems returns a copy of the active bookmarked set
func (s *Store) BookmarkedProblems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIDs(s.active().Bookmarked)
}

// Streak returns the active streak counters
func (s *Store) Streak() domain.Streak {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active().Streak
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
