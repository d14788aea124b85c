// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

func conditionFailed(op string) error {
	return apperrors.NewAppErrorf(apperrors.CodeConditionFailed, nil, "%s: conditional check failed", op)
}

// failures lets a test force an operation to return an error.
type failures struct {
	mu   sync.Mutex
	errs map[string]error
}

// FailOn makes every later call of op return err. A nil err clears it.
func (f *failures) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

func (f *failures) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[op]
}

// Users is an in-memory store.UserStore
type Users struct {
	failures
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUsers() *Users {
	return &Users{users: make(map[string]models.User)}
}

func (s *Users) CreateUser(_ context.Context, user *models.User) error {
	if err := s.check("CreateUser"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Username]; exists {
		return conditionFailed("create_user")
	}
	s.users[user.Username] = *user
	return nil
}

func (s *Users) GetUser(_ context.Context, username string) (*models.User, error) {
	if err := s.check("GetUser"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return &u, nil
}

func (s *Users) SetSessionKey(_ context.Context, username, sessionKey string, at time.Time) error {
	if err := s.check("SetSessionKey"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return conditionFailed("set_session_key")
	}
	u.SessionKey = sessionKey
	u.LastLoginAt = at
	s.users[username] = u
	return nil
}

func (s *Users) FindBySessionKey(_ context.Context, sessionKey string) ([]models.User, error) {
	if err := s.check("FindBySessionKey"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.User
	for _, u := range s.users {
		if u.SessionKey != "" && u.SessionKey == sessionKey {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Users) UpdatePassword(_ context.Context, username, oldHash, newHash string) error {
	if err := s.check("UpdatePassword"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok || u.PasswordHash != oldHash {
		return conditionFailed("update_password")
	}
	u.PasswordHash = newHash
	s.users[username] = u
	return nil
}

func (s *Users) DeleteUser(_ context.Context, username string) error {
	if err := s.check("DeleteUser"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return apperrors.NotFound("user not found")
	}
	delete(s.users, username)
	return nil
}

// Put stores a user directly, bypassing conditions.
func (s *Users) Put(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
}

// Len returns the number of stored users.
func (s *Users) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Tasks is an in-memory store.TaskStore
type Tasks struct {
	failures
	mu    sync.RWMutex
	tasks map[string]models.Task
}

func NewTasks() *Tasks {
	return &Tasks{tasks: make(map[string]models.Task)}
}

func taskID(username, todoID string) string {
	return username + "\x00" + todoID
}

func (s *Tasks) ListTasks(_ context.Context, username string) ([]models.Task, error) {
	if err := s.check("ListTasks"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Task{}
	for _, t := range s.tasks {
		if t.Username == username {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TodoID < out[j].TodoID })
	return out, nil
}

func (s *Tasks) PutTask(_ context.Context, task *models.Task) error {
	if err := s.check("PutTask"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[taskID(task.Username, task.TodoID)] = *task
	return nil
}

func (s *Tasks) UpdateTitle(_ context.Context, username, todoID, title string) error {
	if err := s.check("UpdateTitle"); err != nil {
		return err
	}
	return s.mutate(username, todoID, func(t *models.Task) { t.Title = title })
}

func (s *Tasks) SetDone(_ context.Context, username, todoID string, done bool) error {
	if err := s.check("SetDone"); err != nil {
		return err
	}
	return s.mutate(username, todoID, func(t *models.Task) { t.IsDone = done })
}

func (s *Tasks) mutate(username, todoID string, fn func(*models.Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := taskID(username, todoID)
	t, ok := s.tasks[id]
	if !ok {
		return conditionFailed("update_task")
	}
	fn(&t)
	s.tasks[id] = t
	return nil
}

func (s *Tasks) DeleteTask(_ context.Context, username, todoID string) error {
	if err := s.check("DeleteTask"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, taskID(username, todoID))
	return nil
}

// Images is an in-memory store.ImageStore. Pre-signed URLs point at a fake host.
type Images struct {
	failures
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewImages() *Images {
	return &Images{objects: make(map[string][]byte)}
}

func (s *Images) PresignUpload(_ context.Context, key string, ttl time.Duration) (string, error) {
	if err := s.check("PresignUpload"); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://images.test/%s?method=PUT&expires=%d", key, int(ttl.Seconds())), nil
}

func (s *Images) PresignDownload(_ context.Context, key string, ttl time.Duration) (string, error) {
	if err := s.check("PresignDownload"); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://images.test/%s?method=GET&expires=%d", key, int(ttl.Seconds())), nil
}

func (s *Images) ListKeys(_ context.Context, prefix string) ([]string, error) {
	if err := s.check("ListKeys"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := []string{}
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Images) DeleteKeys(_ context.Context, keys []string) error {
	if err := s.check("DeleteKeys"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

// Upload simulates a client PUT through a pre-signed URL.
func (s *Images) Upload(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

// Has reports whether key exists.
func (s *Images) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}
