package notesauth

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const (
	testUserID    = "user-1"
	testUserEmail = "john.doe@ancorit.com"
	testUserName  = "Test User"
	testPassword  = "LetMeIn!"
)

// stubDirectory is an in-package Directory; the directory package cannot be
// imported here without a cycle.
type stubDirectory struct {
	mu        sync.RWMutex
	byID      map[string]User
	byEmail   map[string]string
	passwords map[string]string
	err       error
}

func newStubDirectory() *stubDirectory {
	d := &stubDirectory{
		byID:      map[string]User{},
		byEmail:   map[string]string{},
		passwords: map[string]string{},
	}
	_ = d.Create(context.Background(), User{ID: testUserID, Email: testUserEmail, Name: testUserName}, testPassword)
	return d
}

func (d *stubDirectory) FindByEmail(_ context.Context, email string) (User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.err != nil {
		return User{}, false, d.err
	}
	id, ok := d.byEmail[email]
	if !ok {
		return User{}, false, nil
	}
	return d.byID[id], true, nil
}

func (d *stubDirectory) FindByID(_ context.Context, id string) (User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.err != nil {
		return User{}, false, d.err
	}
	u, ok := d.byID[id]
	return u, ok, nil
}

func (d *stubDirectory) Create(_ context.Context, user User, password string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byID[user.ID]; ok {
		return ErrConflict
	}
	if _, ok := d.byEmail[user.Email]; ok {
		return ErrConflict
	}
	d.byID[user.ID] = user
	d.byEmail[user.Email] = user.ID
	d.passwords[user.Email] = password
	return nil
}

func (d *stubDirectory) VerifyPassword(_ context.Context, email, password string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.err != nil {
		return false, d.err
	}
	stored, ok := d.passwords[email]
	return ok && stored != "" && stored == password, nil
}

func (d *stubDirectory) remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byID[id]
	if !ok {
		return
	}
	delete(d.byID, id)
	delete(d.byEmail, u.Email)
	delete(d.passwords, u.Email)
}

func (d *stubDirectory) failWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func newTestEngine(t *testing.T, cfg Config, dir Directory) *Engine {
	t.Helper()

	engine, err := New().WithConfig(cfg).WithDirectory(dir).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newRedisTestEngine(t *testing.T, cfg Config, dir Directory) (*Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	cfg.Refresh.Backend = "redis"
	engine, err := New().WithConfig(cfg).WithRedis(rdb).WithDirectory(dir).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, mr
}
