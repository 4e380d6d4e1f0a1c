package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// RepoMock is an in-memory Repo used by tests of the packages above.
type RepoMock struct {
	Users  map[int]*User
	nextID int
	mutex  sync.Mutex
}

func NewRepoMock() *RepoMock {
	return &RepoMock{
		Users:  make(map[int]*User),
		nextID: 1,
	}
}

func (r *RepoMock) Add(_ context.Context, user *User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, u := range r.Users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
	}

	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now()
	}
	user.ID = r.nextID
	r.nextID++

	stored := *user
	r.Users[user.ID] = &stored
	return nil
}

func (r *RepoMock) Get(_ context.Context, id int) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, ok := r.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := *u
	return &user, nil
}

func (r *RepoMock) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, u := range r.Users {
		if u.Username == username {
			user := *u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *RepoMock) List(context.Context) ([]*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var users []*User
	for _, u := range r.Users {
		user := *u
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *RepoMock) SetLastLogin(_ context.Context, id int, at time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, ok := r.Users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}
