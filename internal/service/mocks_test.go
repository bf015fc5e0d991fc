package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/store"
)

// fakeTaskStore is an in-memory TaskStore for service tests.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	updateErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	existing, ok := f.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) List(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, task := range f.tasks {
		if f.matches(task, filter) {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) CountByStatus(
	_ context.Context,
	filter store.TaskFilter,
) (store.StatusCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var counts store.StatusCounts
	for _, task := range f.tasks {
		if !f.matches(task, filter) {
			continue
		}
		if task.Status == domain.TaskStatusComplete {
			counts.Complete++
		} else {
			counts.Active++
		}
	}
	return counts, nil
}

func (f *fakeTaskStore) ListCalendar(
	_ context.Context,
	filter store.CalendarFilter,
) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.UserID != filter.UserID || task.DueDate == nil {
			continue
		}
		if filter.From != nil && task.DueDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && task.DueDate.After(*filter.To) {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeTaskStore) BulkDelete(
	_ context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if task, ok := f.tasks[id]; ok && task.UserID == userID {
			delete(f.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeTaskStore) BulkUpdateStatus(
	_ context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
	status *domain.TaskStatus,
	completedAt *time.Time,
) (int64, error) {
	if status == nil && completedAt == nil {
		return 0, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var modified int64
	for _, id := range ids {
		task, ok := f.tasks[id]
		if !ok || task.UserID != userID {
			continue
		}
		if status != nil {
			task.Status = *status
			task.CompletedAt = completedAt
		} else if completedAt != nil {
			task.CompletedAt = completedAt
		}
		modified++
	}
	return modified, nil
}

func (f *fakeTaskStore) matches(task *domain.Task, filter store.TaskFilter) bool {
	if task.UserID != filter.UserID {
		return false
	}
	if filter.CreatedAfter != nil && task.CreatedAt.Before(*filter.CreatedAfter) {
		return false
	}
	if filter.WithoutCategory {
		return task.CategoryID == nil
	}
	if filter.CategoryID != nil {
		return task.CategoryID != nil && *task.CategoryID == *filter.CategoryID
	}
	return true
}

// fakeCategoryStore is an in-memory CategoryStore for service tests.
type fakeCategoryStore struct {
	mu         sync.Mutex
	categories map[uuid.UUID]*domain.Category
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: make(map[uuid.UUID]*domain.Category)}
}

var _ store.CategoryStore = (*fakeCategoryStore)(nil)

func (f *fakeCategoryStore) Create(_ context.Context, category *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.UserID == category.UserID && existing.Name == category.Name {
			return store.ErrCategoryExists
		}
	}
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryStore) GetByID(
	_ context.Context,
	userID, id uuid.UUID,
) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	category, ok := f.categories[id]
	if !ok || category.UserID != userID {
		return nil, store.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

func (f *fakeCategoryStore) GetByName(
	_ context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, category := range f.categories {
		if category.UserID == userID && category.Name == name {
			copied := *category
			return &copied, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (f *fakeCategoryStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
) ([]*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Category
	for _, category := range f.categories {
		if category.UserID == userID {
			copied := *category
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeUserStore is an in-memory UserStore for service tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

var _ store.UserStore = (*fakeUserStore)(nil)

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return store.ErrUserExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) ExistsByUsernameOrEmail(
	_ context.Context,
	username, email string,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdateAvatar(
	_ context.Context,
	id uuid.UUID,
	avatarURL string,
) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user.AvatarURL = avatarURL
	copied := *user
	return &copied, nil
}

// fakeStorage is an in-memory blob.Storage for service tests.
type fakeStorage struct {
	mu    sync.Mutex
	cloud bool
	blobs map[string][]byte

	uploadErr error
	deleteErr error
}

func newFakeStorage(cloud bool) *fakeStorage {
	return &fakeStorage{cloud: cloud, blobs: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(
	_ context.Context,
	key string,
	data []byte,
	_ string,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.blobs[key] = data
	if f.cloud {
		return fmt.Sprintf("https://example.blob.core.windows.net/uploads/%s?sig=abc", key), nil
	}
	return "/api/uploads/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeStorage) Cloud() bool { return f.cloud }
