package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "asha/internal/errors"
	"asha/internal/model"
)

// userRow is the on-disk shape of a user; unlike model.User it keeps the hash.
type userRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.Password,
		CreatedAt:    r.CreatedAt,
	}
}

// fileUserRepository keeps every user in one JSON array file. The whole
// collection is read and rewritten per mutation under a single mutex.
type fileUserRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileUserRepository builds a file-backed repository, creating the file
// (containing an empty array) and its directory when missing.
func NewFileUserRepository(path string) (UserRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create users dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
			return nil, fmt.Errorf("init users file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat users file: %w", err)
	}
	return &fileUserRepository{path: path}, nil
}

func (r *fileUserRepository) Create(_ context.Context, user *model.User, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.load()
	if err != nil {
		return err
	}
	if len(rows) >= limit {
		return apperrors.ErrUserLimitReached
	}
	for _, row := range rows {
		if row.Email == user.Email {
			return apperrors.ErrEmailRegistered
		}
	}

	rows = append(rows, userRow{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
	})
	return r.save(rows)
}

func (r *fileUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Email == email {
			return row.toModel(), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fileUserRepository) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.load()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *fileUserRepository) load() ([]userRow, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var rows []userRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode users file: %w", err)
	}
	return rows, nil
}

// save writes to a sibling temp file and renames it over the original so a
// crash mid-write never leaves a truncated collection behind.
func (r *fileUserRepository) save(rows []userRow) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp users file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp users file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}
