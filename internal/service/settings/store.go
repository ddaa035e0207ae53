// Package settings persists the mutable monitor settings as one key-value
// document per section.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// Store 单个配置文档, 格式由扩展名决定 (json/yaml/toml)
type Store[T any] struct {
	mu   sync.RWMutex
	path string
	cur  T
}

// Load reads path into a T. A missing or malformed document is replaced by
// the documented defaults, which are written back immediately.
func Load[T any](path string) (*Store[T], error) {
	s := &Store[T]{path: path}
	cur, err := s.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("settings file not found, writing defaults", "path", path)
		} else {
			slog.Warn("malformed settings, falling back to defaults", "path", path, "error", err)
		}
		cur, err = Defaults[T]()
		if err != nil {
			return nil, err
		}
		if err := s.write(cur); err != nil {
			return nil, err
		}
	}
	s.cur = cur
	return s, nil
}

// Defaults returns a T populated from its default tags.
func Defaults[T any]() (T, error) {
	var t T
	if err := defaults.Set(&t); err != nil {
		return t, fmt.Errorf("settings: defaults: %w", err)
	}
	return t, nil
}

func (s *Store[T]) read() (T, error) {
	cur, err := Defaults[T]()
	if err != nil {
		return cur, err
	}
	if _, err := os.Stat(s.path); err != nil {
		return cur, err
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return cur, err
	}
	// 文件里缺失的字段保持默认值
	if err := v.Unmarshal(&cur); err != nil {
		return cur, err
	}
	if err := validate.Struct(&cur); err != nil {
		return cur, err
	}
	return cur, nil
}

func (s *Store[T]) write(t T) error {
	raw, err := sonic.Marshal(t)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := sonic.Unmarshal(raw, &m); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.MergeConfigMap(m); err != nil {
		return err
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store[T]) Path() string {
	return s.path
}

func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update applies fn to a copy, validates and persists it. The in-memory
// value only changes when the write succeeds.
func (s *Store[T]) Update(fn func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur
	if err := fn(&next); err != nil {
		return s.cur, err
	}
	if err := validate.Struct(&next); err != nil {
		return s.cur, err
	}
	if err := s.write(next); err != nil {
		return s.cur, err
	}
	s.cur = next
	return next, nil
}
