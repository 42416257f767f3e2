// Package config хранит локальное состояние CLI-клиента.
//
// Учётные данные лежат в домашней директории пользователя:
//
//	~/.carrental/credentials.json
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Credentials - то, что CLI запоминает после входа.
//
// Token - access-токен (JWT) для защищённых эндпоинтов.
// Server - адрес сервера, на котором токен был получен.
type Credentials struct {
	Token  string `json:"token"`
	Email  string `json:"email,omitempty"`
	Server string `json:"server,omitempty"`
}

// LoggedIn сообщает, есть ли сохранённый токен.
func (c *Credentials) LoggedIn() bool {
	return c != nil && c.Token != ""
}

// DefaultPath возвращает <home>/.carrental/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".carrental", "credentials.json"), nil
}

// Load загружает учётные данные. Отсутствующий файл - пустые данные без ошибки.
func Load(path string) (*Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{}, nil
		}
		return nil, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save записывает учётные данные с правами 0600, создавая директорию с правами 0700.
func Save(path string, c *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Remove удаляет файл учётных данных. Отсутствие файла не ошибка.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
