package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Session holds the authenticated HTTP connection to the backend.
type Session struct {
	BaseURL string
	Token   string
	http    *http.Client
}

func NewSession() *Session {
	return &Session{http: &http.Client{Timeout: 15 * time.Second}}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type apiError struct {
	Error string `json:"error"`
}

// Login authenticates against /login and stores the bearer token.
func (s *Session) Login(baseURL, username, password string) error {
	s.BaseURL = baseURL
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := s.http.Post(baseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login rejected: %s", readAPIError(resp.Body))
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("invalid auth response: %w", err)
	}
	s.Token = tok.AccessToken
	return nil
}

type BackupEntry struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	FileURL   string `json:"file_url"`
	CreatedAt int64  `json:"created_at"`
}

// ListBackups fetches the caller's backups, or every user's when all is set
// and the token carries the admin role.
func (s *Session) ListBackups(all bool) ([]BackupEntry, error) {
	path := "/backups"
	if all {
		path += "?all=true"
	}
	var entries []BackupEntry
	if err := s.getJSON(path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateFullBackup asks the backend to archive every structure of the account.
func (s *Session) CreateFullBackup() (string, error) {
	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/backups/full", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("backup failed: %s", readAPIError(resp.Body))
	}
	var out struct {
		FileURL string `json:"file_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.FileURL, nil
}

// DeleteBackup removes the registry row and its archive file.
func (s *Session) DeleteBackup(id string) error {
	req, err := http.NewRequest(http.MethodDelete, s.BaseURL+"/backups/delete?id="+url.QueryEscape(id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete failed: %s", readAPIError(resp.Body))
	}
	return nil
}

func (s *Session) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed: %s", readAPIError(resp.Body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readAPIError(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var ae apiError
	if err := json.Unmarshal(data, &ae); err == nil && ae.Error != "" {
		return ae.Error
	}
	if len(data) == 0 {
		return "no response body"
	}
	return string(data)
}
