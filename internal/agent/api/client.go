// Package api содержит HTTP-клиент для сервера проката машин.
//
// Клиент инкапсулирует базовый URL сервера и настроенный http.Client,
// предоставляя методы для JSON-запросов с авторизацией через Bearer токен.
//
// Особенности:
//   - baseURL нормализуется (обрезаются завершающие "/").
//   - Заголовок Content-Type: application/json добавляется только при наличии тела запроса.
//   - Пустое тело ответа (EOF при декодировании) не считается ошибкой.
//   - Сервер отвечает конвертом {success, message}. Ответ не 2xx или success=false
//     превращается в *Error с текстом message.
//
// ВНИМАНИЕ: NewClient включает InsecureSkipVerify=true (TLS сертификат не проверяется).
// Это допустимо только для разработки и локального окружения.
package api

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Error - ошибка, которую вернул сервер.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusOf возвращает HTTP-статус ошибки сервера или 0, если err пришла не от сервера.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client реализует HTTP-клиент для общения с сервером.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создаёт новый HTTP-клиент.
//
// baseURL - адрес сервера, например "http://127.0.0.1:8080".
//
// ВНИМАНИЕ: InsecureSkipVerify=true отключает проверку сертификата и делает TLS
// уязвимым для MITM. Использовать только для локальной разработки/тестов.
func NewClient(baseURL string) *Client {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // только для dev
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: tr,
		},
	}
}

// envelope - общая часть любого ответа сервера.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// readAPIErrorBody превращает ошибочный ответ в *Error.
//
// Если тело - конверт с message, берётся он; иначе текст тела или res.Status.
func readAPIErrorBody(res *http.Response) error {
	raw, _ := io.ReadAll(res.Body)

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return &Error{Status: res.StatusCode, Message: env.Message}
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = res.Status
	}
	return &Error{Status: res.StatusCode, Message: msg}
}

// decodeJSONOrOK декодирует тело в resp и проверяет флаг success.
//
// Пустое тело не ошибка. Если resp == nil, тело всё равно читается, чтобы
// не пропустить success=false.
func decodeJSONOrOK(status int, r io.Reader, resp any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Status: status, Message: msg}
	}

	if resp == nil {
		return nil
	}
	return json.Unmarshal(raw, resp)
}

func (c *Client) do(method, path string, req any, accept, authToken string) (*http.Response, error) {
	var body io.Reader
	if req != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(req); err != nil {
			return nil, err
		}
		body = &buf
	}

	r, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", accept)
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		r.Header.Set("Authorization", "Bearer "+authToken)
	}

	res, err := c.http.Do(r)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer res.Body.Close()
		return nil, readAPIErrorBody(res)
	}
	return res, nil
}

// PostJSON выполняет POST-запрос, сериализуя req в JSON, и декодирует ответ в resp.
//
// req == nil - запрос без тела; resp == nil - ответ только проверяется.
func (c *Client) PostJSON(path string, req any, resp any, authToken string) error {
	res, err := c.do(http.MethodPost, path, req, "application/json", authToken)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return decodeJSONOrOK(res.StatusCode, res.Body, resp)
}

// GetJSON выполняет GET-запрос и декодирует JSON-ответ в resp.
func (c *Client) GetJSON(path string, resp any, authToken string) error {
	res, err := c.do(http.MethodGet, path, nil, "application/json", authToken)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return decodeJSONOrOK(res.StatusCode, res.Body, resp)
}

// GetBytes выполняет GET-запрос и возвращает тело как есть (для файлов).
func (c *Client) GetBytes(path, accept, authToken string) ([]byte, error) {
	res, err := c.do(http.MethodGet, path, nil, accept, authToken)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return io.ReadAll(res.Body)
}
