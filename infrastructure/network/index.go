package network

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"rollcall.io/infrastructure/logger"
)

const defaultTimeout = 10 * time.Second

// NetworkController is a thin JSON client bound to one upstream base url.
type NetworkController struct {
	BaseUrl string
	Timeout time.Duration
	Client  *http.Client

	once sync.Once
}

func (n *NetworkController) Get(ctx context.Context, path string, headers *map[string]string) (*[]byte, *int, error) {
	return n.do(ctx, http.MethodGet, path, headers, nil)
}

func (n *NetworkController) Post(ctx context.Context, path string, headers *map[string]string, body interface{}) (*[]byte, *int, error) {
	return n.do(ctx, http.MethodPost, path, headers, body)
}

// CloseIdleConnections releases pooled connections on shutdown.
func (n *NetworkController) CloseIdleConnections() {
	n.client().CloseIdleConnections()
}

func (n *NetworkController) client() *http.Client {
	n.once.Do(func() {
		if n.Client != nil {
			return
		}
		timeout := n.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		n.Client = &http.Client{Timeout: timeout}
	})
	return n.Client
}

func (n *NetworkController) do(ctx context.Context, method string, path string, headers *map[string]string, body interface{}) (*[]byte, *int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			logger.Error("could not marshal request body", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return nil, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(n.BaseUrl, "/")+path, reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if headers != nil {
		for key, value := range *headers {
			req.Header.Set(key, value)
		}
	}

	res, err := n.client().Do(req)
	if err != nil {
		logger.Error("upstream request failed", logger.LoggerOptions{
			Key:  "url",
			Data: req.URL.String(),
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &res.StatusCode, err
	}
	return &data, &res.StatusCode, nil
}
