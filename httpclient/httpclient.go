package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	ContentTypeApplicationJson string = "application/json"
	ContentType                string = "Content-Type"
)

const DefaultMaxResponseSize int64 = 1024 * 1024 * 10 // 10MB

type HttpError struct {
	StatusCode int
	Body       []byte
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
}

// Response is the raw outcome of Do, for callers that decide on the status
// code themselves.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

type HttpClient struct {
	Headers         http.Header
	MaxResponseSize int64
	basicUser       string
	basicPass       string
}

func NewClient() *HttpClient {
	return &HttpClient{Headers: http.Header{}, MaxResponseSize: DefaultMaxResponseSize}
}

func (c *HttpClient) WithMaxSize(maxResponseSize int64) *HttpClient {
	c.MaxResponseSize = maxResponseSize
	return c
}

func (c *HttpClient) WithHeaders(headers ...string) *HttpClient {
	if c.Headers == nil {
		c.Headers = http.Header{}
	}
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i] == "" {
			continue
		}
		c.Headers.Add(headers[i], headers[i+1])
	}
	return c
}

func (c *HttpClient) WithBasicAuth(user string, password string) *HttpClient {
	c.basicUser = user
	c.basicPass = password
	return c
}

// Do performs the request and returns the response whatever its status,
// erroring only on transport failures. The body is fully read and bounded
// by MaxResponseSize.
func (c *HttpClient) Do(client *http.Client, method string, url string, contentType string, reader io.Reader) (*Response, error) {
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	if c.Headers != nil {
		req.Header = c.Headers.Clone()
	}
	if contentType != "" {
		req.Header.Set(ContentType, contentType)
	}
	if c.basicUser != "" {
		req.SetBasicAuth(c.basicUser, c.basicPass)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		dErr := resp.Body.Close()
		if dErr != nil {
			fmt.Printf("failed to close body: %v", dErr)
		}
	}()
	buf, err := c.readResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: buf}, nil
}

func (c *HttpClient) readResponse(body io.Reader) ([]byte, error) {
	if c.MaxResponseSize > 0 {
		body = NewLimitErrorReader(body, c.MaxResponseSize)
	}
	buf, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

type LimitErrorReader struct {
	reader *io.LimitedReader
}

func NewLimitErrorReader(r io.Reader, limit int64) *LimitErrorReader {
	return &LimitErrorReader{
		reader: &io.LimitedReader{R: r, N: limit},
	}
}

func (ler *LimitErrorReader) Read(p []byte) (int, error) {
	if ler.reader.N <= 0 {
		return 0, errors.New("response body too large")
	}
	return ler.reader.Read(p)
}
