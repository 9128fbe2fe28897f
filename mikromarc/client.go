package mikromarc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/indexdata/ilsdriver/httpclient"
	"github.com/indexdata/ilsdriver/ils"
)

// maxPages caps cursor pagination; the backend has been seen returning the
// same next link forever.
const maxPages = 100

var skipPattern = regexp.MustCompile(`\$skip=\d+`)

type odataError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope is the outer OData response shape. Value and the next link are
// only present on collection responses; Error and ExceptionTime mark the
// two error shapes the backend produces.
type envelope struct {
	Value         json.RawMessage `json:"value"`
	NextLink      string          `json:"@odata.nextLink"`
	Error         *odataError     `json:"error"`
	ExceptionTime json.RawMessage `json:"ExceptionTime"`
}

func (e *envelope) failed() bool {
	return e.Error != nil || len(e.ExceptionTime) > 0
}

func (d *Driver) apiURL(hierarchy ...string) string {
	u := strings.TrimRight(d.cfg.Host, "/")
	u += "/" + url.PathEscape(d.cfg.Base)
	u += "/" + url.PathEscape(d.cfg.Unit)
	for _, part := range hierarchy {
		u += "/" + url.PathEscape(part)
	}
	return u
}

// getRaw performs a GET and follows the OData next link, accumulating the
// value arrays. A response without a value wrapper is taken as the whole
// collection.
func (d *Driver) getRaw(op string, hierarchy []string, query url.Values) ([]json.RawMessage, error) {
	u := d.apiURL(hierarchy...)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var items []json.RawMessage
	for page := 0; page < maxPages; page++ {
		resp, err := d.hc.Do(d.client, http.MethodGet, u, "", nil)
		if err != nil {
			d.logger.Error("request failed", "op", op, "url", u, "error", err)
			return nil, &ils.TransportError{Op: op, Err: err}
		}
		var env envelope
		decodeErr := json.Unmarshal(resp.Body, &env)
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if decodeErr != nil || env.failed() {
				d.logger.Error("request failed", "op", op, "url", u,
					"status", resp.StatusCode, "body", string(resp.Body))
				return nil, &ils.TransportError{Op: op, StatusCode: resp.StatusCode}
			}
		}
		var pageItems []json.RawMessage
		if env.Value != nil {
			if err := json.Unmarshal(env.Value, &pageItems); err != nil {
				return nil, &ils.TransportError{Op: op, Err: err}
			}
		} else if decodeErr != nil || json.Unmarshal(resp.Body, &pageItems) != nil {
			return nil, &ils.TransportError{Op: op, StatusCode: resp.StatusCode}
		}
		items = append(items, pageItems...)
		next := env.NextLink
		if next == "" {
			break
		}
		// The backend hands out plain-http links behind TLS terminators.
		if strings.HasPrefix(u, "https:") && strings.HasPrefix(next, "http:") {
			next = "https:" + next[len("http:"):]
		}
		// At least with LibraryUnits the same link may repeat; resume by
		// rewriting the skip offset once.
		if next == u {
			next = skipPattern.ReplaceAllString(next, "$$skip="+strconv.Itoa(len(items)))
			if next == u {
				d.logger.Error("could not rewrite $skip parameter", "op", op, "url", u)
				break
			}
		}
		u = next
	}
	return items, nil
}

// getList fetches a full OData collection.
func getList[T any](d *Driver, op string, hierarchy []string, query url.Values) ([]T, error) {
	raw, err := d.getRaw(op, hierarchy, query)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, &ils.TransportError{Op: op, Err: err}
		}
		items = append(items, item)
	}
	return items, nil
}

// getObject fetches a single entity.
func getObject[T any](d *Driver, op string, hierarchy []string) (*T, error) {
	u := d.apiURL(hierarchy...)
	resp, err := d.hc.Do(d.client, http.MethodGet, u, "", nil)
	if err != nil {
		d.logger.Error("request failed", "op", op, "url", u, "error", err)
		return nil, &ils.TransportError{Op: op, Err: err}
	}
	var env envelope
	decodeErr := json.Unmarshal(resp.Body, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || (decodeErr == nil && env.failed()) {
		d.logger.Error("request failed", "op", op, "url", u,
			"status", resp.StatusCode, "body", string(resp.Body))
		return nil, &ils.TransportError{Op: op, StatusCode: resp.StatusCode}
	}
	var item T
	if err := json.Unmarshal(resp.Body, &item); err != nil {
		return nil, &ils.TransportError{Op: op, Err: err}
	}
	return &item, nil
}

// send performs a mutating request and hands the status code back to the
// caller, which owns the success/denial decision. The result is unwrapped
// from the value envelope when one is present.
func (d *Driver) send(op, method string, hierarchy []string, body any) (int, json.RawMessage, *odataError, error) {
	u := d.apiURL(hierarchy...)
	var reader io.Reader
	contentType := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, nil, err
		}
		reader = bytes.NewReader(buf)
		contentType = httpclient.ContentTypeApplicationJson
	}
	resp, err := d.hc.Do(d.client, method, u, contentType, reader)
	if err != nil {
		d.logger.Error("request failed", "op", op, "url", u, "error", err)
		return 0, nil, nil, &ils.TransportError{Op: op, Err: err}
	}
	var env envelope
	// An empty or non-JSON body is fine for 204-style responses.
	_ = json.Unmarshal(resp.Body, &env)
	result := json.RawMessage(resp.Body)
	if env.Value != nil {
		result = env.Value
	}
	return resp.StatusCode, result, env.Error, nil
}
