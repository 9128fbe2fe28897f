package soap

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingRequest struct {
	XMLName xml.Name `xml:"urn:example ping"`
	Msg     string   `xml:"msg"`
}

type pingResponse struct {
	Msg string `xml:"msg"`
}

func TestCall(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, `"urn:example#ping"`, r.Header.Get("SOAPAction"))
		buf, err := io.ReadAll(r.Body)
		assert.Nil(t, err)
		body := string(buf)
		assert.Contains(t, body, "<SOAP-ENV:Envelope")
		assert.Contains(t, body, "<SOAP-ENV:Body>")
		assert.Contains(t, body, "<msg>hello</msg>")
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, err = w.Write([]byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
 <soap:Body>
  <ns:pingResponse xmlns:ns="urn:example"><msg>world</msg></ns:pingResponse>
 </soap:Body>
</soap:Envelope>`))
		assert.Nil(t, err)
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	c := &Client{URL: server.URL}
	var res pingResponse
	err := c.Call(http.DefaultClient, "urn:example#ping", pingRequest{Msg: "hello"}, &res)
	assert.Nil(t, err)
	assert.Equal(t, "world", res.Msg)
}

func TestCallFault(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, err := w.Write([]byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
 <soap:Body>
  <soap:Fault>
   <faultcode>soap:Server</faultcode>
   <faultstring>backend unavailable</faultstring>
  </soap:Fault>
 </soap:Body>
</soap:Envelope>`))
		assert.Nil(t, err)
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	c := &Client{URL: server.URL}
	err := c.Call(http.DefaultClient, "urn:example#ping", pingRequest{Msg: "x"}, nil)
	assert.NotNil(t, err)
	fault, ok := err.(*Fault)
	assert.True(t, ok)
	assert.Equal(t, "soap:Server", fault.Code)
	assert.ErrorContains(t, err, "backend unavailable")
}

func TestCallHttpErrorWithoutEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	c := &Client{URL: server.URL}
	err := c.Call(http.DefaultClient, "a", pingRequest{}, nil)
	assert.ErrorContains(t, err, "HTTP error 502")
}

func TestCallConnectionRefused(t *testing.T) {
	c := &Client{URL: "http://localhost:1"}
	err := c.Call(http.DefaultClient, "a", pingRequest{}, nil)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "invalid"))
}
