// Package soap implements the minimal SOAP 1.1 document/literal exchange
// used by the Axiell web services. Request payloads carry their own
// namespaced XMLName; response payloads are matched by position inside the
// Body, so they need no XMLName.
package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/indexdata/ilsdriver/httpclient"
)

const envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

type requestEnvelope struct {
	XMLName xml.Name `xml:"SOAP-ENV:Envelope"`
	NS      string   `xml:"xmlns:SOAP-ENV,attr"`
	Body    requestBody
}

type requestBody struct {
	XMLName xml.Name `xml:"SOAP-ENV:Body"`
	Payload any
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    responseBody
}

type responseBody struct {
	Fault *Fault `xml:"Fault"`
	Inner []byte `xml:",innerxml"`
}

// Fault is a SOAP fault, returned as the call error.
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail string `xml:"detail"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

// Client invokes SOAP operations against one endpoint URL.
type Client struct {
	URL             string
	MaxResponseSize int64
}

// Call posts req wrapped in an envelope and unmarshals the single Body
// child of the response into res. A Body carrying a Fault is returned as a
// *Fault error, also when it rides on an HTTP 500.
func (c *Client) Call(client *http.Client, action string, req any, res any) error {
	buf, err := xml.Marshal(requestEnvelope{
		NS:   envelopeNS,
		Body: requestBody{Payload: req},
	})
	if err != nil {
		return fmt.Errorf("marshal failed: %v", err)
	}
	hc := httpclient.NewClient().WithHeaders("SOAPAction", `"`+action+`"`)
	if c.MaxResponseSize > 0 {
		hc.WithMaxSize(c.MaxResponseSize)
	}
	body := append([]byte(xml.Header), buf...)
	resp, err := hc.Do(client, http.MethodPost, c.URL, "text/xml; charset=utf-8", bytes.NewReader(body))
	if err != nil {
		return err
	}
	var envelope responseEnvelope
	if err := xml.Unmarshal(resp.Body, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &httpclient.HttpError{StatusCode: resp.StatusCode, Body: resp.Body}
		}
		return err
	}
	if envelope.Body.Fault != nil {
		return envelope.Body.Fault
	}
	if resp.StatusCode != http.StatusOK {
		return &httpclient.HttpError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if res == nil {
		return nil
	}
	return xml.Unmarshal(envelope.Body.Inner, res)
}
