package client

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"tracker-api/domain"
)

// JSONBin talks to the remote JSON-document store that holds the full task
// document. Reads and writes always move the whole document.
type JSONBin struct {
	base
	binID     string
	masterKey string
}

// NewJSONBin creates a client for one bin. A non-positive timeout falls back
// to the 10s default.
func NewJSONBin(baseURL, binID, masterKey string, timeout time.Duration) *JSONBin {
	return &JSONBin{
		base:      newBase(baseURL, timeout),
		binID:     binID,
		masterKey: masterKey,
	}
}

func (c *JSONBin) authHeaders() map[string]string {
	return map[string]string{"X-Master-Key": c.masterKey}
}

// Fetch retrieves the latest version of the document. The raw payload is
// schema-validated before decoding so a bin holding garbage surfaces as a
// TransportError instead of leaking into the domain layer.
func (c *JSONBin) Fetch(ctx context.Context) (domain.Document, error) {
	headers := c.authHeaders()
	headers["X-Bin-Meta"] = "false"

	data, err := c.do(ctx, http.MethodGet, "b/"+c.binID+"/latest", headers, nil, http.StatusOK)
	if err != nil {
		return domain.Document{}, err
	}
	if err := domain.ValidateDocument(data); err != nil {
		return domain.Document{}, &TransportError{Status: http.StatusOK, Body: snippet(data), Err: err}
	}
	var doc domain.Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, &TransportError{Status: http.StatusOK, Body: snippet(data), Err: err}
	}
	if doc.Tasks == nil {
		doc.Tasks = []domain.Task{}
	}
	return doc, nil
}

// Push overwrites the remote document with a complete replacement.
func (c *JSONBin) Push(ctx context.Context, doc domain.Document) error {
	_, err := c.do(ctx, http.MethodPut, "b/"+c.binID, c.authHeaders(), doc, http.StatusOK, http.StatusCreated)
	return err
}
