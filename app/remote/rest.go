package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RESTBackend talks to a PostgREST-style service: one resource per table
// under /rest/v1, filters as query parameters, api key plus bearer auth.
type RESTBackend struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	log        *zap.Logger
}

// NewRESTBackend builds a backend for the given base URL. The service key is
// sent both as the apikey header and as the bearer token, matching the
// hosted service's anonymous-role convention.
func NewRESTBackend(baseURL, serviceKey string, log *zap.Logger) *RESTBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &RESTBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

func (b *RESTBackend) Table(name string) EntityService {
	return &restTable{backend: b, table: name}
}

type restTable struct {
	backend *RESTBackend
	table   string
}

func (t *restTable) List(ctx context.Context) ([]Record, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	body, err := t.do(ctx, http.MethodGet, "list", q, nil)
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, NewError(KindNetwork, "list", t.table, "undecodable response body", err)
	}
	return recs, nil
}

func (t *restTable) Create(ctx context.Context, rec Record) (Record, error) {
	body, err := t.do(ctx, http.MethodPost, "create", nil, rec)
	if err != nil {
		return nil, err
	}
	return t.single(body, "create")
}

func (t *restTable) Update(ctx context.Context, id string, patch Record) (Record, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	body, err := t.do(ctx, http.MethodPatch, "update", q, patch)
	if err != nil {
		return nil, err
	}
	rec, err := t.single(body, "update")
	if err != nil {
		return nil, err
	}
	if rec == nil {
		// PATCH with a non-matching filter succeeds with an empty set.
		return nil, NewError(KindNotFound, "update", t.table, fmt.Sprintf("no row with id %s", id), nil)
	}
	return rec, nil
}

func (t *restTable) Delete(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	_, err := t.do(ctx, http.MethodDelete, "delete", q, nil)
	return err
}

// single unwraps the representation array the service returns for writes.
func (t *restTable) single(body []byte, op string) (Record, error) {
	var recs []Record
	if err := json.Unmarshal(body, &recs); err != nil {
		// Some deployments return a bare object for single-row writes.
		var rec Record
		if err2 := json.Unmarshal(body, &rec); err2 == nil {
			return rec, nil
		}
		return nil, NewError(KindNetwork, op, t.table, "undecodable response body", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func (t *restTable) do(ctx context.Context, method, op string, q url.Values, payload Record) ([]byte, error) {
	u := t.backend.baseURL + "/rest/v1/" + t.table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, NewError(KindValidation, op, t.table, "unencodable payload", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, NewError(KindNetwork, op, t.table, "building request", err)
	}
	req.Header.Set("apikey", t.backend.serviceKey)
	req.Header.Set("Authorization", "Bearer "+t.backend.serviceKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := t.backend.client.Do(req)
	if err != nil {
		t.backend.log.Warn("remote request failed",
			zap.String("table", t.table), zap.String("op", op), zap.Error(err))
		return nil, NewError(KindNetwork, op, t.table, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindNetwork, op, t.table, "reading response", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	kind := kindForStatus(resp.StatusCode)
	msg := serviceMessage(body)
	if msg == "" {
		msg = resp.Status
	}
	t.backend.log.Warn("remote call rejected",
		zap.String("table", t.table), zap.String("op", op),
		zap.Int("status", resp.StatusCode), zap.String("message", msg))
	return nil, NewError(kind, op, t.table, msg, nil)
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound, http.StatusNotAcceptable:
		return KindNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	}
	return KindNetwork
}

// serviceMessage digs the human-readable message out of an error body.
func serviceMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Details
}
