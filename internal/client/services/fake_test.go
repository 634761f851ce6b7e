package services

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
)

type dataCall struct {
	op     string
	table  string
	values url.Values
	body   any
	token  string
}

// fakeData answers client.Data calls from canned JSON keyed by
// "<op>:<table>".
type fakeData struct {
	mu        sync.Mutex
	calls     []dataCall
	responses map[string]string
	errs      map[string]error
}

var _ client.Data = (*fakeData)(nil)

func newFakeData() *fakeData {
	return &fakeData{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeData) record(op, table string, values url.Values, body any, sess *models.Session, out any) error {
	f.mu.Lock()
	c := dataCall{op: op, table: table, values: values, body: body}
	if sess != nil {
		c.token = sess.AccessToken
	}
	f.calls = append(f.calls, c)
	key := op + ":" + table
	err, raw := f.errs[key], f.responses[key]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if out == nil || raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func (f *fakeData) Calls() []dataCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dataCall(nil), f.calls...)
}

func (f *fakeData) Select(_ context.Context, sess *models.Session, q *client.Query, out any) error {
	return f.record("select", q.Table(), q.Values(true), nil, sess, out)
}

func (f *fakeData) SelectSingle(_ context.Context, sess *models.Session, q *client.Query, out any) error {
	return f.record("single", q.Table(), q.Values(true), nil, sess, out)
}

func (f *fakeData) Insert(_ context.Context, sess *models.Session, table string, row any, out any) error {
	return f.record("insert", table, nil, row, sess, out)
}

func (f *fakeData) Update(_ context.Context, sess *models.Session, q *client.Query, patch any, out any) error {
	return f.record("update", q.Table(), q.Values(out != nil), patch, sess, out)
}

func (f *fakeData) RPC(_ context.Context, sess *models.Session, fn string, args any, out any) error {
	return f.record("rpc", fn, nil, args, sess, out)
}
