package client

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/iov-one/weave"
	weaveapp "github.com/iov-one/weave/app"
	"github.com/iov-one/weave/errors"
)

// TendermintClient is implemented by any service that provides access to the
// Tendermint RPC API of a beans node.
type TendermintClient interface {
	Get(ctx context.Context, path string, dest interface{}) error
}

// HTTPTendermintClient implements TendermintClient interface and it is using
// HTTP transport to communicate with a Tendermint instance.
type HTTPTendermintClient struct {
	apiURL string
	cli    http.Client
}

// NewHTTPTendermintClient returns an instance of a TendermintClient that is
// using HTTP transport.
func NewHTTPTendermintClient(apiURL string) *HTTPTendermintClient {
	return &HTTPTendermintClient{
		apiURL: apiURL,
		cli:    http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPTendermintClient) Get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequest("GET", c.apiURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "create http request")
	}
	req = req.WithContext(ctx)

	resp, err := c.cli.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1e5))
		return errors.Wrapf(errors.ErrDatabase, "bad response: %d %s", resp.StatusCode, string(b))
	}

	payload := jsonrpcResponse{Result: dest}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1e6)).Decode(&payload); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if payload.Error != nil {
		return payload.Error
	}
	return nil
}

type jsonrpcResponse struct {
	Error  *jsonResponseError
	Result interface{}
}

type jsonResponseError struct {
	Code    int
	Message string
	Data    string
}

func (e *jsonResponseError) Error() string {
	if len(e.Data) != 0 {
		return fmt.Sprintf("code %d, %s", e.Code, e.Data)
	}
	return fmt.Sprintf("code %d, %s", e.Code, e.Message)
}

// ABCIKeyQuery loads a single entity stored under given key. ErrNotFound is
// returned if the key does not exist.
func ABCIKeyQuery(ctx context.Context, c TendermintClient, path string, key []byte, destination weave.Persistent) error {
	v := make(url.Values)
	v.Add("path", `"`+path+`"`)
	v.Add("data", "0x"+hex.EncodeToString(key))
	apiPath := "/abci_query?" + v.Encode()

	var abciResponse AbciQueryResponse
	if err := c.Get(ctx, apiPath, &abciResponse); err != nil {
		return errors.Wrap(err, "response")
	}

	if len(abciResponse.Response.Value) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty response")
	}

	var values weaveapp.ResultSet
	if err := values.Unmarshal(abciResponse.Response.Value); err != nil {
		return errors.Wrap(err, "cannot unmarshal values")
	}
	if len(values.Results) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty result set")
	}
	if err := destination.Unmarshal(values.Results[0]); err != nil {
		return errors.Wrap(err, "cannot unmarshal to destination")
	}
	return nil
}

// ABCIPrefixQuery returns an iterator over all entities whose key starts with
// given prefix.
func ABCIPrefixQuery(ctx context.Context, c TendermintClient, path string, prefix []byte) ABCIIterator {
	v := make(url.Values)
	v.Add("path", `"`+path+`?prefix"`)
	if len(prefix) == 0 {
		v.Add("data", `""`)
	} else {
		v.Add("data", "0x"+hex.EncodeToString(prefix))
	}
	apiPath := "/abci_query?" + v.Encode()

	var abciResponse AbciQueryResponse
	if err := c.Get(ctx, apiPath, &abciResponse); err != nil {
		return &resultIterator{err: errors.Wrap(err, "tendermint client")}
	}
	if len(abciResponse.Response.Key) == 0 {
		return &resultIterator{}
	}

	var values weaveapp.ResultSet
	if err := values.Unmarshal(abciResponse.Response.Value); err != nil {
		return &resultIterator{err: errors.Wrap(err, "unmarshal values response")}
	}
	var keys weaveapp.ResultSet
	if err := keys.Unmarshal(abciResponse.Response.Key); err != nil {
		return &resultIterator{err: errors.Wrap(err, "unmarshal keys response")}
	}
	if len(keys.Results) != len(values.Results) {
		return &resultIterator{err: errors.Wrapf(errors.ErrState, "%d keys and %d values", len(keys.Results), len(values.Results))}
	}

	return &resultIterator{
		keys:   keys.Results,
		values: values.Results,
	}
}

type AbciQueryResponse struct {
	Response AbciQueryResponseResponse
}

type AbciQueryResponseResponse struct {
	Key   []byte
	Value []byte
}

// ABCIIterator unloads query results one by one. ErrIteratorDone is returned
// when there are no more results.
type ABCIIterator interface {
	Next(weave.Persistent) ([]byte, error)
}

// ErrIteratorDone is returned by an ABCIIterator that has no more results.
var ErrIteratorDone = errors.Wrap(errors.ErrEmpty, "iterator done")

type resultIterator struct {
	err    error
	keys   [][]byte
	values [][]byte
}

func (it *resultIterator) Next(model weave.Persistent) ([]byte, error) {
	if it.err != nil {
		return nil, it.err
	}
	if len(it.keys) == 0 {
		return nil, ErrIteratorDone
	}
	val := it.values[0]
	if err := model.Unmarshal(val); err != nil {
		return nil, errors.Wrap(err, "unmarshal model")
	}
	it.values = it.values[1:]
	key := it.keys[0]
	it.keys = it.keys[1:]
	return key, nil
}

// LatestBlockTime returns the time of the most recent block known to the
// node.
func LatestBlockTime(ctx context.Context, c TendermintClient) (time.Time, error) {
	var status struct {
		SyncInfo struct {
			LatestBlockTime time.Time `json:"latest_block_time"`
		} `json:"sync_info"`
	}
	if err := c.Get(ctx, "/status", &status); err != nil {
		return time.Time{}, errors.Wrap(err, "status")
	}
	if status.SyncInfo.LatestBlockTime.IsZero() {
		return time.Time{}, errors.Wrap(errors.ErrState, "no block time")
	}
	return status.SyncInfo.LatestBlockTime, nil
}
