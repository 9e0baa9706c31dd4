package handlers

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iov-one/magicbeans/cmd/beansapi/client"
	"github.com/iov-one/magicbeans/cmd/beansapi/util"
	"github.com/iov-one/magicbeans/x/magicbeans"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/weavetest"
)

func TestPositionDetailHandler(t *testing.T) {
	planter := weavetest.NewCondition().Address()
	position := magicbeans.Position{
		Metadata:  &weave.Metadata{Schema: 1},
		Planter:   planter,
		Beans:     coin.NewCoin(95, 0, "IOV"),
		PlantedAt: 1000,
	}
	conf := magicbeans.Configuration{
		Metadata:       &weave.Metadata{Schema: 1},
		Owner:          weavetest.NewCondition().Address(),
		FeeRate:        magicbeans.Frac{Numerator: 5, Denominator: 100},
		MaturityPeriod: 100,
		Ticker:         "IOV",
	}

	tm := &tmClientMock{
		Results: map[string]interface{}{
			"/abci_query?data=0x" + hex.EncodeToString(planter) + "&path=%22%2Fpositions%22": newAbciQueryResponse(t,
				[][]byte{planter},
				[]weave.Persistent{&position}),
			"/abci_query?data=0x" + hex.EncodeToString([]byte("_c:magicbeans")) + "&path=%22%2F%22": newAbciQueryResponse(t,
				[][]byte{[]byte("_c:magicbeans")},
				[]weave.Persistent{&conf}),
			"/status": map[string]interface{}{
				"sync_info": map[string]interface{}{
					"latest_block_time": weave.UnixTime(1050).Time(),
				},
			},
		},
	}
	h := PositionDetailHandler{Tm: tm}

	r, _ := http.NewRequest("GET", "/positions/"+hex.EncodeToString(planter), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("failed response: %d %s", w.Code, w.Body)
	}

	var payload struct {
		Position magicbeans.Position
		Grown    coin.Coin
	}
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("cannot decode JSON response: %s", err)
	}
	if !payload.Position.Beans.Equals(position.Beans) {
		t.Fatalf("unexpected beans: %v", payload.Position.Beans)
	}
	if want := coin.NewCoin(47, 500000000, "IOV"); !payload.Grown.Equals(want) {
		t.Fatalf("want %v grown, got %v", want, payload.Grown)
	}
}

func TestPositionDetailHandlerErrors(t *testing.T) {
	planter := weavetest.NewCondition().Address()

	cases := map[string]struct {
		path     string
		results  map[string]interface{}
		wantCode int
	}{
		"invalid address": {
			path:     "/positions/not-an-address",
			wantCode: http.StatusBadRequest,
		},
		"unknown planter": {
			path: "/positions/" + hex.EncodeToString(planter),
			results: map[string]interface{}{
				"/abci_query?data=0x" + hex.EncodeToString(planter) + "&path=%22%2Fpositions%22": newAbciQueryResponse(t, nil, nil),
			},
			wantCode: http.StatusNotFound,
		},
		"node failure": {
			path:     "/positions/" + hex.EncodeToString(planter),
			results:  map[string]interface{}{},
			wantCode: http.StatusInternalServerError,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := PositionDetailHandler{Tm: &tmClientMock{Results: tc.results}}
			r, _ := http.NewRequest("GET", tc.path, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tc.wantCode {
				t.Fatalf("want %d, got %d: %s", tc.wantCode, w.Code, w.Body)
			}
		})
	}
}

func TestPositionsHandler(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bert := weavetest.NewCondition().Address()
	first := &magicbeans.Position{
		Metadata: &weave.Metadata{Schema: 1},
		Planter:  alice,
		Beans:    coin.NewCoin(95, 0, "IOV"),
	}
	second := &magicbeans.Position{
		Metadata: &weave.Metadata{Schema: 1},
		Planter:  bert,
		Beans:    coin.NewCoin(190, 0, "IOV"),
	}

	tm := &tmClientMock{
		Results: map[string]interface{}{
			"/abci_query?data=%22%22&path=%22%2Fpositions%3Fprefix%22": newAbciQueryResponse(t,
				[][]byte{alice, bert},
				[]weave.Persistent{first, second}),
		},
	}
	h := PositionsHandler{Tm: tm}

	r, _ := http.NewRequest("GET", "/positions", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assertAPIResponse(t, w, []KeyValue{
		{Key: hexbytes(alice), Value: first},
		{Key: hexbytes(bert), Value: second},
	})
}

func TestPoolHandler(t *testing.T) {
	pool := &magicbeans.Pool{
		Metadata:      &weave.Metadata{Schema: 1},
		Liquidity:     coin.NewCoin(100, 0, "IOV"),
		CollectedFees: coin.NewCoin(5, 0, "IOV"),
	}
	const poolPath = "/abci_query?data=%22%22&path=%22%2Fbeanpool%3Fprefix%22"

	h := PoolHandler{Tm: &tmClientMock{
		Results: map[string]interface{}{
			poolPath: newAbciQueryResponse(t, [][]byte{[]byte("pool")}, []weave.Persistent{pool}),
		},
	}}
	r, _ := http.NewRequest("GET", "/pool", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("failed response: %d %s", w.Code, w.Body)
	}
	var got magicbeans.Pool
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("cannot decode JSON response: %s", err)
	}
	if !got.Liquidity.Equals(pool.Liquidity) || !got.CollectedFees.Equals(pool.CollectedFees) {
		t.Fatalf("unexpected pool: %+v", got)
	}

	// Before the first deposit there is no pool.
	h = PoolHandler{Tm: &tmClientMock{
		Results: map[string]interface{}{
			poolPath: newAbciQueryResponse(t, nil, nil),
		},
	}}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want not found, got %d: %s", w.Code, w.Body)
	}
}

func TestDefaultHandler(t *testing.T) {
	var h DefaultHandler

	r, _ := http.NewRequest("GET", "/positions/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusPermanentRedirect {
		t.Fatalf("want redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/positions" {
		t.Fatalf("unexpected location: %q", loc)
	}

	r, _ = http.NewRequest("GET", "/unknown", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want not found, got %d", w.Code)
	}
}

func TestHexbytes(t *testing.T) {
	a := hexbytes("a hexbyte value")
	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("cannot marshal: %s", err)
	}
	var b hexbytes
	if err := json.Unmarshal(raw, &b); err != nil {
		t.Fatalf("cannot unmarshal: %s", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("%q != %q", a, b)
	}
}

// tmClientMock returns declared results. Each result is passed through JSON
// serialization, the same way a real response is.
type tmClientMock struct {
	Results map[string]interface{}
	Err     error
}

func (mock *tmClientMock) Get(ctx context.Context, path string, dest interface{}) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	resp, ok := mock.Results[path]
	if !ok {
		raw, _ := url.PathUnescape(path)
		return fmt.Errorf("no result declared in mock for %q (%q)", path, raw)
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}
	return mock.Err
}

func newAbciQueryResponse(t testing.TB, keys [][]byte, models []weave.Persistent) client.AbciQueryResponse {
	t.Helper()
	k, v := util.SerializePairs(t, keys, models)

	return client.AbciQueryResponse{
		Response: client.AbciQueryResponseResponse{
			Key:   k,
			Value: v,
		},
	}
}

func assertAPIResponse(t testing.TB, w *httptest.ResponseRecorder, want []KeyValue) {
	t.Helper()

	if w.Code != http.StatusOK {
		t.Log(w.Body)
		t.Fatalf("response code %d", w.Code)
	}

	var payload struct {
		Objects json.RawMessage
	}
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("cannot decode JSON serialized body: %s", err)
	}

	// KeyValue does not declare what type Value is, so compare the JSON
	// output instead of Go objects.
	rawGot := []byte(payload.Objects)

	rawWant, err := json.MarshalIndent(want, "", "\t")
	if err != nil {
		t.Fatalf("cannot JSON serialize expected result: %s", err)
	}

	if !bytes.Equal(removeWhitespace(rawGot), removeWhitespace(rawWant)) {
		t.Logf("want JSON response:\n%s", string(rawWant))
		t.Logf("got JSON response:\n%s", string(rawGot))
		t.Fatal("unexpected response")
	}
}

func removeWhitespace(b []byte) []byte {
	b = bytes.Replace(b, []byte("\t"), nil, -1)
	return bytes.Replace(b, []byte("\n"), nil, -1)
}
