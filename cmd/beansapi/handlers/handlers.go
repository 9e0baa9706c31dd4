package handlers

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iov-one/magicbeans/cmd/beansapi/client"
	"github.com/iov-one/magicbeans/cmd/beansapi/util"
	"github.com/iov-one/magicbeans/x/magicbeans"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

// confKey is the raw store key of the magicbeans configuration.
const confKey = "_c:magicbeans"

type PositionsHandler struct {
	Tm client.TendermintClient
}

// ServeHTTP returns all stored positions.
func (h *PositionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	it := client.ABCIPrefixQuery(r.Context(), h.Tm, "/positions", nil)

	objects := make([]KeyValue, 0, paginationMaxItems)
fetchPositions:
	for {
		var p magicbeans.Position
		switch key, err := it.Next(&p); {
		case err == nil:
			objects = append(objects, KeyValue{
				Key:   key,
				Value: &p,
			})
			if len(objects) == paginationMaxItems {
				break fetchPositions
			}
		case err == client.ErrIteratorDone:
			break fetchPositions
		default:
			log.Printf("positions ABCI query: %s", err)
			JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
	}

	JSONResp(w, http.StatusOK, struct {
		Objects []KeyValue `json:"objects"`
	}{
		Objects: objects,
	})
}

type PositionDetailHandler struct {
	Tm client.TendermintClient
}

// ServeHTTP returns the position of a single planter together with the amount
// of beans grown at the time of the latest block.
func (h *PositionDetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	addr, err := weave.ParseAddress(lastChunk(r.URL.Path))
	if err != nil {
		JSONErr(w, http.StatusBadRequest, "Planter must be a valid address value.")
		return
	}

	var pos magicbeans.Position
	switch err := client.ABCIKeyQuery(r.Context(), h.Tm, "/positions", addr, &pos); {
	case err == nil:
		// All good.
	case errors.ErrNotFound.Is(err):
		JSONErr(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	default:
		log.Printf("position ABCI query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	var conf magicbeans.Configuration
	if err := client.ABCIKeyQuery(r.Context(), h.Tm, "/", []byte(confKey), &conf); err != nil {
		log.Printf("configuration ABCI query: %s", err)
		JSONErr(w, http.StatusBadGateway, http.StatusText(http.StatusBadGateway))
		return
	}

	now, err := client.LatestBlockTime(r.Context(), h.Tm)
	if err != nil {
		log.Printf("latest block time: %s", err)
		JSONErr(w, http.StatusBadGateway, http.StatusText(http.StatusBadGateway))
		return
	}

	grown, err := magicbeans.GrownBeans(pos.Beans, pos.PlantedAt, weave.AsUnixTime(now), conf.MaturityPeriod)
	if err != nil {
		log.Printf("grown beans: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	JSONResp(w, http.StatusOK, struct {
		Position  *magicbeans.Position `json:"position"`
		Grown     coin.Coin            `json:"grown"`
		BlockTime time.Time            `json:"block_time"`
	}{
		Position:  &pos,
		Grown:     grown,
		BlockTime: now,
	})
}

type PoolHandler struct {
	Tm client.TendermintClient
}

// ServeHTTP returns the bean pool state. A pool that was never funded is
// reported as empty.
func (h *PoolHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	it := client.ABCIPrefixQuery(r.Context(), h.Tm, "/beanpool", nil)

	var pool magicbeans.Pool
	switch _, err := it.Next(&pool); {
	case err == nil:
		JSONResp(w, http.StatusOK, &pool)
	case err == client.ErrIteratorDone:
		JSONErr(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	default:
		log.Printf("pool ABCI query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

type ConfigurationHandler struct {
	Tm client.TendermintClient
}

func (h *ConfigurationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var conf magicbeans.Configuration
	switch err := client.ABCIKeyQuery(r.Context(), h.Tm, "/", []byte(confKey), &conf); {
	case err == nil:
		JSONResp(w, http.StatusOK, &conf)
	case errors.ErrNotFound.Is(err):
		JSONErr(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	default:
		log.Printf("configuration ABCI query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

type InfoHandler struct{}

func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	JSONResp(w, http.StatusOK, struct {
		BuildHash    string `json:"build_hash"`
		BuildVersion string `json:"build_version"`
	}{
		BuildHash:    util.BuildHash,
		BuildVersion: util.BuildVersion,
	})
}

type BlocksHandler struct {
	Tm client.TendermintClient
}

func (h *BlocksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	heightStr := lastChunk(r.URL.Path)
	if heightStr == "" {
		JSONRedirect(w, http.StatusSeeOther, "/blocks/1")
		return
	}
	height, err := strconv.ParseInt(heightStr, 10, 64)
	if err != nil {
		JSONErr(w, http.StatusNotFound, "block height must be a number")
		return
	}

	// We do not care about payload, proxy all!
	var payload json.RawMessage
	if err := h.Tm.Get(r.Context(), fmt.Sprintf("/block?height=%d", height), &payload); err != nil {
		log.Printf("block height info: %s", err)
		JSONErr(w, http.StatusBadGateway, http.StatusText(http.StatusBadGateway))
		return
	}
	JSONResp(w, http.StatusOK, payload)
}

// lastChunk returns last path chunk - everything after the last `/` character.
// For example LAST in /foo/bar/LAST and empty string in /foo/bar/
func lastChunk(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// DefaultHandler is used to handle the request that no other handler wants.
type DefaultHandler struct{}

func (h *DefaultHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// No trailing slash.
	if len(r.URL.Path) > 1 && r.URL.Path[len(r.URL.Path)-1] == '/' {
		path := strings.TrimRight(r.URL.Path, "/")
		JSONRedirect(w, http.StatusPermanentRedirect, path)
		return
	}
	JSONErr(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// paginationMaxItems defines how many items should a single result return.
const paginationMaxItems = 50

type KeyValue struct {
	Key   hexbytes         `json:"key"`
	Value weave.Persistent `json:"value"`
}

// hexbytes is a byte type that JSON serialize to hex encoded string.
type hexbytes []byte

func (b hexbytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

func (b *hexbytes) UnmarshalJSON(enc []byte) error {
	var s string
	if err := json.Unmarshal(enc, &s); err != nil {
		return err
	}
	val, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// JSONResp write content as JSON encoded response.
func JSONResp(w http.ResponseWriter, code int, content interface{}) {
	b, err := json.MarshalIndent(content, "", "\t")
	if err != nil {
		log.Printf("cannot JSON serialize response: %s", err)
		code = http.StatusInternalServerError
		b = []byte(`{"errors":["Internal Server Errror"]}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)

	const MB = 1 << (10 * 2)
	if len(b) > MB {
		log.Printf("response JSON body is huge: %d", len(b))
	}
	_, _ = w.Write(b)
}

// JSONErr write single error as JSON encoded response.
func JSONErr(w http.ResponseWriter, code int, errText string) {
	JSONErrs(w, code, []string{errText})
}

// JSONErrs write multiple errors as JSON encoded response.
func JSONErrs(w http.ResponseWriter, code int, errs []string) {
	resp := struct {
		Errors []string `json:"errors"`
	}{
		Errors: errs,
	}
	JSONResp(w, code, resp)
}

// JSONRedirect return redirect response, but with JSON formatted body.
func JSONRedirect(w http.ResponseWriter, code int, urlStr string) {
	w.Header().Set("Location", urlStr)
	var content = struct {
		Code     int
		Location string
	}{
		Code:     code,
		Location: urlStr,
	}
	JSONResp(w, code, content)
}
