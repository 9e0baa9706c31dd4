package client

import (
	"sync"

	"github.com/iov-one/magicbeans/x/magicbeans"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
	"github.com/pkg/errors"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

// Client is an interface to interact with a beans node
type Client interface {
	GetUser(addr weave.Address) (*UserResponse, error)
	GetWallet(addr weave.Address) (*WalletResponse, error)
	GetPosition(addr weave.Address) (*PositionResponse, error)
	GetPool() (*PoolResponse, error)
	BroadcastTx(tx weave.Tx) BroadcastTxResponse
	AbciQuery(path string, data []byte) (AbciResponse, error)
}

// BeansClient is a tendermint client wrapped to provide
// simple access to the data structures used in beansd.
type BeansClient struct {
	conn rpcclient.Client
}

var _ Client = (*BeansClient)(nil)

// NewClient wraps a BeansClient around an existing
// tendermint client connection.
func NewClient(conn rpcclient.Client) *BeansClient {
	return &BeansClient{conn: conn}
}

// TendermintClient returns the wrapped connection.
func (b *BeansClient) TendermintClient() rpcclient.Client {
	return b.conn
}

// Nonce has a client/address pair, queries for the nonce
// and caches recent nonce locally to quickly sign
type Nonce struct {
	mutex     sync.Mutex
	client    Client
	addr      weave.Address
	nonce     int64
	fromQuery bool
}

// NewNonce creates a nonce for a client / address pair.
// Call Query to force a query, Next to use cache if possible
func NewNonce(client Client, addr weave.Address) *Nonce {
	return &Nonce{client: client, addr: addr}
}

// Query always queries the blockchain for the next nonce
func (n *Nonce) Query() (int64, error) {
	user, err := n.client.GetUser(n.addr)
	if err != nil {
		return 0, err
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if user != nil {
		n.nonce = user.UserData.Sequence
	} else {
		n.nonce = 0 // new account starts at 0
	}
	n.fromQuery = true
	return n.nonce, nil
}

// Next will use a cached value if present, otherwise Query
// It will always increment by 1, assuming last nonce
// was properly used.
func (n *Nonce) Next() (int64, error) {
	n.mutex.Lock()
	uninitialized := !n.fromQuery && n.nonce == 0
	n.mutex.Unlock()
	if uninitialized {
		return n.Query()
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.nonce++
	n.fromQuery = false
	return n.nonce, nil
}

// ChainID will parse out the chainID from the genesis
func (b *BeansClient) ChainID() (string, error) {
	gen, err := b.conn.Genesis()
	if err != nil {
		return "", err
	}
	return gen.Genesis.ChainID, nil
}

// Height will parse out the Height from the status result
func (b *BeansClient) Height() (int64, error) {
	status, err := b.conn.Status()
	if err != nil {
		return -1, err
	}
	return status.SyncInfo.LatestBlockHeight, nil
}

// AbciResponse contains a query result:
// a (possibly empty) list of key-value pairs, and the height
// at which it queried
type AbciResponse struct {
	Models []weave.Model
	Height int64
}

// AbciQuery calls abci query on tendermint rpc,
// verifies if it is an error or empty, and if there is
// data pulls out the ResultSets from keys and values into
// a useful AbciResponse struct
func (b *BeansClient) AbciQuery(path string, data []byte) (AbciResponse, error) {
	var out AbciResponse

	q, err := b.conn.ABCIQuery(path, data)
	if err != nil {
		return out, err
	}
	resp := q.Response
	if resp.IsErr() {
		return out, errors.Errorf("(%d): %s", resp.Code, resp.Log)
	}
	out.Height = resp.Height

	if len(resp.Key) == 0 {
		return out, nil
	}

	var keys, vals app.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return out, errors.Wrap(err, "keys")
	}
	if err := vals.Unmarshal(resp.Value); err != nil {
		return out, errors.Wrap(err, "values")
	}
	out.Models, err = app.JoinResults(&keys, &vals)
	return out, err
}

// BroadcastTxResponse is the result of submitting a transaction.
type BroadcastTxResponse struct {
	Error    error                           // not-nil if there was an error sending
	Response *ctypes.ResultBroadcastTxCommit // not-nil if we got response from node
}

// IsError returns the error for failure if it failed,
// or null if it succeeded
func (b BroadcastTxResponse) IsError() error {
	if b.Error != nil {
		return b.Error
	}
	if b.Response.CheckTx.IsErr() {
		ctx := b.Response.CheckTx
		return errors.Errorf("CheckTx error: (%d) %s", ctx.Code, ctx.Log)
	}
	if b.Response.DeliverTx.IsErr() {
		dtx := b.Response.DeliverTx
		return errors.Errorf("DeliverTx error: (%d) %s", dtx.Code, dtx.Log)
	}
	return nil
}

// BroadcastTx serializes a signed transaction and writes to the
// blockchain. It returns when the tx is committed to the
// blockchain.
func (b *BeansClient) BroadcastTx(tx weave.Tx) BroadcastTxResponse {
	data, err := tx.Marshal()
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}
	res, err := b.conn.BroadcastTxCommit(data)
	return BroadcastTxResponse{
		Error:    err,
		Response: res,
	}
}

// WalletResponse is a response on a query for a wallet
type WalletResponse struct {
	Address weave.Address
	Wallet  cash.Set
	Height  int64
}

// GetWallet will return a wallet given an address
// If non wallet is present, it will return (nil, nil)
func (b *BeansClient) GetWallet(addr weave.Address) (*WalletResponse, error) {
	model, height, err := b.queryOne("/wallets", addr)
	if err != nil || model == nil {
		return nil, err
	}
	out := WalletResponse{Address: addr, Height: height}
	if err := out.Wallet.Unmarshal(model.Value); err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	return &out, nil
}

// UserResponse is a response on a query for a User
type UserResponse struct {
	Address  weave.Address
	UserData sigs.UserData
	Height   int64
}

// GetUser will return nonce and public key registered
// for a given address if it was ever used.
// If it returns (nil, nil), then this address never signed
// a transaction before (and can use nonce = 0)
func (b *BeansClient) GetUser(addr weave.Address) (*UserResponse, error) {
	model, height, err := b.queryOne("/auth", addr)
	if err != nil || model == nil {
		return nil, err
	}
	out := UserResponse{Address: addr, Height: height}
	if err := out.UserData.Unmarshal(model.Value); err != nil {
		return nil, errors.Wrap(err, "user")
	}
	return &out, nil
}

// PositionResponse is a response on a query for a planting position
type PositionResponse struct {
	Position magicbeans.Position
	Height   int64
}

// GetPosition returns the planting position of given address. If the address
// never planted, it returns (nil, nil).
func (b *BeansClient) GetPosition(addr weave.Address) (*PositionResponse, error) {
	model, height, err := b.queryOne("/positions", addr)
	if err != nil || model == nil {
		return nil, err
	}
	out := PositionResponse{Height: height}
	if err := out.Position.Unmarshal(model.Value); err != nil {
		return nil, errors.Wrap(err, "position")
	}
	return &out, nil
}

// PoolResponse is a response on a query for the bean pool
type PoolResponse struct {
	Pool   magicbeans.Pool
	Height int64
}

// GetPool returns the pool state. Before the first deposit the pool might not
// be stored yet, in which case (nil, nil) is returned.
func (b *BeansClient) GetPool() (*PoolResponse, error) {
	resp, err := b.AbciQuery("/beanpool?prefix", nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, nil
	}
	out := PoolResponse{Height: resp.Height}
	if err := out.Pool.Unmarshal(resp.Models[0].Value); err != nil {
		return nil, errors.Wrap(err, "pool")
	}
	return &out, nil
}

// queryOne returns the single model stored under given key. It returns a nil
// model if nothing was found.
func (b *BeansClient) queryOne(path string, addr weave.Address) (*weave.Model, int64, error) {
	// make sure we send a valid address to the server
	if err := addr.Validate(); err != nil {
		return nil, 0, errors.WithMessage(err, "invalid address")
	}
	resp, err := b.AbciQuery(path, addr)
	if err != nil {
		return nil, 0, err
	}
	if len(resp.Models) == 0 {
		return nil, resp.Height, nil
	}
	return &resp.Models[0], resp.Height, nil
}
