package client

import (
	"encoding/hex"
	"io/ioutil"
	"os"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/crypto"
	"github.com/pkg/errors"
)

// KeyPerm is the file permissions for saved private keys
const KeyPerm = 0600

// rawKeySize is the length of a bare ed25519 private key, as written by
// weave command line tools.
const rawKeySize = 64

type PrivateKey = crypto.PrivateKey

// GenPrivateKey returns a new random ed25519 key.
func GenPrivateKey() *PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// EncodePrivateKey returns the hex representation of the serialized key.
func EncodePrivateKey(key *PrivateKey) ([]byte, error) {
	raw, err := key.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal key")
	}
	enc := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(enc, raw)
	return enc, nil
}

// DecodePrivateKey accepts both formats a key file can hold. Keys written by
// SavePrivateKey are hex encoded, serialized keys. A key file holding exactly
// 64 bytes is a bare ed25519 key.
func DecodePrivateKey(data []byte) (*PrivateKey, error) {
	if len(data) == rawKeySize {
		seed := make([]byte, rawKeySize)
		copy(seed, data)
		return &PrivateKey{
			Priv: &crypto.PrivateKey_Ed25519{Ed25519: seed},
		}, nil
	}

	raw := make([]byte, hex.DecodedLen(len(data)))
	if _, err := hex.Decode(raw, data); err != nil {
		return nil, errors.Wrap(err, "hex decode")
	}
	var key PrivateKey
	if err := key.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal key")
	}
	if key.GetEd25519() == nil {
		return nil, errors.New("not an ed25519 key")
	}
	return &key, nil
}

// LoadPrivateKey reads the key stored in given file.
func LoadPrivateKey(filename string) (*PrivateKey, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", filename)
	}
	key, err := DecodePrivateKey(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "key file %q", filename)
	}
	return key, nil
}

// KeyAddress returns the address that is controlled by the key stored in
// given file.
func KeyAddress(filename string) (weave.Address, error) {
	key, err := LoadPrivateKey(filename)
	if err != nil {
		return nil, err
	}
	return key.PublicKey().Address(), nil
}

// SavePrivateKey writes the hex encoded key to given file. An existing file
// is replaced only when force is set.
func SavePrivateKey(key *PrivateKey, filename string, force bool) error {
	enc, err := EncodePrivateKey(key)
	if err != nil {
		return err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	fd, err := os.OpenFile(filename, flags, KeyPerm)
	if err != nil {
		if os.IsExist(err) {
			return errors.Errorf("refusing to overwrite: %s", filename)
		}
		return errors.Wrap(err, "open key file")
	}
	defer fd.Close()

	if _, err := fd.Write(enc); err != nil {
		return errors.Wrap(err, "write key")
	}
	return fd.Close()
}
