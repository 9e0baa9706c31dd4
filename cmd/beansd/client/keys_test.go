package client

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/iov-one/weave/weavetest/assert"
)

func TestGeneration(t *testing.T) {
	private := GenPrivateKey()
	private2 := GenPrivateKey()

	assert.Equal(t, false, reflect.DeepEqual(private, private2))
	assert.Equal(t, false, reflect.DeepEqual(private.PublicKey().Address(), private2.PublicKey().Address()))
}

func TestDecodePrivateKey(t *testing.T) {
	private := GenPrivateKey()
	enc, err := EncodePrivateKey(private)
	assert.Nil(t, err)

	cases := map[string]struct {
		data    []byte
		want    *PrivateKey
		wantErr bool
	}{
		"hex encoded key": {
			data: enc,
			want: private,
		},
		"bare ed25519 key": {
			data: private.GetEd25519(),
			want: private,
		},
		"not a hex string": {
			data:    append([]byte("zz"), enc...),
			wantErr: true,
		},
		"corrupted key": {
			data:    enc[2:],
			wantErr: true,
		},
		"empty file": {
			data:    nil,
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := DecodePrivateKey(tc.data)
			if tc.wantErr {
				assert.Equal(t, true, err != nil)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want.GetEd25519(), got.GetEd25519())
			assert.Equal(t, tc.want.PublicKey().Address(), got.PublicKey().Address())
		})
	}
}

func TestSaveLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "beans-keys")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "foo.key")
	private := GenPrivateKey()
	private2 := GenPrivateKey()

	assert.Nil(t, SavePrivateKey(private, filename, false))
	loaded, err := LoadPrivateKey(filename)
	assert.Nil(t, err)
	assert.Equal(t, private.GetEd25519(), loaded.GetEd25519())

	info, err := os.Stat(filename)
	assert.Nil(t, err)
	assert.Equal(t, os.FileMode(KeyPerm), info.Mode().Perm())

	// refuses to over-write
	err = SavePrivateKey(private2, filename, false)
	assert.Equal(t, true, err != nil)

	assert.Nil(t, SavePrivateKey(private2, filename, true))
	addr, err := KeyAddress(filename)
	assert.Nil(t, err)
	assert.Equal(t, private2.PublicKey().Address(), addr)

	_, err = LoadPrivateKey(filepath.Join(dir, "missing.key"))
	assert.Equal(t, true, err != nil)
}
