package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"twharvest/pkg/config"
	twerrors "twharvest/pkg/errors"
)

func testCreds(n int) []Credential {
	creds := make([]Credential, n)
	for i := range creds {
		suffix := string(rune('a' + i))
		creds[i] = Credential{
			ConsumerKey:    "ck-" + suffix,
			ConsumerSecret: "cs-" + suffix,
			AccessToken:    "at-" + suffix,
			AccessSecret:   "as-" + suffix,
		}
	}
	return creds
}

func TestNewPool(t *testing.T) {
	_, err := NewPool(nil)
	require.Error(t, err)
	assert.True(t, twerrors.IsConfiguration(err))

	pool, err := NewPool(testCreds(3))
	require.NoError(t, err)
	assert.Equal(t, 3, pool.Len())
	assert.Equal(t, 0, pool.ActiveIndex())
	assert.Equal(t, "ck-a", pool.Active().ConsumerKey)
}

func TestPoolSwitch(t *testing.T) {
	pool, err := NewPool(testCreds(3))
	require.NoError(t, err)

	prev, err := pool.Switch(2)
	require.NoError(t, err)
	assert.Equal(t, 0, prev)
	assert.Equal(t, "ck-c", pool.Active().ConsumerKey)

	prev, err = pool.Switch(1)
	require.NoError(t, err)
	assert.Equal(t, 2, prev)

	for _, bad := range []int{-1, 3, 100} {
		_, err := pool.Switch(bad)
		require.Error(t, err)
		assert.True(t, twerrors.IsIndexOutOfRange(err), "index %d", bad)
	}
	// failed switches leave the active credential alone
	assert.Equal(t, 1, pool.ActiveIndex())
}

func TestParseCSV(t *testing.T) {
	input := "access_secret,consumer_key,access_token,consumer_secret,note\n" +
		"as1,ck1,at1,cs1,first\n" +
		"\n" +
		"as2, ck2 ,at2,cs2,second\n"

	creds, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, Credential{"ck1", "cs1", "at1", "as1"}, creds[0])
	assert.Equal(t, "ck2", creds[1].ConsumerKey)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("consumer_key,consumer_secret,access_token\nck,cs,at\n"))
	assert.ErrorContains(t, err, `missing column "access_secret"`)

	_, err = ParseCSV(strings.NewReader("consumer_key,consumer_secret,access_token,access_secret\n,cs,at,as\n"))
	assert.ErrorContains(t, err, "line 2")

	creds, err := ParseCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, creds)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testCreds(2)))
	assert.True(t, strings.HasPrefix(buf.String(), "consumer_key,consumer_secret,access_token,access_secret\n"))

	creds, err := ParseCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, testCreds(2), creds)
}

func TestLoadPoolFromFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPool(FileSource{Path: filepath.Join(dir, "missing.csv")})
	require.Error(t, err)
	assert.True(t, twerrors.IsConfiguration(err))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("consumer_key,consumer_secret,access_token,access_secret\n"), 0600))
	_, err = LoadPool(FileSource{Path: empty})
	require.Error(t, err)
	assert.True(t, twerrors.IsConfiguration(err))

	good := filepath.Join(dir, "creds.csv")
	f, err := os.Create(good)
	require.NoError(t, err)
	require.NoError(t, WriteCSV(f, testCreds(2)))
	require.NoError(t, f.Close())

	pool, err := LoadPool(FileSource{Path: good})
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())
}

func TestLoadPoolWrapsStoreErrors(t *testing.T) {
	_, err := LoadPool(NewMemoryStore())
	require.Error(t, err)
	assert.True(t, twerrors.IsConfiguration(err))
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEnvironmentSource(t *testing.T) {
	t.Setenv("TWHARVEST_CONSUMER_KEY", "")
	creds, err := EnvironmentSource{}.Load()
	require.NoError(t, err)
	assert.Empty(t, creds)

	t.Setenv("TWHARVEST_CONSUMER_KEY", "key")
	t.Setenv("TWHARVEST_CONSUMER_SECRET", "secret")
	t.Setenv("TWHARVEST_ACCESS_TOKEN", "tok")
	t.Setenv("TWHARVEST_ACCESS_SECRET", "toksecret")
	creds, err = EnvironmentSource{}.Load()
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.True(t, creds[0].HasUserContext())
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store := NewKeyringStore("research")
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Save(testCreds(3)))
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, testCreds(3), creds)

	require.NoError(t, store.Delete())
	assert.ErrorIs(t, store.Delete(), ErrCredentialsNotFound)
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.enc")

	store, err := NewEncryptedFileStore(path, "correct horse")
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Save(testCreds(2)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ck-a")

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, testCreds(2), creds)

	wrong, err := NewEncryptedFileStore(path, "battery staple")
	require.NoError(t, err)
	_, err = wrong.Load()
	assert.ErrorIs(t, err, ErrWrongPassphrase)

	require.NoError(t, store.Delete())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, err = NewEncryptedFileStore(path, "")
	assert.Error(t, err)
}

func TestOpenSource(t *testing.T) {
	src, err := OpenSource(config.CredentialsConfig{Source: "file", File: "x.csv"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "file:x.csv", src.Name())

	src, err = OpenSource(config.CredentialsConfig{Source: "keyring", Profile: "p"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "keyring:p", src.Name())

	t.Setenv("TWHARVEST_PASSPHRASE", "")
	enc := filepath.Join(t.TempDir(), "c.enc")
	src, err = OpenSource(config.CredentialsConfig{Source: "encrypted", EncryptedFile: enc},
		func() (string, error) { return "prompted", nil })
	require.NoError(t, err)
	assert.Equal(t, "encrypted:"+enc, src.Name())

	_, err = OpenSource(config.CredentialsConfig{Source: "vault"}, nil)
	assert.Error(t, err)

	_, err = OpenStore(config.CredentialsConfig{Source: "file"}, nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", Mask("abcd"))
	assert.Equal(t, "abcd****wxyz", Mask("abcdefghwxyz"))

	masked := testCreds(1)[0].Masked()
	assert.Equal(t, "****", masked.ConsumerKey)
}

func TestShowCredentialGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowCredentialGuide(&buf)
	assert.Contains(t, buf.String(), "consumer_key,consumer_secret,access_token,access_secret")
}
