package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"report.xlsx":             "report.xlsx",
		"My Spend (Q1).xlsx":      "My_Spend_Q1.xlsx",
		"../../etc/passwd":        "passwd",
		`..\..\windows\win.ini`:   "win.ini",
		".hidden.xlsx":            "hidden.xlsx",
		"..":                      "",
		"":                        "",
		"dir/sub/Customer.xlsb":   "Customer.xlsb",
		"naïve  résumé.xlsx":      "nave_rsum.xlsx",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeName(in), in)
	}
}

func TestLocalStoreSaveOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewLocalStore(dir)
	ctx := context.Background()

	path, err := s.Save(ctx, "report.xlsx", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.xlsx"), path)

	got, err := s.Open(ctx, "report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	path, err = s.SaveReader(ctx, "upload.xlsx", strings.NewReader("upload"))
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "upload", string(raw))

	require.NoError(t, s.Remove("upload.xlsx"))
	require.NoError(t, s.Remove("upload.xlsx"))
	_, err = s.Open(ctx, "upload.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"../secret.xlsx", "a/b.xlsx", "", ".env"} {
		_, err := s.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)

		_, err = s.Save(ctx, name, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestNewLocalStoreDefaultDir(t *testing.T) {
	assert.Equal(t, DefaultUploadDir, NewLocalStore("").Dir())
}

func TestParseGCSURI(t *testing.T) {
	bucket, obj, err := ParseGCSURI("gs://reports/2024/q1/report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "reports", bucket)
	assert.Equal(t, "2024/q1/report.xlsx", obj)

	for _, bad := range []string{"reports/report.xlsx", "gs://reports", "gs://reports/", "gs:///x"} {
		_, _, err := ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}

	assert.True(t, IsGCSURI("gs://b/o"))
	assert.False(t, IsGCSURI("/tmp/o"))
	assert.Equal(t, "report.xlsx", BaseName("gs://reports/2024/report.xlsx"))
}

func TestClientOptions(t *testing.T) {
	assert.Nil(t, ClientOptions(""))
	assert.Len(t, ClientOptions("/etc/creds.json"), 1)
}

func TestGCSStoreNames(t *testing.T) {
	_, err := NewGCSStore("", "x", "")
	require.Error(t, err)

	s, err := NewGCSStore("reports", "/spend/", "")
	require.NoError(t, err)
	assert.Empty(t, s.clientOptions())

	obj, err := s.ObjectName("report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "spend/report.xlsx", obj)

	uri, err := s.URI("report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "gs://reports/spend/report.xlsx", uri)

	_, err = s.ObjectName("../x.xlsx")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Open(context.Background(), "../x.xlsx")
	assert.ErrorIs(t, err, ErrInvalidName)

	bare, err := NewGCSStore("reports", "", "/etc/creds.json")
	require.NoError(t, err)
	obj, _ = bare.ObjectName("r.xlsx")
	assert.Equal(t, "r.xlsx", obj)
	assert.Len(t, bare.clientOptions(), 1)
}
