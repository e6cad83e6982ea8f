package repo_test

import (
	"testing"

	"github.com/hadespm/hades/internal/models"
	"github.com/hadespm/hades/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suffix = ".x86_64.rpm"

var index = []string{"foo-1.0-alt1.x86_64.rpm", "bar-2.0-alt2.x86_64.rpm"}

func TestMatch(t *testing.T) {
	got, err := repo.Match(index, "foo", suffix)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Candidate{Index: 0, File: "foo-1.0-alt1.x86_64.rpm", Display: "foo-1.0"}, got[0])
}

func TestMatch_CaseInsensitive(t *testing.T) {
	got, err := repo.Match(index, "FOO", suffix)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "foo-1.0-alt1.x86_64.rpm", got[0].File)
}

func TestMatch_NoMatches(t *testing.T) {
	got, err := repo.Match(index, "qux", suffix)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatch_KeepsIndexOrder(t *testing.T) {
	idx := []string{
		"zlib-1.3-alt1.x86_64.rpm",
		"libzip-1.10-alt1.x86_64.rpm",
		"zlib-devel-1.3-alt1.x86_64.rpm",
	}
	got, err := repo.Match(idx, "z", suffix)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, idx[i], c.File)
	}
}

func TestMatch_MissingReleaseTagFails(t *testing.T) {
	_, err := repo.Match([]string{"../", "foo-1.0-alt1.x86_64.rpm"}, ".", suffix)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrParse))
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"foo-1.0-alt1.x86_64.rpm":          "foo-1.0",
		"python3-3.12.1-alt3-1.x86_64.rpm": "python3-3.12.1",
		"glibc-2.38-alt3.1.x86_64.rpm":     "glibc-2.38.1",
		"kernel-6.1-alt1.noarch.rpm":       "kernel-6.1.noarch.rpm",
	}
	for in, want := range cases {
		got, err := repo.DisplayName(in, suffix)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestDisplayName_StripsOnlyFirstReleaseTag(t *testing.T) {
	got, err := repo.DisplayName("foo-alt2.bar-1.0-alt1.x86_64.rpm", suffix)
	require.NoError(t, err)
	assert.Equal(t, "foo.bar-1.0-alt1", got)
}

func TestDisplayName_NoReleaseTag(t *testing.T) {
	_, err := repo.DisplayName("foo-1.0.x86_64.rpm", suffix)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrParse))
}
