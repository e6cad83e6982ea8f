package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hadespm/hades/internal/archive/rpmtest"
	"github.com/hadespm/hades/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and stdin, isolated from any user config
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newSisyphusServer(t *testing.T, files ...string) *httptest.Server {
	t.Helper()

	body, err := rpmtest.Build(rpmtest.Package{
		Name:    "foo",
		Version: "1.0",
		Release: "alt1",
		Arch:    "x86_64",
		Summary: "foo tool",
		Size:    2048,
		Files:   []rpmtest.File{{Path: "./usr/bin/foo", Content: "#!/bin/sh\necho foo\n"}},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const base = "/x86_64/RPMS.classic/"
		switch {
		case r.URL.Path == base:
			var sb strings.Builder
			sb.WriteString(`<html><body><pre><a href="../">../</a>`)
			for _, f := range files {
				fmt.Fprintf(&sb, "<a href=%q>%s</a>\n", f, f)
			}
			sb.WriteString("</pre></body></html>")
			_, _ = w.Write([]byte(sb.String()))
		case strings.HasPrefix(r.URL.Path, base):
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRoot_UsageErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"no action":           {},
		"search without pkg":  {"--search"},
		"install without pkg": {"-i"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, "", args...)
			require.Error(t, err)
			assert.True(t, models.IsType(err, models.ErrUsage), "got %v", err)
		})
	}
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, err := execute(t, "", "--update", "--arch", "")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrInvalidConfig))

	_, err = execute(t, "", "--update", "--timeout", "0s")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrInvalidConfig))
}

func TestRoot_Update(t *testing.T) {
	srv := newSisyphusServer(t, "foo-1.0-alt1.x86_64.rpm", "bar-2.0-alt3.x86_64.rpm")

	out, err := execute(t, "", "--update", "--mirror", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "3 записей")
	assert.Contains(t, out, "Время работы:")
}

func TestRoot_UpdateUnreachable(t *testing.T) {
	srv := newSisyphusServer(t)
	srv.Close()

	_, err := execute(t, "", "-u", "--mirror", srv.URL, "--timeout", "2s")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrConnection))
}

func TestRoot_Search(t *testing.T) {
	srv := newSisyphusServer(t, "foo-1.0-alt1.x86_64.rpm", "libfoo-2.1-alt2.x86_64.rpm", "bar-2.0-alt3.x86_64.rpm")

	out, err := execute(t, "", "--search", "--pkg", "foo", "--mirror", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "[0] foo-1.0")
	assert.Contains(t, out, "[1] libfoo-2.1")
	assert.NotContains(t, out, "bar-2.0")
}

func TestRoot_SearchNoMatches(t *testing.T) {
	srv := newSisyphusServer(t, "foo-1.0-alt1.x86_64.rpm")

	out, err := execute(t, "", "-s", "-p", "nonexistent-zzz", "--mirror", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Пакетов не найдено")
}

func TestRoot_UpdateWinsOverInstall(t *testing.T) {
	srv := newSisyphusServer(t, "foo-1.0-alt1.x86_64.rpm")

	out, err := execute(t, "", "-u", "-i", "-p", "foo", "--mirror", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "2 записей")
	assert.NotContains(t, out, "Установить пакет")
}

func TestRoot_InstallNative(t *testing.T) {
	srv := newSisyphusServer(t, "foo-1.0-alt1.x86_64.rpm", "bar-2.0-alt3.x86_64.rpm")
	downloads := t.TempDir()
	root := t.TempDir()

	out, err := execute(t, "y\n",
		"--install", "--pkg", "foo",
		"--mirror", srv.URL,
		"--native", "--no-elevate",
		"--download-dir", downloads,
		"--extract-dir", root,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Установить пакет foo? (y/n)")
	assert.Contains(t, out, "Размер пакета:")
	assert.Contains(t, out, "2.00К")
	assert.Contains(t, out, "Пакет foo успешно установлен")

	assert.FileExists(t, filepath.Join(downloads, "foo-1.0-alt1.x86_64.rpm"))
	got, err := os.ReadFile(filepath.Join(root, "usr", "bin", "foo"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho foo\n", string(got))
}

func TestRoot_InstallDeclined(t *testing.T) {
	srv := newSisyphusServer(t, "foo-1.0-alt1.x86_64.rpm")
	root := t.TempDir()

	out, err := execute(t, "н\n",
		"-i", "-p", "foo",
		"--mirror", srv.URL,
		"--native", "--no-elevate",
		"--download-dir", t.TempDir(),
		"--extract-dir", root,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Установка прервана")
	assert.NoFileExists(t, filepath.Join(root, "usr", "bin", "foo"))
}

func TestRoot_InstallBadSelection(t *testing.T) {
	srv := newSisyphusServer(t, "foo-1.0-alt1.x86_64.rpm", "foo-devel-1.0-alt1.x86_64.rpm")
	downloads := t.TempDir()

	_, err := execute(t, "7\n",
		"-i", "-p", "foo",
		"--mirror", srv.URL,
		"--native", "--no-elevate",
		"--download-dir", downloads,
	)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrUsage))

	entries, err := os.ReadDir(downloads)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
