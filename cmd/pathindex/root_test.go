package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pathindex"
	"github.com/meigma/pathindex/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// fixture writes two archives under an application root.
func fixture(t *testing.T) (appRoot, libA, libB string) {
	t.Helper()
	appRoot = t.TempDir()
	libA = testutil.WriteTestJar(t, appRoot, "lib/a.jar", append(
		testutil.Files("X.class", "com/a/A.class"),
		testutil.ManifestEntry("Implementation-Title", "lib-a"),
	))
	libB = testutil.WriteTestJar(t, appRoot, "lib/b.jar", testutil.Files("com/a/Y.class"))
	return appRoot, libA, libB
}

func TestBuildInspectLookup(t *testing.T) {
	appRoot, libA, libB := fixture(t)
	output := filepath.Join(appRoot, "app.idx")

	out, err := run(t, "build",
		"--app-root", appRoot,
		"--main-class", "com.a.Main",
		"--parent-first", libB,
		"--non-existent", "META-INF/beans.xml",
		"--compression", "zstd",
		"-o", output,
		libA, libB,
	)
	require.NoError(t, err)
	assert.Contains(t, out, output)
	assert.Contains(t, out, "entries:     2")

	app, err := pathindex.OpenFile(output, appRoot)
	require.NoError(t, err)
	defer app.Close()
	assert.Equal(t, []string{"com.a"}, app.OverridePackages())
	assert.Contains(t, out, app.Digest().String())

	out, err = run(t, "inspect", "--app-root", appRoot, "--directories", output)
	require.NoError(t, err)
	assert.Contains(t, out, "com.a.Main")
	assert.Contains(t, out, "lib/a.jar")
	assert.Contains(t, out, "lib/b.jar")
	assert.Contains(t, out, "Implementation-Title: lib-a")
	assert.Contains(t, out, "META-INF/beans.xml")
	assert.Contains(t, out, "com/a")
	assert.Contains(t, out, "[0 1]")

	out, err = run(t, "lookup", "--app-root", appRoot, "--resolve", output,
		"com/a/Y.class", "X.class", "Missing.class", "META-INF/beans.xml")
	require.NoError(t, err)
	assert.Contains(t, out, "served by 1 lib/b.jar")
	assert.Contains(t, out, "served by 0 lib/a.jar")
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "known absent")

	out, err = run(t, "lookup", "--app-root", appRoot, "--dir", output, "com/a")
	require.NoError(t, err)
	assert.Contains(t, out, "[0 1]")
}

func TestBuildFromEnvironment(t *testing.T) {
	appRoot, libA, libB := fixture(t)
	output := filepath.Join(appRoot, "env.idx")

	t.Setenv("PATHINDEX_APP_ROOT", appRoot)
	t.Setenv("PATHINDEX_OUTPUT", output)
	t.Setenv("PATHINDEX_COMPRESSION", "lz4")

	out, err := run(t, "build", libA, libB)
	require.NoError(t, err)
	assert.Contains(t, out, "compression: lz4")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x22, 0x4D, 0x18}, data[:4])
}

func TestBuildFromConfigFile(t *testing.T) {
	appRoot, libA, _ := fixture(t)
	output := filepath.Join(appRoot, "cfg.idx")
	config := filepath.Join(t.TempDir(), "pathindex.yaml")
	require.NoError(t, os.WriteFile(config, []byte(
		"app-root: "+appRoot+"\n"+
			"main-class: com.cfg.Main\n"+
			"output: "+output+"\n"), 0o600))

	_, err := run(t, "build", "--config", config, libA)
	require.NoError(t, err)

	app, err := pathindex.OpenFile(output, appRoot)
	require.NoError(t, err)
	defer app.Close()
	assert.Equal(t, "com.cfg.Main", app.MainClass())
	assert.Equal(t, "lib/a.jar", app.Entries()[0].Path())
}

func TestBuildErrors(t *testing.T) {
	appRoot, libA, _ := fixture(t)

	_, err := run(t, "build", "--app-root", appRoot, "--compression", "gzip", libA)
	require.ErrorContains(t, err, "unknown compression")

	_, err = run(t, "build", "--app-root", appRoot, "-o", filepath.Join(appRoot, "x.idx"),
		filepath.Join(appRoot, "missing.jar"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "build")
	require.Error(t, err)

	_, err = run(t, "--log-level", "loud", "inspect", "x.idx")
	require.Error(t, err)
}

func TestBuildWritesProfiles(t *testing.T) {
	appRoot, libA, _ := fixture(t)
	dir := t.TempDir()
	fg := filepath.Join(dir, "fg.pprof")
	cpu := filepath.Join(dir, "cpu.pprof")

	_, err := run(t, "build", "--app-root", appRoot, "-o", filepath.Join(dir, "app.idx"),
		"--fgprofile", fg, "--cpuprofile", cpu, libA)
	require.NoError(t, err)

	for _, path := range []string{fg, cpu} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), path)
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.idx")
	require.NoError(t, os.WriteFile(path, []byte("garbage bytes here"), 0o600))

	_, err := run(t, "inspect", path)
	require.ErrorIs(t, err, pathindex.ErrBadMagic)
}

func TestExecuteReportsErrors(t *testing.T) {
	appRoot, libA, _ := fixture(t)
	missing := filepath.Join(appRoot, "lib", "missing.jar")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "missing archive",
			args: []string{"build", "--app-root", appRoot, "-o", filepath.Join(appRoot, "x.idx"), missing},
			want: []string{"pathindex:", "missing.jar"},
		},
		{
			name: "bad compression",
			args: []string{"build", "--app-root", appRoot, "--compression", "gzip", libA},
			want: []string{"pathindex:", `unknown compression "gzip"`},
		},
		{
			name: "corrupt index",
			args: []string{"inspect", libA},
			want: []string{"pathindex:", "wrong magic number"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := execute(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			for _, want := range tt.want {
				assert.Contains(t, stderr.String(), want)
			}
		})
	}
}

func TestExecuteSuccess(t *testing.T) {
	appRoot, libA, _ := fixture(t)
	output := filepath.Join(appRoot, "ok.idx")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(),
		[]string{"build", "--app-root", appRoot, "-o", output, libA}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), output)
	assert.Empty(t, stderr.String())
}
