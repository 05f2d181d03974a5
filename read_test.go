package pathindex

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pathindex/internal/testutil"
)

func roundTrip(t *testing.T, idx *Index, appRoot string) (*Application, []byte) {
	t.Helper()
	var buf bytes.Buffer
	n, err := idx.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	raw := bytes.Clone(buf.Bytes())
	app, err := Read(&buf, appRoot)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app, raw
}

func positionsOf(entries []*Entry) []int {
	if entries == nil {
		return nil
	}
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Position()
	}
	return out
}

// widePath writes archives with overlapping directories and fully indexed
// resources.
func widePath(t *testing.T) (appRoot string, classPath []string) {
	t.Helper()
	appRoot = t.TempDir()
	layouts := [][]string{
		{"A.class", "com/a/One.class", "META-INF/services/spi.A"},
		{"com/a/Two.class", "com/b/Three.class", "META-INF/MANIFEST.MF"},
		{"A.class", "B.class", "META-INF/versions/17/com/b/Three.class"},
		{"org/x/y/Deep.class", "META-INF/services/spi.A", "META-INF/services/spi.B"},
		{"com/a/Two.class", "B.class", "META-INF/services/nested/not-indexed"},
	}
	for i, names := range layouts {
		name := filepath.Join("lib", "dep-"+string(rune('0'+i))+".jar")
		classPath = append(classPath, testutil.WriteTestJar(t, appRoot, name, testutil.Files(names...)))
	}
	return appRoot, classPath
}

func TestRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	appRoot, classPath := widePath(t)
	idx, err := Build(context.Background(), appRoot, "Main", classPath,
		BuildWithParentFirst(classPath[3]),
		BuildWithNonExistentResources("META-INF/beans.xml"),
	)
	require.NoError(t, err)

	app, _ := roundTrip(t, idx, appRoot)

	assert.Equal(t, "Main", app.MainClass())
	require.Len(t, app.Entries(), len(classPath))
	assert.Len(t, app.Directories(), len(idx.Directories))
	for dir, want := range idx.Directories {
		got := positionsOf(app.Directory(dir))
		assert.Equal(t, want, got, "directory %q", dir)
		assert.IsIncreasing(t, got, "directory %q", dir)
	}
	assert.Len(t, app.Resources(), len(idx.Resources))
	for name, want := range idx.Resources {
		assert.Equal(t, want, positionsOf(app.Resource(name)), "resource %q", name)
	}
	assert.Equal(t, idx.OverridePackages, app.OverridePackages())
	assert.Equal(t, []string{"META-INF/beans.xml"}, app.KnownAbsent())

	assert.Equal(t, []int{0, 2}, positionsOf(app.Resource("A.class")))
	assert.Equal(t, []int{1, 2}, positionsOf(app.Directory("com/b")))
	assert.Equal(t, []int{0, 3}, positionsOf(app.Resource("META-INF/services/spi.A")))
}

func TestApplicationScenario(t *testing.T) {
	t.Parallel()

	appRoot, classPath := scenario(t)
	idx, err := Build(context.Background(), appRoot, "", classPath, BuildWithParentFirst(classPath[0]))
	require.NoError(t, err)
	app, _ := roundTrip(t, idx, appRoot)

	assert.Equal(t, []int{0, 1}, positionsOf(app.Directory("com/a")))
	assert.Equal(t, []int{0, 1}, positionsOf(app.Directory("/com/a/")))
	assert.Equal(t, []int{0}, positionsOf(app.Resource("X.class")))
	assert.Equal(t, []int{0}, positionsOf(app.Resource("/X.class")))
	assert.Nil(t, app.Resource("Missing.class"), "root is fully indexed, so misses are exact")
	assert.Equal(t, []int{0, 1}, positionsOf(app.Resource("com/a/Missing.class")))
	assert.Nil(t, app.Resource("org/none/Z.class"))
	assert.Nil(t, app.Directory("org"))

	assert.True(t, app.IsOverridePackage("com.a"))
	assert.False(t, app.IsOverridePackage("com"))
	assert.True(t, app.IsOverrideClass("com.a.Y"))
	assert.False(t, app.IsOverrideClass("X"))

	e, ok := app.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "lib/lib-b.jar", e.Path())
	assert.Equal(t, filepath.Join(appRoot, "lib", "lib-b.jar"), e.Location())
	_, ok = app.Entry(2)
	assert.False(t, ok)
	_, ok = app.Entry(-1)
	assert.False(t, ok)
}

func TestRoundTripManifestFidelity(t *testing.T) {
	t.Parallel()

	appRoot := t.TempDir()
	plain := testutil.WriteTestJar(t, appRoot, "plain.jar", testutil.Files("X.class"))
	partial := testutil.WriteTestJar(t, appRoot, "partial.jar", []testutil.TestEntry{
		testutil.ManifestEntry(
			"Specification-Title", "Acme API",
			"Specification-Version", "1.0",
			"Specification-Vendor", "Acme",
			"Implementation-Title", "acme-impl",
			"Implementation-Version", "1.0.3",
		),
	})
	empty := testutil.WriteTestJar(t, appRoot, "empty.jar", []testutil.TestEntry{testutil.ManifestEntry()})

	idx, err := Build(context.Background(), appRoot, "", []string{plain, partial, empty})
	require.NoError(t, err)
	app, _ := roundTrip(t, idx, appRoot)

	assert.Nil(t, app.Entries()[0].Manifest(), "absent record stays absent")

	m := app.Entries()[1].Manifest()
	require.NotNil(t, m)
	assert.Equal(t, Manifest{
		SpecificationTitle:    Some("Acme API"),
		SpecificationVersion:  Some("1.0"),
		SpecificationVendor:   Some("Acme"),
		ImplementationTitle:   Some("acme-impl"),
		ImplementationVersion: Some("1.0.3"),
	}, *m)
	assert.False(t, m.ImplementationVendor.Valid)

	m = app.Entries()[2].Manifest()
	require.NotNil(t, m, "record without identity attributes stays present")
	assert.Equal(t, Manifest{}, *m)
}

func TestReadVersionGate(t *testing.T) {
	t.Parallel()

	appRoot, classPath := scenario(t)
	idx, err := Build(context.Background(), appRoot, "", classPath)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = idx.WriteTo(&buf)
	require.NoError(t, err)
	data := buf.Bytes()
	binary.BigEndian.PutUint32(data[4:8], FormatVersion+1)

	app, err := Read(bytes.NewReader(data), appRoot)
	require.ErrorIs(t, err, ErrVersionMismatch)
	assert.Nil(t, app)
}

func TestReadRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Read(bytes.NewReader([]byte("definitely not an index")), "")
	require.ErrorIs(t, err, ErrBadMagic)

	_, err = Read(bytes.NewReader(nil), "")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestReadTruncated(t *testing.T) {
	t.Parallel()

	appRoot, classPath := scenario(t)
	idx, err := Build(context.Background(), appRoot, "", classPath)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = idx.WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()
	for _, n := range []int{8, 12, len(data) / 2, len(data) - 1} {
		app, err := Read(bytes.NewReader(data[:n]), appRoot)
		require.ErrorIs(t, err, ErrCorrupt, "prefix of %d bytes", n)
		assert.Nil(t, app)
	}
}

func TestReadDigest(t *testing.T) {
	t.Parallel()

	appRoot, classPath := scenario(t)
	idx, err := Build(context.Background(), appRoot, "", classPath)
	require.NoError(t, err)

	app, raw := roundTrip(t, idx, appRoot)
	assert.Equal(t, digest.FromBytes(raw), app.Digest())
}

func TestWriteToRejectsOversizedString(t *testing.T) {
	t.Parallel()

	idx := &Index{MainClass: string(make([]byte, 1<<16))}
	_, err := idx.WriteTo(&bytes.Buffer{})
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestApplicationConcurrentLookups(t *testing.T) {
	t.Parallel()

	appRoot, classPath := widePath(t)
	idx, err := Build(context.Background(), appRoot, "", classPath, BuildWithParentFirst(classPath[0]))
	require.NoError(t, err)
	app, _ := roundTrip(t, idx, appRoot)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				for dir, want := range idx.Directories {
					if !slices.Equal(want, positionsOf(app.Directory(dir))) {
						errs <- errors.New("directory mismatch: " + dir)
						return
					}
				}
				for name, want := range idx.Resources {
					if !slices.Equal(want, positionsOf(app.Resource(name))) {
						errs <- errors.New("resource mismatch: " + name)
						return
					}
				}
				_ = app.IsOverrideClass("com.a.One")
				_ = app.IsKnownAbsent("nothing")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
