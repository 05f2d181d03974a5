// Package pathindex precomputes where resources live on an ordered search
// path of archive packages.
//
// At packaging time [Build] scans every archive once and records, per
// archive, the directories it populates, plus the exact resource names found
// directly under a small fixed set of fully indexed directories (the archive
// root and META-INF/services). The result is written as a compact binary
// stream with [Index.WriteTo] or [SaveFile].
//
// At process start [Read] or [OpenFile] loads the stream into an
// [Application], an immutable resolution structure answering "which
// archives may hold resource R, in priority order" with map lookups. An
// Application is safe for unsynchronized concurrent use.
//
// # Quick Start
//
// Build and save an index:
//
//	idx, err := pathindex.Build(ctx, appRoot, "com.acme.Main", jars,
//	    pathindex.BuildWithParentFirst(bootJars...),
//	)
//	if err != nil {
//	    return err
//	}
//	_, err = pathindex.SaveFile("app.idx", idx,
//	    pathindex.SaveWithCompression(pathindex.CompressionZstd),
//	)
//
// Load it and resolve resources:
//
//	app, err := pathindex.OpenFile("app.idx", appRoot)
//	if err != nil {
//	    return err
//	}
//	defer app.Close()
//	for _, e := range app.Resource("com/acme/Service.class") {
//	    fmt.Println(e.Position(), e.Path())
//	}
//
// The format carries no compatibility promise: an index is only readable by
// the same format version that wrote it.
package pathindex
