package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/proftiles/proftiles/proftile"
	_ "gocloud.dev/blob/fileblob"
)

func main() {
	logger := log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lshortfile)

	if len(os.Args) < 2 {
		helptext := `Usage: proftiles [COMMAND] [ARGS]

Generating synthetic profile data and archiving it in one step:
proftiles generate -nodes 16 OUTPUT_DIR

Archiving a freshly generated source (same shape as generate, split out for
scripting around a non-generator source later):
proftiles archive -levels 6 -branch 4 OUTPUT_DIR

Running a server over an archive:
proftiles serve -p 8080 ARCHIVE_DIR

Running a server over the overlay of several archives:
proftiles merge-serve -p 8080 ARCHIVE_DIR [ARCHIVE_DIR...]

Showing archive info:
proftiles show ARCHIVE_DIR`
		fmt.Println(helptext)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		nodes := generateCmd.Int("nodes", 16, "number of synthetic top-level nodes")
		procs := generateCmd.Int("procs", 8, "number of synthetic procs per kind")
		levels := generateCmd.Int("levels", 4, "number of pyramid levels to archive")
		branch := generateCmd.Int("branch", 4, "pyramid branching factor")
		seed := generateCmd.Int64("seed", 1, "PRNG seed")
		force := generateCmd.Bool("force", false, "overwrite the output directory if it exists")
		generateCmd.Parse(os.Args[2:])
		outDir := generateCmd.Arg(0)
		if outDir == "" {
			logger.Println("USAGE: generate [-nodes N] [-procs N] [-levels N] [-branch N] OUTPUT_DIR")
			os.Exit(1)
		}

		cfg := proftile.GeneratorConfig{
			Seed:  *seed,
			Nodes: *nodes,
			Procs: *procs,
			Kinds: proftile.DefaultGeneratorConfig().Kinds,
		}
		archiveGenerator(logger, cfg, outDir, *levels, *branch, *force)

	case "archive":
		archiveCmd := flag.NewFlagSet("archive", flag.ExitOnError)
		nodes := archiveCmd.Int("nodes", 16, "number of synthetic top-level nodes")
		procs := archiveCmd.Int("procs", 8, "number of synthetic procs per kind")
		levels := archiveCmd.Int("levels", 4, "number of pyramid levels to archive")
		branch := archiveCmd.Int("branch", 4, "pyramid branching factor")
		seed := archiveCmd.Int64("seed", 1, "PRNG seed")
		force := archiveCmd.Bool("force", false, "overwrite the output directory if it exists")
		archiveCmd.Parse(os.Args[2:])
		outDir := archiveCmd.Arg(0)
		if outDir == "" {
			logger.Println("USAGE: archive [-nodes N] [-procs N] [-levels N] [-branch N] OUTPUT_DIR")
			os.Exit(1)
		}

		cfg := proftile.GeneratorConfig{
			Seed:  *seed,
			Nodes: *nodes,
			Procs: *procs,
			Kinds: proftile.DefaultGeneratorConfig().Kinds,
		}
		archiveGenerator(logger, cfg, outDir, *levels, *branch, *force)

	case "serve":
		serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
		port := serveCmd.String("p", "8080", "port to serve on")
		cors := serveCmd.String("cors", "*", "CORS allowed origin value")
		serveCmd.Parse(os.Args[2:])
		archiveDir := serveCmd.Arg(0)
		if archiveDir == "" {
			logger.Println("USAGE: serve [-p PORT] [-cors VALUE] ARCHIVE_DIR")
			os.Exit(1)
		}

		bucket := mustOpenLocalBucket(logger)
		reader := proftile.NewArchiveReader(bucket, archiveDir)
		server := proftile.NewServer(reader, logger, nil)
		server.CORSOrigin = *cors

		logger.Printf("serving %s on HTTP port %s with Access-Control-Allow-Origin: %s", archiveDir, *port, *cors)
		logger.Fatal(http.ListenAndServe(":"+*port, server.Handler()))

	case "merge-serve":
		mergeServeCmd := flag.NewFlagSet("merge-serve", flag.ExitOnError)
		port := mergeServeCmd.String("p", "8080", "port to serve on")
		cors := mergeServeCmd.String("cors", "*", "CORS allowed origin value")
		mergeServeCmd.Parse(os.Args[2:])
		archiveDirs := mergeServeCmd.Args()
		if len(archiveDirs) == 0 {
			logger.Println("USAGE: merge-serve [-p PORT] [-cors VALUE] ARCHIVE_DIR [ARCHIVE_DIR...]")
			os.Exit(1)
		}

		bucket := mustOpenLocalBucket(logger)
		sources := make([]proftile.DeferredDataSource, len(archiveDirs))
		for i, dir := range archiveDirs {
			reader := proftile.NewArchiveReader(bucket, dir)
			sources[i] = proftile.NewDeferredDataSourceWrapper(reader)
		}
		merged := proftile.NewMergeDeferredDataSource(sources)
		blocking := proftile.NewBlockingDataSource(merged)
		server := proftile.NewServer(blocking, logger, nil)
		server.CORSOrigin = *cors

		logger.Printf("serving overlay of %v on HTTP port %s with Access-Control-Allow-Origin: %s", archiveDirs, *port, *cors)
		logger.Fatal(http.ListenAndServe(":"+*port, server.Handler()))

	case "show":
		showCmd := flag.NewFlagSet("show", flag.ExitOnError)
		showCmd.Parse(os.Args[2:])
		archiveDir := showCmd.Arg(0)
		if archiveDir == "" {
			logger.Println("USAGE: show ARCHIVE_DIR")
			os.Exit(1)
		}
		bucket := mustOpenLocalBucket(logger)
		reader := proftile.NewArchiveReader(bucket, archiveDir)
		info := reader.FetchInfo()
		logger.Printf("interval: %s", info.Interval.Display())
		logger.Printf("nodes: %d", info.EntryInfo.Nodes())
		logger.Printf("kinds: %v", info.EntryInfo.Kinds())
		logger.Printf("pyramid levels: %d", len(info.TileSet.Levels))

	default:
		logger.Println("unrecognized command.")
		flag.PrintDefaults()
		os.Exit(1)
	}
}

// archiveGenerator builds a synthetic Generator from cfg and drains it
// through an ArchiveWriter into outDir, shared by the generate and archive
// subcommands (which differ only in name, pending a non-generator archive
// source).
func archiveGenerator(logger *log.Logger, cfg proftile.GeneratorConfig, outDir string, levels, branch int, force bool) {
	gen := proftile.NewGenerator(cfg)
	writer := &proftile.ArchiveWriter{
		Source:       proftile.NewDeferredDataSourceWrapper(gen),
		Bucket:       mustOpenLocalBucket(logger),
		Levels:       uint32(levels),
		BranchFactor: uint64(branch),
		Logger:       logger,
		Progress:     true,
	}
	root, err := writer.Write(context.Background(), outDir, force)
	if err != nil {
		logger.Fatalf("failed to write archive: %v", err)
	}
	logger.Printf("wrote archive to %s", root)
}

func mustOpenLocalBucket(logger *log.Logger) proftile.Bucket {
	bucket, err := proftile.OpenBucket(context.Background(), ".")
	if err != nil {
		logger.Fatalf("failed to open bucket: %v", err)
	}
	return bucket
}
