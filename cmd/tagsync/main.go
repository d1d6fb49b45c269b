package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dnswlt/tagsync/internal/config"
	"github.com/dnswlt/tagsync/internal/emit"
	"github.com/dnswlt/tagsync/internal/health"
	"github.com/dnswlt/tagsync/internal/mapper"
	"github.com/dnswlt/tagsync/internal/store"
	"github.com/dnswlt/tagsync/internal/web"
	"github.com/peterbourgon/ff/v3"
)

var (
	// Version is the application version.
	// It is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
)

func gitAuthFromEnv() *store.GitAuth {
	user := os.Getenv("TAGSYNC_GIT_USER")
	if user == "" {
		return nil
	}
	return &store.GitAuth{
		Username: user,
		Password: os.Getenv("TAGSYNC_GIT_PASSWORD"),
	}
}

// Options contains program options that can be set via command-line flags or environment variables.
type Options struct {
	Addr          string
	RootDir       string
	GitURL        string
	GitRef        string
	ConfigFile    string
	CustomMappers string
	InputDir      string
	CacheSize     int
}

func main() {
	if len(os.Args) < 2 {
		// Default to "serve"
		runServe(os.Args[1:])
		return
	}

	switch os.Args[1] {
	case "map":
		runMap(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		// Also default to serve if the argument looks like a flag
		if strings.HasPrefix(os.Args[1], "-") {
			runServe(os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command %q. Available commands: serve, map\n", os.Args[1])
		os.Exit(1)
	}
}

func addCommonFlags(fs *flag.FlagSet, opts *Options) {
	fs.StringVar(&opts.RootDir, "root-dir", ".", "Root directory of the local data store")
	fs.StringVar(&opts.GitURL, "git-url", "", "URL of a git repository to read properties and notifications from (instead of -root-dir)")
	fs.StringVar(&opts.GitRef, "git-ref", "", "Git ref (branch, tag or commit) to read; defaults to the remote HEAD")
	fs.StringVar(&opts.ConfigFile, "config", "tagsync.yml", "Path to the properties YAML file (relative to -root-dir)")
	fs.StringVar(&opts.CustomMappers, "custom-mappers", "", "Comma-separated list of additional resource mappers. Overrides "+config.PropCustomResourceMappers)
}

func createStore(opts Options) store.Store {
	if opts.GitURL != "" {
		log.Printf("Reading data from git URL %s", opts.GitURL)
		st, err := store.NewGitStore(opts.GitURL, opts.GitRef, gitAuthFromEnv())
		if err != nil {
			log.Fatalf("Failed to retrieve git repo: %v", err)
		}
		log.Printf("Using git ref %q", st.Ref())
		return st
	}
	log.Printf("Using local store at %s", opts.RootDir)
	return store.NewDiskStore(opts.RootDir)
}

// loadProperties reads the properties file and applies flag overrides.
func loadProperties(st store.Store, opts Options) config.Properties {
	props, err := config.Load(st, opts.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if opts.CustomMappers != "" {
		props[config.PropCustomResourceMappers] = opts.CustomMappers
	}
	return props
}

func createRegistry(props config.Properties) *mapper.Registry {
	registry := mapper.NewRegistry(mapper.DefaultFactories())
	if !registry.InitializeFromConfig(props) {
		log.Printf("Some resource mappers could not be initialized, continuing with the others")
	}
	log.Printf("Resource mappers registered for entity types %v", registry.EntityTypes())
	return registry
}

func runServe(args []string) {
	var opts Options
	fs := flag.NewFlagSet("tagsync serve", flag.ExitOnError)
	fs.StringVar(&opts.Addr, "addr", "localhost:8080", "Address to listen on")
	addCommonFlags(fs, &opts)

	err := ff.Parse(fs, args, ff.WithEnvVarPrefix("TAGSYNC"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Using config from flags/env vars: %+v", opts)

	st := createStore(opts)
	props := loadProperties(st, opts)
	registry := createRegistry(props)

	checker, err := health.NewChecker(props)
	if err != nil {
		log.Fatalf("Could not create health checker: %v", err)
	}

	server := web.NewServer(
		web.ServerOptions{
			Addr:    opts.Addr,
			Version: Version,
		},
		checker,
		registry,
	)
	log.Fatal(server.Serve()) // Never returns
}

func runMap(args []string) {
	var opts Options
	fs := flag.NewFlagSet("tagsync map", flag.ExitOnError)
	addCommonFlags(fs, &opts)
	fs.StringVar(&opts.InputDir, "in-dir", "notifications", "Directory with entity notification files (relative to -root-dir)")
	fs.IntVar(&opts.CacheSize, "cache-size", 4096, "Max. number of emitted resources to remember for de-duplication")

	err := ff.Parse(fs, args, ff.WithEnvVarPrefix("TAGSYNC"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		os.Exit(1)
	}

	st := createStore(opts)
	props := loadProperties(st, opts)
	registry := createRegistry(props)

	emitter, err := emit.New(os.Stdout, opts.CacheSize)
	if err != nil {
		log.Fatalf("Could not create emitter: %v", err)
	}

	files, err := store.NotificationFiles(st, opts.InputDir)
	if err != nil {
		log.Fatalf("Failed to list notification files in %s: %v", opts.InputDir, err)
	}
	var total, notMapped int
	for _, f := range files {
		entities, err := store.ReadEntities(st, f)
		if err != nil {
			// One broken file must not stop the remaining ones.
			log.Printf("Skipping notification file %s: %v", f, err)
			continue
		}
		for _, e := range entities {
			total++
			res, ok := registry.MapEntity(e)
			if !ok {
				notMapped++
				continue
			}
			if _, err := emitter.Emit(res); err != nil {
				log.Fatalf("Failed to emit resource: %v", err)
			}
		}
	}
	stats := emitter.Stats()
	log.Printf("Processed %d entities from %d files: %d emitted, %d unchanged, %d not mapped",
		total, len(files), stats.Emitted, stats.Skipped, notMapped)
}
