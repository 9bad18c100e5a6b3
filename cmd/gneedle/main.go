package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/funvibe/gneedle/internal/catalog"
	"github.com/funvibe/gneedle/internal/config"
	"github.com/funvibe/gneedle/internal/il"
	"github.com/funvibe/gneedle/internal/platform"
	"github.com/funvibe/gneedle/internal/store"
	"github.com/funvibe/gneedle/internal/typesystem"
)

const usage = `gneedle - canonical names for generic runtime types

Usage:
  gneedle name [--catalog file] [--all] [--verbose] <expr>...
  gneedle normalize <rendering>...
  gneedle types [--catalog file] [prefix]
  gneedle index [--catalog file] [--out file] [--kind dll|console|windows|netmodule] [--name module] [--verbose] [expr...]
  gneedle lookup --db file <name>...
  gneedle watch [--catalog file] <expr>...
  gneedle arch
  gneedle help

Expressions use C# syntax: int, List<T>, Dictionary<string, List<int>>,
List<int>.Enumerator. Identifiers that name no type inside an argument
list are generic parameters.

Without --catalog, gneedle.yaml is searched from the current directory up.
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleName() {
		return
	}
	if handleNormalize() {
		return
	}
	if handleTypes() {
		return
	}
	if handleIndex() {
		return
	}
	if handleLookup() {
		return
	}
	if handleWatch() {
		return
	}
	if handleArch() {
		return
	}

	errorf("unknown command %q", os.Args[1])
	fmt.Fprint(os.Stderr, usage)
	os.Exit(2)
}

func command(name string) bool {
	return len(os.Args) >= 2 && os.Args[1] == name
}

func mustParse(valueFlags ...string) *cmdArgs {
	args, err := parseCmdArgs(os.Args[2:], valueFlags...)
	if err != nil {
		errorf("%s", err)
		os.Exit(2)
	}
	return args
}

func handleHelp() bool {
	if len(os.Args) >= 2 && os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" {
		return false
	}
	fmt.Print(usage)
	return true
}

// loadCatalog loads the catalog named by --catalog, or the nearest
// gneedle.yaml, or falls back to the core library alone. It returns the
// config path, empty when no file was used.
func loadCatalog(args *cmdArgs, verbose bool) (*catalog.Catalog, string, error) {
	path := args.value("catalog", "")
	if path == "" {
		found, err := catalog.FindConfig(".")
		if err != nil {
			return nil, "", err
		}
		path = found
	}
	if path == "" {
		logf(verbose, "no %s found, using the core library only", config.ConfigFileName)
		return catalog.Default(), "", nil
	}
	logf(verbose, "loading catalog %s", path)
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cat, path, nil
}

func handleName() bool {
	if !command("name") {
		return false
	}
	args := mustParse("catalog")
	verbose := args.has("verbose")
	if len(args.positional) == 0 {
		errorf("name: no type expressions given")
		os.Exit(2)
	}
	cat, _, err := loadCatalog(args, verbose)
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}

	var module *il.Module
	if args.has("all") {
		if module, err = il.NewModule("gneedle", il.Dll); err != nil {
			errorf("%s", err)
			os.Exit(1)
		}
	}

	failed := false
	for _, src := range args.positional {
		if err := printName(cat, module, src, verbose); err != nil {
			errorf("%s: %s", src, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return true
}

func printName(cat *catalog.Catalog, module *il.Module, src string, verbose bool) error {
	t, err := cat.ParseExpr(src)
	if err != nil {
		return err
	}
	logf(verbose, "%s parsed as %s", src, t)
	name, err := typesystem.NameOf(t)
	if err != nil {
		return err
	}
	fmt.Println(name)
	if module == nil {
		return nil
	}

	rt, err := catalog.Instantiate(t)
	if err != nil {
		return err
	}
	ref, err := module.ImportReference(rt)
	if err != nil {
		return err
	}
	fmt.Printf("  runtime: %s\n", rt)
	if full := rt.FullName(); full != "" {
		fmt.Printf("  full:    %s\n", full)
	}
	fmt.Printf("  il:      %s\n", ref.FullName())
	return nil
}

func handleNormalize() bool {
	if !command("normalize") {
		return false
	}
	args := mustParse()
	failed := false
	for _, s := range args.positional {
		name, err := typesystem.ParseName(s)
		if err != nil {
			errorf("%s", err)
			failed = true
			continue
		}
		fmt.Println(name)
	}
	if failed {
		os.Exit(1)
	}
	return true
}

func handleTypes() bool {
	if !command("types") {
		return false
	}
	args := mustParse("catalog")
	cat, _, err := loadCatalog(args, args.has("verbose"))
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	prefix := ""
	if len(args.positional) > 0 {
		prefix = args.positional[0]
	}
	for _, t := range cat.Definitions(prefix) {
		fmt.Printf("%-60s %s\n", t.String(), paint(os.Stdout, colorDim, t.Assembly().String()))
	}
	return true
}

func handleIndex() bool {
	if !command("index") {
		return false
	}
	args := mustParse("catalog", "out", "kind", "name")
	verbose := args.has("verbose")
	ctx := context.Background()

	kind, err := il.ParseModuleKind(args.value("kind", il.Dll.String()))
	if err != nil {
		errorf("%s", err)
		os.Exit(2)
	}
	cat, configPath, err := loadCatalog(args, verbose)
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	params, err := il.DefaultParameters(kind)
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}

	// Without --out and extra expressions the index depends on the catalog
	// alone and can be served from the cache.
	out := args.value("out", "")
	moduleName := args.value("name", "gneedle")
	var cache *store.Cache
	var fingerprint []byte
	if out == "" && configPath != "" && len(args.positional) == 0 {
		if fingerprint, err = store.ConfigFingerprint(configPath); err != nil {
			errorf("%s", err)
			os.Exit(1)
		}
		cache = store.NewCache(filepath.Dir(configPath))
		if cached := cache.Lookup(fingerprint, moduleName, kind.String(), params.Architecture.String()); cached != "" {
			logf(verbose, "using cached index: %s", cached)
			fmt.Println(cached)
			return true
		}
		logf(verbose, "cache miss, indexing catalog")
	}

	module, err := il.NewModuleWithParameters(moduleName, params)
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	for _, t := range cat.Types() {
		if _, err := module.ImportReference(t); err != nil {
			errorf("%s: %s", t, err)
			os.Exit(1)
		}
	}
	for _, src := range args.positional {
		t, err := cat.ParseExpr(src)
		if err == nil {
			var rt typesystem.Handle
			if rt, err = catalog.Instantiate(t); err == nil {
				_, err = module.ImportReference(rt)
			}
		}
		if err != nil {
			errorf("%s: %s", src, err)
			os.Exit(1)
		}
	}

	switch {
	case out != "":
	case cache != nil:
		out = cache.Path(fingerprint, moduleName, kind.String(), params.Architecture.String())
	default:
		out = config.DefaultIndexFile
	}
	writer := store.NewWriter(module, out)
	if err := writer.Save(ctx); err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	logf(verbose, "module %s (%s, %s, mvid %s): %d types, %s",
		module.Name(), module.Kind(), module.Architecture(), module.MVID(), len(module.Types()), writer.State())
	fmt.Println(out)
	return true
}

func handleLookup() bool {
	if !command("lookup") {
		return false
	}
	args := mustParse("db")
	ctx := context.Background()

	idx, err := store.OpenIndex(ctx, args.value("db", config.DefaultIndexFile))
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	defer idx.Close()

	missing := false
	for _, name := range args.positional {
		e, ok, err := idx.Lookup(ctx, name)
		switch {
		case err != nil:
			errorf("%s: %s", name, err)
			missing = true
		case !ok:
			fmt.Printf("%s %s\n", paint(os.Stdout, colorRed, "missing"), name)
			missing = true
		default:
			fmt.Printf("%s %s => %s\n", paint(os.Stdout, colorGreen, "found"), e.Name, e.ILName)
		}
	}
	if missing {
		idx.Close()
		os.Exit(1)
	}
	return true
}

func handleWatch() bool {
	if !command("watch") {
		return false
	}
	args := mustParse("catalog")
	verbose := args.has("verbose")

	path := args.value("catalog", "")
	if path == "" {
		found, err := catalog.FindConfig(".")
		if err != nil || found == "" {
			errorf("watch: no %s found", config.ConfigFileName)
			os.Exit(1)
		}
		path = found
	}
	cat, err := catalog.Load(path)
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	printNames(cat, args.positional, verbose)

	w, err := catalog.Watch(path)
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	defer w.Close()
	logf(verbose, "watching %s", w.Path())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	for {
		select {
		case cat := <-w.Catalogs():
			logf(verbose, "reloaded %s", w.Path())
			printNames(cat, args.positional, verbose)
		case err := <-w.Errors():
			errorf("%s", err)
		case <-interrupt:
			return true
		}
	}
}

func printNames(cat *catalog.Catalog, exprs []string, verbose bool) {
	for _, src := range exprs {
		if err := printName(cat, nil, src, verbose); err != nil {
			errorf("%s: %s", src, err)
		}
	}
}

func handleArch() bool {
	if !command("arch") {
		return false
	}
	process, err := platform.ProcessArchitecture()
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	fmt.Printf("process: %s\n", process)
	host, err := platform.HostArchitecture()
	if err != nil {
		errorf("%s", err)
		os.Exit(1)
	}
	fmt.Printf("host:    %s\n", host)
	return true
}
