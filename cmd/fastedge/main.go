package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"fastedge.dev"
)

func main() {
	script := flag.String("script", "", "guest script to execute")
	wasm := flag.String("wasm", "", "wasm program to execute")
	bind := flag.String("bind", "localhost:5000", "address to bind to")
	verbosity := flag.Int("v", 0, "verbosity level (0, 1, 2)")
	timeout := flag.Duration("timeout", 0, "maximum run time of a single guest execution (0 for no limit)")
	runOnce := flag.Bool("run", false, "run the script once and print its result instead of serving requests")
	interactive := flag.Bool("repl", false, "start an interactive console with the bindings installed")
	envfile := flag.String("env", "", "dotenv file supplying FASTEDGE_BIND, FASTEDGE_VERBOSITY and FASTEDGE_TIMEOUT defaults")

	dictionaries := make(storeFlags)
	flag.Var(&dictionaries, "dictionary", "<name=file> specifying dictionaries. The file may be .json, .yaml, .env or a SQLite database with a table named after the dictionary. Scripts can only open names made of letters, digits and underscores.")
	flag.Var(&dictionaries, "d", "alias for -dictionary")

	configStores := make(storeFlags)
	flag.Var(&configStores, "config-store", "<name=file> specifying config stores, in the same formats and with the same naming rules as -dictionary.")

	secretStores := make(secretStoreFlags)
	flag.Var(&secretStores, "secret-store", "<name=file> specifying secret stores. The file may be .json, .yaml or .env.")

	loggers := make(loggerFlags)
	flag.Var(&loggers, "logger", "<name=file> or <name> specifying log endpoints. Use name=file to log to a file, or just name to log to stdout.")

	var denied denyFlags
	flag.Var(&denied, "deny", "<kind:name> or <kind> denying the guest access to a resource. kind is one of dictionary, config-store, secret-store or log-endpoint.")

	flag.Parse()

	if *envfile != "" {
		if err := godotenv.Load(*envfile); err != nil {
			fmt.Printf("Error loading env file %s: %s\n", *envfile, err.Error())
			os.Exit(1)
		}
		if err := applyEnv(bind, verbosity, timeout); err != nil {
			fmt.Printf("Error in env file %s: %s\n", *envfile, err.Error())
			os.Exit(1)
		}
	}

	if (*script == "") == (*wasm == "") && !(*interactive && *wasm == "") {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "exactly one of -script or -wasm is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if *wasm == "" {
		if err := checkScriptNames(dictionaries, configStores, secretStores, loggers); err != nil {
			fmt.Printf("Error in resource names: %s\n", err.Error())
			dictionaries.Close()
			configStores.Close()
			os.Exit(1)
		}
	}

	defer dictionaries.Close()
	defer configStores.Close()

	opts := []fastedge.Option{}

	for name, dictionary := range dictionaries {
		opts = append(opts, fastedge.WithDictionary(name, dictionary.fn))
	}

	for name, configStore := range configStores {
		opts = append(opts, fastedge.WithConfigStore(name, configStore.fn))
	}

	for name, secretStore := range secretStores {
		opts = append(opts, fastedge.WithSecretStore(name, secretStore.fn))
	}

	for name, logger := range loggers {
		opts = append(opts, fastedge.WithLogger(name, logger.writer))
	}

	for _, d := range denied {
		if d.name == "" {
			opts = append(opts, fastedge.WithDeniedCapability(d.kind))
		} else {
			opts = append(opts, fastedge.WithDeniedCapability(d.kind, d.name))
		}
	}

	opts = append(opts, fastedge.WithExecutionTimeout(*timeout), fastedge.WithVerbosity(*verbosity))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *wasm != "" {
		w, err := fastedge.NewWasm(*wasm, opts...)
		if err != nil {
			fmt.Printf("Error loading wasm program: %s\n", err.Error())
			os.Exit(1)
		}
		if err := w.Run(ctx); err != nil {
			fmt.Printf("Error running wasm program: %s\n", err.Error())
			os.Exit(1)
		}
		return
	}

	var rt *fastedge.Runtime
	var err error
	if *script != "" {
		rt, err = fastedge.New(*script, opts...)
	} else {
		rt, err = fastedge.NewFromSource("repl", "", opts...)
	}
	if err != nil {
		fmt.Printf("Error loading script: %s\n", err.Error())
		os.Exit(1)
	}

	switch {
	case *interactive:
		if err := repl(ctx, rt, *script != ""); err != nil {
			fmt.Printf("Error starting console: %s\n", err.Error())
			os.Exit(1)
		}
	case *runOnce:
		if err := runScript(ctx, rt); err != nil {
			fmt.Printf("Error running script: %s\n", err.Error())
			os.Exit(1)
		}
	default:
		fmt.Printf("Listening on %s\n", *bind)
		if err := http.ListenAndServe(*bind, rt); err != nil {
			fmt.Printf("Error starting server, got %s\n", err.Error())
		}
	}
}

// applyEnv fills in settings that weren't given on the command line from FASTEDGE_* variables.
func applyEnv(bind *string, verbosity *int, timeout *time.Duration) error {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if v, ok := os.LookupEnv("FASTEDGE_BIND"); ok && !set["bind"] {
		*bind = v
	}
	if v, ok := os.LookupEnv("FASTEDGE_VERBOSITY"); ok && !set["v"] {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FASTEDGE_VERBOSITY: %w", err)
		}
		*verbosity = n
	}
	if v, ok := os.LookupEnv("FASTEDGE_TIMEOUT"); ok && !set["timeout"] {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FASTEDGE_TIMEOUT: %w", err)
		}
		*timeout = d
	}
	return nil
}

func runScript(ctx context.Context, rt *fastedge.Runtime) error {
	i, err := rt.Instantiate()
	if err != nil {
		return err
	}
	defer i.Close()

	v, err := i.Run(ctx)
	if err != nil {
		return err
	}
	if v != nil {
		fmt.Println(v)
	}
	return nil
}
