package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mcncl/polytyper/internal/config"
	"github.com/mcncl/polytyper/internal/engine"
	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/logger"
	"github.com/mcncl/polytyper/internal/mcptool"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/output"
	"github.com/mcncl/polytyper/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// Globals are flags shared by every command.
type Globals struct {
	Debug bool `help:"Enable debug logging." short:"d"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate typed code from JSON samples."`
	Serve    ServeCmd    `cmd:"" help:"Serve the json_to_code tool over MCP on stdin/stdout."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Streams carries the process streams so commands can be driven from tests.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Terminal reports whether Stdin is an interactive terminal.
	Terminal bool
}

// GenerateCmd turns JSON samples into source code.
type GenerateCmd struct {
	Input       []string `help:"Path to an input JSON file. Repeat to pass several samples. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string   `help:"Output file, or directory when several files are generated. If not specified, writes to stdout." short:"o" type:"path"`
	Target      string   `help:"Target language: ${targets}." short:"t"`
	Package     string   `help:"Package or namespace for generated code." short:"p"`
	RootName    string   `help:"Name for the root type." short:"r"`
	Split       bool     `help:"Split declarations and codec into separate files where the target supports it."`
	FieldNaming string   `help:"Field naming mode: preserve or positional." name:"field-naming"`
	Indent      string   `help:"Indentation unit. Use \\t for a tab."`
	Strict      bool     `help:"Fail on conflicting value types instead of emitting a union."`
	RootPath    string   `help:"Dot/bracket path of the value to type, e.g. data.items[0]." name:"root-path"`
	NDJSON      bool     `help:"Treat every input as a stream of JSON values, one sample each." name:"ndjson"`
	MaxDepth    int      `help:"Maximum nesting depth of the input." name:"max-depth"`
	Watch       bool     `help:"Regenerate whenever an input file changes."`
	Interactive bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
	Config      string   `help:"Path to a config file. Defaults to the nearest .polytyper.yml, .polytyper.yaml or .polytyper.toml." type:"path"`
}

// ServeCmd runs the MCP server.
type ServeCmd struct{}

// VersionCmd prints the version.
type VersionCmd struct{}

// newApp builds the kong parser for cli.
func newApp(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("polytyper"),
		kong.Description("Generate typed source code with JSON codecs from sample JSON"),
		kong.Vars{"targets": strings.Join(engine.Targets(), ", ")},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	app, err := newApp(&cli, kong.UsageOnError())
	if err != nil {
		panic(err)
	}

	args := os.Args[1:]
	// Without arguments, run in interactive mode by default
	if len(args) == 0 {
		args = []string{"--interactive"}
	}

	ctx, err := app.Parse(args)
	if err != nil {
		// The usage was already shown by kong.UsageOnError()
		os.Exit(1)
	}

	streams := &Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Terminal: isTerminal(os.Stdin)}
	if err := ctx.Run(&cli.Globals, streams); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: polytyper --help\n")
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Run prints the version.
func (v *VersionCmd) Run(streams *Streams) error {
	_, err := fmt.Fprintf(streams.Stdout, "polytyper version %s\n", Version)
	return err
}

// Run serves MCP requests until stdin closes.
func (s *ServeCmd) Run(g *Globals) error {
	log, err := logger.New(logger.FromEnv(logger.Options{Debug: g.Debug}))
	if err != nil {
		return errors.NewConfigError("failed to create logger", err)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("serving MCP over stdio", logger.FieldOperation, mcptool.ToolName)
	return mcptool.ServeStdio(mcptool.NewServer(Version, engine.New(log), log))
}

// Run generates code once, or keeps regenerating with --watch.
func (c *GenerateCmd) Run(g *Globals, streams *Streams) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.FromEnv(logger.Options{Debug: g.Debug || cfg.Dev.Debug}))
	if err != nil {
		return errors.NewConfigError("failed to create logger", err)
	}
	defer func() { _ = log.Sync() }()
	log.Debugw("configuration loaded",
		logger.FieldTarget, cfg.Target,
		logger.FieldRoot, cfg.RootName,
		"field_mappings", cfg.MappedKeys())

	eng := engine.New(log)
	if !c.Watch {
		return c.run(eng, cfg, streams)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.watch(ctx, eng, cfg, streams, log)
}

// loadConfig merges the config file with the command-line flags. Flags win.
func (c *GenerateCmd) loadConfig() (*config.Config, error) {
	path := c.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	return config.LoadConfigWithCLI(path, &config.Config{
		Target:      c.Target,
		Package:     c.Package,
		RootName:    c.RootName,
		SplitFiles:  c.Split,
		FieldNaming: c.FieldNaming,
		Indent:      unescapeIndent(c.Indent),
		Strict:      c.Strict,
		MaxDepth:    c.MaxDepth,
	})
}

// unescapeIndent lets the shell pass a tab as the two characters \t.
func unescapeIndent(s string) string {
	return strings.ReplaceAll(s, `\t`, "\t")
}

// run executes one generation pass
func (c *GenerateCmd) run(eng *engine.Engine, cfg *config.Config, streams *Streams) error {
	texts, err := c.readInputs(streams)
	if err != nil {
		return err
	}

	req := cfg.Request(nil)
	req.RootPath = c.RootPath
	if c.NDJSON {
		for _, text := range texts {
			values, err := parser.ParseAll(strings.NewReader(text), parser.WithMaxDepth(cfg.MaxDepth))
			if err != nil {
				return err
			}
			req.Values = append(req.Values, values...)
		}
	} else {
		req.Samples = texts
	}

	art, err := eng.Generate(req)
	if err != nil {
		return err
	}
	output.Warnings(streams.Stderr, art)
	return c.writeOutput(art, cfg, streams)
}

// readInputs reads every -i file, or stdin when there are none.
func (c *GenerateCmd) readInputs(streams *Streams) ([]string, error) {
	if len(c.Input) > 0 {
		texts := make([]string, 0, len(c.Input))
		for _, path := range c.Input {
			data, err := parser.ReadFile(path)
			if err != nil {
				return nil, err
			}
			texts = append(texts, string(data))
		}
		return texts, nil
	}

	if streams.Terminal {
		if c.Interactive {
			text, err := readInteractiveInput(streams)
			if err != nil {
				return nil, err
			}
			return []string{text}, nil
		}
		// No data provided on stdin and not in interactive mode
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(streams.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return []string{string(data)}, nil
}

// writeOutput writes the artifact to stdout, a file, or a directory when it
// holds several files.
func (c *GenerateCmd) writeOutput(art models.Artifact, cfg *config.Config, streams *Streams) error {
	if c.Output == "" {
		return output.Print(streams.Stdout, art)
	}

	info, statErr := os.Stat(c.Output)
	if cfg.SplitFiles || len(art.Files) > 1 || (statErr == nil && info.IsDir()) {
		paths, err := output.WriteDir(c.Output, art)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(streams.Stderr, "Generated %s code written to %s\n", art.Language, p)
		}
		return nil
	}

	if err := output.WriteFile(c.Output, art); err != nil {
		return err
	}
	fmt.Fprintf(streams.Stderr, "Generated %s code written to %s\n", art.Language, c.Output)
	return nil
}

// watch regenerates on every change to an input file until ctx is done.
// Failed passes are reported and the watch goes on.
func (c *GenerateCmd) watch(ctx context.Context, eng *engine.Engine, cfg *config.Config, streams *Streams, log *zap.SugaredLogger) error {
	if len(c.Input) == 0 {
		return errors.NewInputError("--watch needs at least one input file", errors.ErrNoInput)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewInputError("failed to create file watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	// Directories are watched because editors often replace files on save.
	inputs := make(map[string]bool, len(c.Input))
	dirs := make(map[string]bool)
	for _, in := range c.Input {
		abs, err := filepath.Abs(in)
		if err != nil {
			return errors.NewInputError(fmt.Sprintf("invalid input path '%s'", in), errors.ErrInvalidFilePath)
		}
		inputs[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.NewInputError(fmt.Sprintf("failed to watch '%s'", dir), err)
		}
		dirs[dir] = true
	}

	regenerate := func() {
		if err := c.run(eng, cfg, streams); err != nil {
			fmt.Fprintf(streams.Stderr, "%s\n", errors.UserFriendlyError(err))
		}
	}
	regenerate()
	fmt.Fprintf(streams.Stderr, "Watching %d input file(s) for changes\n", len(inputs))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(event.Name)] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			log.Debugw("input changed", logger.FieldFile, event.Name, logger.FieldOperation, event.Op.String())
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			regenerate()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("file watcher error", logger.FieldError, err)
		}
	}
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(streams *Streams) (string, error) {
	fmt.Fprintln(streams.Stderr, "polytyper interactive mode")
	fmt.Fprintln(streams.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(streams.Stdin)
	var jsonBuilder strings.Builder
	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(streams.Stderr, "\nProcessing JSON...")
	return jsonData, nil
}
