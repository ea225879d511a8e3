package mathview

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/sanitize"
)

// Runner is a line-oriented host for a Controller. Plain lines are submitted as
// math; lines starting with ':' are commands (see ReplHelp).
// This allows for easy testing and integration with pipes and scripts.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	// JSON switches to JSON Lines: one JSONRequest in, one JSONResponse out.
	JSON     bool
	Renderer ContentRenderer
	// Display is the surface the controller typesets into. Optional.
	Display *memory.Display
	// Rules delivers rule files loaded out of band. Optional.
	Rules <-chan domain.RuleFileLoaded
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// ReplHelp documents the Runner commands in markdown.
const ReplHelp = "" +
	"| Command | Effect |\n" +
	"|---|---|\n" +
	"| `<math>` | submit TeX (`$...$`), ASCIIMath (backquotes) or MathML |\n" +
	"| `:set <key> <value>` | change a preference |\n" +
	"| `:key <Name> [shift] [ctrl] [alt] [meta]` | press a navigation key |\n" +
	"| `:rules <path>` | override an engine rule file |\n" +
	"| `:prefs` | list preferences |\n" +
	"| `:show` | show the current session |\n" +
	"| `:help` | this table |\n" +
	"| `:quit` | leave |\n"

var errQuit = errors.New("quit")

// NewRunner creates a new Runner on Stdin/Stdout.
func NewRunner() *Runner {
	return &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
	}
}

// Run reads lines until EOF, :quit or ctx is done. The error is non-nil only
// for display failures and I/O errors.
func (r *Runner) Run(ctx context.Context, c *Controller) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.Input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	if !r.Headless && !r.JSON {
		fmt.Fprintln(r.Output, c.Header())
	}

	for {
		r.prompt()
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		case ev, ok := <-r.Rules:
			if !ok {
				r.Rules = nil
				continue
			}
			res, err := c.Dispatch(ctx, ev)
			if err != nil {
				return err
			}
			if r.JSON {
				if err := r.respond(c, res); err != nil {
					return err
				}
				continue
			}
			r.report(res)
			if res.Err == nil {
				r.printf("rule file %s loaded", filepath.Base(ev.Name))
				r.printArtifacts(c)
			}
		case line := <-lines:
			handle := r.handle
			if r.JSON {
				handle = r.handleJSON
			}
			err := handle(ctx, c, strings.TrimSpace(line))
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

func (r *Runner) prompt() {
	if !r.Headless && !r.JSON {
		fmt.Fprint(r.Output, "> ")
	}
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.Output, format+"\n", args...)
}

func (r *Runner) handle(ctx context.Context, c *Controller, line string) error {
	if line == "" {
		return nil
	}
	if line == "exit" || line == "quit" {
		return errQuit
	}
	if !strings.HasPrefix(line, ":") {
		text, err := sanitize.Input(line)
		if err != nil {
			r.printf("! %v", err)
			return nil
		}
		res, err := c.Submit(ctx, text)
		if err != nil {
			return err
		}
		r.report(res)
		if res.Err == nil {
			r.printArtifacts(c)
		}
		return nil
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		r.printf("empty command, try :help")
		return nil
	}
	args := fields[1:]
	switch fields[0] {
	case "quit", "q", "exit":
		if !r.Headless {
			r.printf("Bye!")
		}
		return errQuit
	case "help", "h":
		r.printHelp()
	case "prefs":
		prefs := c.Preferences()
		for _, key := range domain.PreferenceKeys() {
			r.printf("%-22s %s", key, prefs.Get(key))
		}
	case "show":
		r.printSession(c)
	case "set":
		if len(args) != 2 {
			r.printf("usage: :set <key> <value>")
			return nil
		}
		res, err := c.SetPreference(ctx, domain.PreferenceKey(args[0]), args[1])
		if err != nil {
			return err
		}
		r.report(res)
		if res.Changed {
			r.printArtifacts(c)
		}
	case "key":
		if len(args) == 0 {
			r.printf("usage: :key <Name> [shift] [ctrl] [alt] [meta]")
			return nil
		}
		res, err := c.Press(ctx, parseKey(args))
		if err != nil {
			return err
		}
		r.report(res)
		if res.Outcome == domain.Ignored {
			r.printf("key %s ignored", args[0])
		} else if res.Changed {
			r.printArtifacts(c)
		}
	case "rules":
		if len(args) != 1 {
			r.printf("usage: :rules <path>")
			return nil
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			r.printf("cannot read %s: %v", args[0], err)
			return nil
		}
		res, err := c.LoadRuleFile(ctx, args[0], string(data))
		if err != nil {
			return err
		}
		r.report(res)
		if res.Err == nil {
			r.printf("rule file %s loaded", filepath.Base(args[0]))
			r.printArtifacts(c)
		}
	default:
		r.printf("unknown command :%s, try :help", fields[0])
	}
	return nil
}

func parseKey(args []string) domain.KeyEvent {
	ev := domain.KeyFromName(args[0])
	for _, mod := range args[1:] {
		switch strings.ToLower(mod) {
		case "shift":
			ev.Shift = true
		case "ctrl":
			ev.Ctrl = true
		case "alt":
			ev.Alt = true
		case "meta":
			ev.Meta = true
		}
	}
	return ev
}

// report prints the notice or error of a result and anything spoken.
func (r *Runner) report(res domain.Result) {
	switch {
	case res.Notice != "":
		r.printf("! %s", res.Notice)
	case res.Err != nil:
		r.printf("! %v", res.Err)
	}
	if r.Display == nil {
		return
	}
	for _, text := range r.Display.Drain() {
		r.printf("spoken:  %s", text)
	}
}

func (r *Runner) printArtifacts(c *Controller) {
	snap := c.Snapshot()
	if snap.CanonicalMarkup == "" {
		return
	}
	r.printf("speech:  %s", snap.SpeechText)
	r.printf("braille: %s", snap.BrailleText)
	if snap.OtherBraille != "" {
		r.printf("%-8s %s", domain.OtherBrailleCode(snap.Preferences[string(domain.PrefBrailleCode)])+":", snap.OtherBraille)
	}
}

func (r *Runner) printSession(c *Controller) {
	snap := c.Snapshot()
	if snap.CanonicalMarkup == "" {
		r.printf("no math entered")
		return
	}
	focus := snap.FocusedNodeID
	if focus == "" {
		focus = "(whole expression)"
	}
	r.printf("input:    %s", snap.RawInput)
	r.printf("notation: %s", snap.Notation)
	r.printf("markup:   %s", strings.TrimSpace(snap.CanonicalMarkup))
	r.printf("focus:    %s", focus)
	r.printArtifacts(c)
}

func (r *Runner) printHelp() {
	output := ReplHelp
	if r.Renderer != nil {
		if rendered, err := r.Renderer(ReplHelp); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimRight(output, "\n"))
}
