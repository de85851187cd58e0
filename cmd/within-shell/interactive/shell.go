// Package interactive provides the interactive command-line interface
// for the Within shell.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/within-protocol/within-go/pkg/callback"
	"github.com/within-protocol/within-go/pkg/config"
	"github.com/within-protocol/within-go/pkg/session"
)

// Defaults for the shell's agent calls.
const (
	DefaultSearchTimeout = 5 * time.Second
	DefaultDeliveryPause = 2 * time.Second
	DefaultUnits         = 1
	ConsumerDeviceName   = "within-shell"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage")

// Shell handles interactive mode for within-shell.
type Shell struct {
	s    *session.Session
	file *config.File
	rl   *readline.Instance

	outMu sync.Mutex
	out   io.Writer

	// DeliveryPause is the wait between beginning and ending delivery.
	DeliveryPause time.Duration

	mu         sync.Mutex
	configured bool
	producing  bool
	subs       []subscription
}

type subscription struct {
	kind callback.Kind
	id   callback.SubscriptionID
}

// New creates an interactive shell reading from the terminal.
func New(s *session.Session, file *config.File) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "within> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	sh := newShell(s, file, rl.Stdout())
	sh.rl = rl
	return sh, nil
}

func newShell(s *session.Session, file *config.File, out io.Writer) *Shell {
	return &Shell{
		s:             s,
		file:          file,
		out:           out,
		DeliveryPause: DefaultDeliveryPause,
	}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("setup"),
		readline.PcItem("services"),
		readline.PcItem("status"),
		readline.PcItem("find"),
		readline.PcItem("consume"),
		readline.PcItem("produce",
			readline.PcItem("start"),
			readline.PcItem("stop"),
		),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (sh *Shell) Stdout() io.Writer {
	if sh.rl != nil {
		return sh.rl.Stdout()
	}
	return sh.out
}

// Run starts the interactive command loop.
func (sh *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer sh.rl.Close()

	sh.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := sh.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			sh.println("Exiting...")
			cancel()
			return
		}

		if sh.Execute(ctx, line) {
			sh.println("Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line and reports whether the shell should exit.
// Command failures are printed, not returned.
func (sh *Shell) Execute(ctx context.Context, line string) (quit bool) {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		sh.printHelp()

	case "setup":
		err = sh.cmdSetup(ctx, args)

	case "services", "ls":
		err = sh.cmdServices(ctx)

	case "status":
		sh.cmdStatus()

	case "find", "discover":
		err = sh.cmdFind(ctx, args)

	case "consume", "buy":
		err = sh.cmdConsume(ctx, args)

	case "produce":
		err = sh.cmdProduce(ctx, args)

	case "quit", "exit", "q":
		sh.stopProducing(ctx)
		return true

	default:
		sh.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		sh.printf("Error: %v\n", err)
	}
	return false
}

func (sh *Shell) printHelp() {
	sh.println(`
Within Shell Commands:
  Device:
    setup [name]                      - Configure the agent's device
    services                          - List the device's services
    status                            - Show session status

  Consumer:
    find [timeout]                    - Discover producer devices
    consume [device-name]             - Buy one unit of the first service

  Producer:
    produce start                     - Offer the configured service
    produce stop                      - Stop offering it

  General:
    help                              - Show this help
    quit                              - Exit the shell

  Timeouts accept Go durations (5s) or milliseconds (5000).`)
}

func (sh *Shell) printf(format string, args ...any) {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *Shell) println(args ...any) {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()
	fmt.Fprintln(sh.out, args...)
}

// parseTimeout accepts a duration ("5s") or a number of milliseconds.
func parseTimeout(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("%w: timeout must not be negative", ErrUsage)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: invalid timeout %q", ErrUsage, s)
	}
	return d, nil
}

func millis(d time.Duration) int32 {
	return int32(d / time.Millisecond)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown host"
	}
	return name
}
