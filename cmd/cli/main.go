// Command calctl is a terminal client for the calendar service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/and161185/calendar/internal/client"
)

// EnvServer sets the default server URL.
const EnvServer = "CALCTL_SERVER"

var (
	version   = "dev"
	buildDate = "unknown"
)

// app carries the state shared by subcommands.
type app struct {
	api   *client.Client
	cache *client.Cache
	loc   *time.Location
	out   io.Writer
	json  bool
	now   func() time.Time
}

func usage(w io.Writer) {
	fmt.Fprint(w, `calctl
Usage:
  calctl [-server URL] [-tz ZONE] [-json] <cmd> [args]

Commands:
  version
  health
  list      [-from DATE -to DATE]                  events in storage order
  agenda    [-from DATE] [-days N]                 events sorted by start
  month     [-month YYYY-MM] [-inclusive]          month grid with counts
  get       -id <id>
  add       -title T (-start T -end T | -day DATE [-until DATE]) [-desc D] [-loc L]
            [-color #hex] [-attendees "a, b"] [-allday]
  edit      -id <id> [-title T] [-start T] [-end T] [-desc D] [-loc L] [-color #hex]
            [-attendees "a, b"] [-allday=true|false]
  rm        -id <id>
  export    [-from DATE -to DATE] [-o FILE]        iCalendar feed

Times are local wall-clock values (YYYY-MM-DDTHH:MM) in -tz.
`)
}

// main dispatches subcommands against the HTTP API.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// global flags
	gfs := flag.NewFlagSet("calctl", flag.ContinueOnError)
	gfs.SetOutput(stderr)
	server := gfs.String("server", envOr(EnvServer, "http://localhost:8080"), "server base URL")
	tz := gfs.String("tz", "Local", "timezone for input and display")
	asJSON := gfs.Bool("json", false, "print JSON instead of text")
	timeout := gfs.Duration("timeout", 30*time.Second, "overall request timeout")
	gfs.Usage = func() { usage(stderr) }
	if err := gfs.Parse(args); err != nil {
		return 2
	}
	if gfs.NArg() < 1 {
		usage(stderr)
		return 2
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	api := client.New(*server, nil)
	a := &app{
		api:   api,
		cache: client.NewCache(api),
		loc:   loc,
		out:   stdout,
		json:  *asJSON,
		now:   time.Now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cmd, rest := gfs.Arg(0), gfs.Args()[1:]
	if err := a.dispatch(ctx, cmd, rest); err != nil {
		if errors.Is(err, errUsage) {
			usage(stderr)
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "version":
		fmt.Fprintf(a.out, "calctl %s (%s)\n", version, buildDate)
		return nil
	case "health":
		if err := a.api.Health(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "ok")
		return nil
	case "list":
		return a.cmdList(ctx, args)
	case "agenda":
		return a.cmdAgenda(ctx, args)
	case "month":
		return a.cmdMonth(ctx, args)
	case "get":
		return a.cmdGet(ctx, args)
	case "add":
		return a.cmdAdd(ctx, args)
	case "edit":
		return a.cmdEdit(ctx, args)
	case "rm":
		return a.cmdRm(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	default:
		return errUsage
	}
}

func (a *app) printJSON(v any) {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
