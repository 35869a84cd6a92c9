package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/and161185/calendar/internal/calendar"
	"github.com/and161185/calendar/internal/errs"
	"github.com/and161185/calendar/internal/form"
	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// rangeFlags parses -from/-to as local dates or times; both or neither.
func (a *app) rangeFlags(from, to string) (repository.Range, error) {
	if from == "" && to == "" {
		return repository.Range{}, nil
	}
	if from == "" || to == "" {
		return repository.Range{}, errors.New("-from and -to go together")
	}
	start, err := form.ParseLocalInput(from, a.loc)
	if err != nil {
		return repository.Range{}, fmt.Errorf("-from: %w", err)
	}
	end, err := form.ParseLocalInput(to, a.loc)
	if err != nil {
		return repository.Range{}, fmt.Errorf("-to: %w", err)
	}
	return repository.NewRange(start, end), nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	from := fs.String("from", "", "range start")
	to := fs.String("to", "", "range end (exclusive)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	rng, err := a.rangeFlags(*from, *to)
	if err != nil {
		return err
	}
	events, err := a.api.List(ctx, rng)
	if err != nil {
		return err
	}
	if a.json {
		a.printJSON(events)
		return nil
	}
	for _, ev := range events {
		fmt.Fprintln(a.out, eventLine(ev, a.loc))
	}
	return nil
}

func (a *app) cmdAgenda(ctx context.Context, args []string) error {
	fs := newFlagSet("agenda")
	from := fs.String("from", "", "first day (default today)")
	days := fs.Int("days", 7, "number of days")
	if err := fs.Parse(args); err != nil || *days < 1 {
		return errUsage
	}
	start := calendar.Day(a.now(), a.loc).Start
	if *from != "" {
		t, err := form.ParseLocalInput(*from, a.loc)
		if err != nil {
			return fmt.Errorf("-from: %w", err)
		}
		start = calendar.Day(t, a.loc).Start
	}
	w := calendar.Window{Start: start, End: start.AddDate(0, 0, *days)}

	events, err := a.cache.InWindow(ctx, w)
	if err != nil {
		return err
	}
	events = calendar.Agenda(events, w)
	if a.json {
		a.printJSON(events)
		return nil
	}
	renderAgenda(a.out, events, a.loc)
	return nil
}

func (a *app) cmdMonth(ctx context.Context, args []string) error {
	fs := newFlagSet("month")
	month := fs.String("month", "", "YYYY-MM (default current month)")
	inclusive := fs.Bool("inclusive", false, "count events ending exactly at midnight on that day")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	year, m, err := parseMonth(*month, a.now(), a.loc)
	if err != nil {
		return err
	}
	opts := calendar.GridOptions{Today: a.now()}
	if *inclusive {
		opts.Bound = calendar.InclusiveEnd
	}
	g, err := a.cache.Month(ctx, year, m, a.loc, opts)
	if err != nil {
		return err
	}
	if a.json {
		a.printJSON(monthJSON(g))
		return nil
	}
	renderMonth(a.out, g)
	return nil
}

func (a *app) cmdGet(ctx context.Context, args []string) error {
	fs := newFlagSet("get")
	id := fs.String("id", "", "event id")
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}
	ev, err := a.api.Get(ctx, *id)
	if err != nil {
		return err
	}
	if a.json {
		a.printJSON(ev)
		return nil
	}
	renderEvent(a.out, ev, a.loc)
	return nil
}

// draftFlags registers the editable fields of a draft on fs.
type draftFlags struct {
	title, desc, loc, start, end, color, attendees *string
	allDay                                         *bool
}

func bindDraft(fs *flag.FlagSet) draftFlags {
	return draftFlags{
		title:     fs.String("title", "", "title"),
		desc:      fs.String("desc", "", "description"),
		loc:       fs.String("loc", "", "location"),
		start:     fs.String("start", "", "start (YYYY-MM-DDTHH:MM)"),
		end:       fs.String("end", "", "end (YYYY-MM-DDTHH:MM)"),
		color:     fs.String("color", "", "hex color"),
		attendees: fs.String("attendees", "", "comma separated"),
		allDay:    fs.Bool("allday", false, "all-day event"),
	}
}

// apply copies the flags that were given on the command line into d.
func (f draftFlags) apply(fs *flag.FlagSet, d *form.Draft) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			d.Title = *f.title
		case "desc":
			d.Description = *f.desc
		case "loc":
			d.Location = *f.loc
		case "start":
			d.Start = *f.start
		case "end":
			d.End = *f.end
		case "color":
			d.Color = *f.color
		case "attendees":
			d.Attendees = *f.attendees
		case "allday":
			d.AllDay = *f.allDay
		}
	})
}

// patch turns the flags given on the command line into a partial update.
// Fields that were not given stay absent and keep their stored values.
func (f draftFlags) patch(fs *flag.FlagSet, loc *time.Location) (model.EventPatch, error) {
	var (
		p   model.EventPatch
		err error
	)
	instant := func(field, s string) model.Optional[string] {
		t, perr := form.ParseLocalInput(s, loc)
		if perr != nil && err == nil {
			err = errs.Invalid(field, "Invalid date format")
		}
		return model.Some(t.UTC().Format(time.RFC3339))
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			if strings.TrimSpace(*f.title) == "" && err == nil {
				err = errs.Invalid("title", "Please enter an event title")
			}
			p.Title = model.Some(strings.TrimSpace(*f.title))
		case "desc":
			p.Description = model.Some(strings.TrimSpace(*f.desc))
		case "loc":
			p.Location = model.Some(strings.TrimSpace(*f.loc))
		case "start":
			p.Start = instant("start", *f.start)
		case "end":
			p.End = instant("end", *f.end)
		case "color":
			p.Color = model.Some(strings.TrimSpace(*f.color))
		case "attendees":
			p.Attendees = model.Some(form.SplitAttendees(*f.attendees))
		case "allday":
			p.AllDay = model.Some(*f.allDay)
		}
	})
	return p, err
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	df := bindDraft(fs)
	day := fs.String("day", "", "all-day selection start date")
	until := fs.String("until", "", "all-day selection end date (exclusive)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	d := form.NewDraft()
	if *day != "" {
		sel, err := form.FromSelection(form.Selection{Start: *day, End: *until, AllDay: true}, a.loc)
		if err != nil {
			return fmt.Errorf("-day: %w", err)
		}
		d = sel
	}
	df.apply(fs, &d)

	in, err := form.FromDraft(d, a.loc)
	if err != nil {
		return err
	}
	ev, err := a.cache.Create(ctx, in)
	if err != nil {
		return err
	}
	return a.done(ev)
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	fs := newFlagSet("edit")
	id := fs.String("id", "", "event id")
	df := bindDraft(fs)
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}
	p, err := df.patch(fs, a.loc)
	if err != nil {
		return err
	}
	if p.IsEmpty() {
		return errors.New("nothing to change")
	}

	ev, err := a.cache.Update(ctx, *id, p)
	if err != nil {
		return err
	}
	return a.done(ev)
}

func (a *app) cmdRm(ctx context.Context, args []string) error {
	fs := newFlagSet("rm")
	id := fs.String("id", "", "event id")
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}
	if err := a.cache.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "deleted")
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	from := fs.String("from", "", "range start")
	to := fs.String("to", "", "range end (exclusive)")
	outPath := fs.String("o", "-", "output file or - for stdout")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	rng, err := a.rangeFlags(*from, *to)
	if err != nil {
		return err
	}
	if *outPath == "-" || strings.TrimSpace(*outPath) == "" {
		return a.api.Export(ctx, rng, a.out)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	if err := a.api.Export(ctx, rng, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "written", *outPath)
	return nil
}

func (a *app) done(ev model.Event) error {
	if a.json {
		a.printJSON(ev)
		return nil
	}
	fmt.Fprintln(a.out, ev.ID.String())
	return nil
}

// parseMonth reads YYYY-MM; empty means the month of now in loc.
func parseMonth(s string, now time.Time, loc *time.Location) (int, time.Month, error) {
	if strings.TrimSpace(s) == "" {
		n := now.In(loc)
		return n.Year(), n.Month(), nil
	}
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), loc)
	if err != nil {
		return 0, 0, fmt.Errorf("-month: want YYYY-MM, got %q", s)
	}
	return t.Year(), t.Month(), nil
}
