package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/monitor"
	"github.com/rileyhilliard/pulse/internal/series"
	"github.com/rileyhilliard/pulse/internal/session"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

// tailCommand streams readings to stdout until interrupted or the session
// ends.
func tailCommand(cmd *cobra.Command) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.Token == "" {
		return errors.New(errors.ErrAuth,
			"No auth token configured",
			"Run 'pulse login --save' or set PULSE_AUTH_TOKEN.")
	}

	closeLog, err := initLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := startStream(ctx, cfg)
	if err != nil {
		return err
	}
	defer sc.Close()

	views, unsubscribe := sc.Controller.Subscribe()
	defer unsubscribe()

	printer := newTailPrinter(cmd.OutOrStdout(), MachineMode())
	printer.Print(sc.Controller.CurrentView())
	last := waitForTerminal(ctx, views, printer.Print)
	return closedReason(ctx, last)
}

// tailCursor marks the newest sample already printed for a channel. Several
// samples can share a timestamp, so it also counts how many at that time were
// printed.
type tailCursor struct {
	time int64
	n    int
}

// tailPrinter turns successive views into a stream of new readings and
// status changes.
type tailPrinter struct {
	w      io.Writer
	json   bool
	enc    *json.Encoder
	epoch  uint64
	status session.Status
	primed bool
	seen   map[series.Key]tailCursor
}

func newTailPrinter(w io.Writer, asJSON bool) *tailPrinter {
	return &tailPrinter{
		w:    w,
		json: asJSON,
		enc:  json.NewEncoder(w),
		seen: make(map[series.Key]tailCursor),
	}
}

// tailStatus is the --json record for a session state change.
type tailStatus struct {
	Type      string `json:"type"`
	Epoch     uint64 `json:"epoch"`
	SessionID string `json:"session_id,omitempty"`
	State     string `json:"state"`
	Reason    string `json:"reason,omitempty"`
	Attempt   int    `json:"attempt,omitempty"`
}

// tailSample is the --json record for one reading.
type tailSample struct {
	Type  string  `json:"type"`
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Print writes whatever v adds over the previously printed view. A new
// epoch starts over: its buffers belong to a fresh session.
func (p *tailPrinter) Print(v dashboard.View) {
	newEpoch := v.Epoch != p.epoch
	if newEpoch {
		p.epoch = v.Epoch
		p.seen = make(map[series.Key]tailCursor)
	}
	if !p.primed || newEpoch || v.Status.State != p.status.State || v.Status.Reason != p.status.Reason {
		p.primed = true
		p.status = v.Status
		p.printStatus(v)
	}

	for _, ch := range v.Channels {
		cur, ok := p.seen[ch.Key]
		next := cur
		skip := cur.n
		for _, s := range ch.Samples {
			if ok && s.Time < cur.time {
				continue
			}
			if ok && s.Time == cur.time && skip > 0 {
				skip--
				continue
			}
			p.printSample(ch, s)
			switch {
			case !ok || s.Time > next.time:
				next = tailCursor{time: s.Time, n: 1}
				ok = true
			case s.Time == next.time:
				next.n++
			}
		}
		if ok {
			p.seen[ch.Key] = next
		}
	}
}

func (p *tailPrinter) printStatus(v dashboard.View) {
	if p.json {
		_ = p.enc.Encode(tailStatus{
			Type:      "status",
			Epoch:     v.Epoch,
			SessionID: v.SessionID,
			State:     v.Status.State.String(),
			Reason:    v.Status.Reason,
			Attempt:   v.Status.Attempt,
		})
		return
	}
	line := fmt.Sprintf("-- %s", v.Status)
	if v.Epoch > 0 {
		line = fmt.Sprintf("-- session %d: %s", v.Epoch, v.Status)
	}
	fmt.Fprintln(p.w, ui.MutedStyle().Render(line))
}

func (p *tailPrinter) printSample(ch dashboard.Channel, s series.Sample) {
	if p.json {
		_ = p.enc.Encode(tailSample{
			Type:  "sample",
			Key:   string(ch.Key),
			Label: ch.Label,
			Time:  s.Time,
			Value: s.Value,
			Unit:  ch.Unit,
		})
		return
	}
	unit := ch.Unit
	if unit == "" {
		unit = monitor.DefaultUnit
	}
	name := string(ch.Key)
	if ch.Label != "" && ch.Label != name {
		name = fmt.Sprintf("%s (%s)", ch.Label, ch.Key)
	}
	fmt.Fprintf(p.w, "%s  %s  %s\n", monitor.FormatClock(s.Time), name, monitor.FormatValue(s.Value, unit))
}
