package skill

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

var (
	durationPattern = regexp.MustCompile(`(\d+)\s*(second|minute|hour)s?`)
	dailyPattern    = regexp.MustCompile(`every day at (\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// reminders tracks one-shot timers and recurring cron reminders. Fired
// reminders are pushed onto the session notice queue; the assistant
// loop delivers them between iterations. Skills never speak directly.
type reminders struct {
	mu      sync.Mutex
	cron    *cron.Cron
	started bool
	active  map[string]string // id -> description
}

// Reminders provides timers and reminders.
func Reminders() Module {
	r := &reminders{
		cron:   cron.New(),
		active: make(map[string]string),
	}

	return New("reminders", func(reg *dispatch.Registry) (int, error) {
		count := 0

		if err := reg.Register([]string{"set timer", "start timer", "timer"}, r.cmdTimer, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"remind me", "set reminder", "reminder"}, r.cmdRemind, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"list reminders", "my reminders"}, r.cmdList, dispatch.WithPriority(15)); err != nil {
			return count, err
		}
		count++

		return count, nil
	})
}

func (r *reminders) track(desc string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.active[id] = desc
	return id
}

func (r *reminders) done(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

func (r *reminders) cmdTimer(sess *session.Session, query string) dispatch.Result {
	d, ok := parseDuration(query)
	if !ok {
		return dispatch.Reply("For how long? Try: set timer 5 minutes.")
	}

	label := humanDuration(d)
	id := r.track(fmt.Sprintf("timer (%s)", label))

	time.AfterFunc(d, func() {
		r.done(id)
		sess.PushNotice(fmt.Sprintf("Timer finished (%s).", label))
	})

	return dispatch.Replyf("Timer set for %s.", label).
		WithData("id", id).
		WithData("seconds", int(d.Seconds()))
}

func (r *reminders) cmdRemind(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	task := q
	for _, marker := range []string{"remind me to", "remind me", "set reminder to", "set reminder", "reminder"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			task = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}

	// Recurring: "remind me to stretch every day at 3:30 pm".
	if m := dailyPattern.FindStringSubmatch(task); m != nil {
		return r.scheduleDaily(sess, strings.TrimSpace(dailyPattern.ReplaceAllString(task, "")), m)
	}

	// One-shot: "remind me to call mom in 20 minutes".
	d, ok := parseDuration(task)
	if !ok {
		return dispatch.Reply("When? Try: remind me to stretch in 30 minutes, or every day at 9:00.")
	}
	task = strings.TrimSpace(durationPattern.ReplaceAllString(task, ""))
	task = strings.TrimSuffix(task, " in")
	task = strings.TrimSpace(task)
	if task == "" {
		task = "your reminder"
	}

	id := r.track(task)
	time.AfterFunc(d, func() {
		r.done(id)
		sess.PushNotice(fmt.Sprintf("Reminder: %s", task))
	})

	return dispatch.Replyf("I will remind you to %s in %s.", task, humanDuration(d)).
		WithData("id", id)
}

func (r *reminders) scheduleDaily(sess *session.Session, task string, m []string) dispatch.Result {
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if m[3] == "pm" && hour < 12 {
		hour += 12
	}
	if m[3] == "am" && hour == 12 {
		hour = 0
	}
	if hour > 23 || minute > 59 {
		return dispatch.Errorf("invalid time of day")
	}

	if task == "" {
		task = "your reminder"
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	_, err := r.cron.AddFunc(spec, func() {
		sess.PushNotice(fmt.Sprintf("Daily reminder: %s", task))
	})
	if err != nil {
		return dispatch.Errorf("could not schedule reminder: %v", err)
	}

	r.mu.Lock()
	if !r.started {
		r.cron.Start()
		r.started = true
	}
	r.active[uuid.NewString()] = fmt.Sprintf("%s (daily at %02d:%02d)", task, hour, minute)
	r.mu.Unlock()

	return dispatch.Replyf("I will remind you to %s every day at %02d:%02d.", task, hour, minute)
}

func (r *reminders) cmdList(sess *session.Session, query string) dispatch.Result {
	r.mu.Lock()
	descs := make([]string, 0, len(r.active))
	for _, desc := range r.active {
		descs = append(descs, desc)
	}
	r.mu.Unlock()

	if len(descs) == 0 {
		return dispatch.Reply("You have no active reminders.")
	}

	sort.Strings(descs)
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d active reminder(s):\n", len(descs))
	for i, desc := range descs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, desc)
	}
	return dispatch.Reply(strings.TrimRight(b.String(), "\n"))
}

func parseDuration(text string) (time.Duration, bool) {
	m := durationPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	switch m[2] {
	case "second":
		return time.Duration(n) * time.Second, true
	case "minute":
		return time.Duration(n) * time.Minute, true
	case "hour":
		return time.Duration(n) * time.Hour, true
	}
	return 0, false
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
