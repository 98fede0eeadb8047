package skill

import (
	"time"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// Clock answers time and date queries.
func Clock() Module {
	return New("clock", func(reg *dispatch.Registry) (int, error) {
		count := 0

		if err := reg.Register([]string{"time", "what time"}, cmdTime, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"date", "what date", "today"}, cmdDate, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		return count, nil
	})
}

func cmdTime(sess *session.Session, query string) dispatch.Result {
	now := time.Now()
	return dispatch.Replyf("It is %s", now.Format("3:04 PM")).
		WithData("time", now.Format(time.RFC3339))
}

func cmdDate(sess *session.Session, query string) dispatch.Result {
	now := time.Now()
	return dispatch.Replyf("Today is %s", now.Format("Monday, January 2, 2006")).
		WithData("date", now.Format("2006-01-02"))
}
