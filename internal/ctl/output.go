package ctl

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/matheus3301/chatterm/internal/api"
)

const timeLayout = "2006-01-02 15:04"

type profileRow struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
	PID     int    `json:"pid,omitempty"`
}

func (e *env) writeJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *env) table(fn func(w *tabwriter.Writer)) error {
	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fn(w)
	return w.Flush()
}

func (e *env) printStatus(msg string) error {
	if e.json {
		return e.writeJSON(map[string]string{"status": msg})
	}
	_, err := fmt.Fprintln(e.out, msg)
	return err
}

func (e *env) printUser(u *api.User) error {
	if e.json {
		return e.writeJSON(u)
	}
	_, err := fmt.Fprintf(e.out, "%s <%s> (%s)\n", u.DisplayName(), u.Email, u.ID)
	return err
}

func (e *env) printUsers(users []api.User) error {
	if e.json {
		return e.writeJSON(users)
	}
	return e.table(func(w *tabwriter.Writer) {
		_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL")
		for _, u := range users {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.FullName, u.Email)
		}
	})
}

func (e *env) printGroups(groups []api.Group) error {
	if e.json {
		return e.writeJSON(groups)
	}
	return e.table(func(w *tabwriter.Writer) {
		_, _ = fmt.Fprintln(w, "ID\tNAME\tMEMBERS")
		for _, g := range groups {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", g.ID, g.Name, len(g.Members))
		}
	})
}

func (e *env) printMessages(msgs []api.Message, me string, peer *api.User) error {
	if e.json {
		return e.writeJSON(msgs)
	}
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(e.out, "No messages yet")
		return err
	}
	return e.table(func(w *tabwriter.Writer) {
		for _, m := range msgs {
			who := peer.DisplayName()
			if m.SenderID == me {
				who = "You"
			}
			writeLine(w, m.CreatedAt, who, m.Text, m.Image != "")
		}
	})
}

func (e *env) printGroupMessages(msgs []api.GroupMessage, me string) error {
	if e.json {
		return e.writeJSON(msgs)
	}
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(e.out, "No messages yet")
		return err
	}
	return e.table(func(w *tabwriter.Writer) {
		for _, m := range msgs {
			who := m.Sender.DisplayName()
			if m.Sender.ID == me {
				who = "You"
			}
			writeLine(w, m.CreatedAt, who, m.Text, m.Image != "")
		}
	})
}

func writeLine(w *tabwriter.Writer, at time.Time, who, text string, image bool) {
	if image {
		text = "[image] " + text
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", at.Local().Format(timeLayout), who, text)
}

func (e *env) printProfiles(rows []profileRow) error {
	if e.json {
		return e.writeJSON(rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(e.out, "No profiles yet")
		return err
	}
	return e.table(func(w *tabwriter.Writer) {
		_, _ = fmt.Fprintln(w, "\tPROFILE\tSTATE")
		for _, r := range rows {
			mark, state := "", "idle"
			if r.Current {
				mark = "*"
			}
			if r.PID != 0 {
				state = fmt.Sprintf("open (pid %d)", r.PID)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", mark, r.Name, state)
		}
	})
}
