package main

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"planner/internal/errors"
	"planner/internal/task"
)

// runCLI executes the command tree with args against home and returns
// stdout.
func runCLI(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local) }
	logConsole = io.Discard
	t.Cleanup(func() { now = time.Now })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--home", home}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, home, args...)
	if err != nil {
		t.Fatalf("planner %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func addTask(t *testing.T, home string, args ...string) *task.Task {
	t.Helper()
	out := mustRun(t, home, append([]string{"add", "--format", "json"}, args...)...)
	var resp TaskResponseCLI
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode add output %q: %v", out, err)
	}
	if resp.Action != "added" || resp.Task == nil {
		t.Fatalf("unexpected add response: %+v", resp)
	}
	return resp.Task
}

func showJSON(t *testing.T, home string, args ...string) *ViewResponseCLI {
	t.Helper()
	out := mustRun(t, home, append([]string{"show", "--format", "json"}, args...)...)
	var resp ViewResponseCLI
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode show output %q: %v", out, err)
	}
	return &resp
}

func taskTitles(tasks []*task.Task) string {
	titles := make([]string, len(tasks))
	for i, tk := range tasks {
		titles[i] = tk.Title
	}
	return strings.Join(titles, ",")
}

func TestCLIDayView(t *testing.T) {
	home := t.TempDir()

	addTask(t, home, "A", "--date", "2024-06-10")
	addTask(t, home, "B", "--deadline", "today")
	addTask(t, home, "D", "--deadline", "2024-06-25")
	addTask(t, home, "C", "--deadline", "2024-06-20")
	addTask(t, home, "E")

	view := showJSON(t, home)
	if view.Start != "2024-06-15" || view.End != "2024-06-15" {
		t.Errorf("period = %s..%s, want 2024-06-15", view.Start, view.End)
	}
	checks := map[string][2]string{
		"overdue":   {taskTitles(view.Buckets.Overdue), "A"},
		"scheduled": {taskTitles(view.Buckets.Scheduled), "B"},
		"deadlines": {taskTitles(view.Buckets.Deadlines), "C,D"},
		"backlog":   {taskTitles(view.Buckets.Backlog), "E"},
	}
	for bucket, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", bucket, c[0], c[1])
		}
	}

	human := mustRun(t, home, "today")
	for _, want := range []string{"Saturday, June 15 2024", "Overdue", "Upcoming deadlines", "Backlog", "A", "due Jun 20"} {
		if !strings.Contains(human, want) {
			t.Errorf("today output missing %q:\n%s", want, human)
		}
	}
}

func TestCLIWeekAndMonth(t *testing.T) {
	home := t.TempDir()
	addTask(t, home, "thursday", "--date", "2024-06-13")
	addTask(t, home, "next month", "--deadline", "2024-07-02")

	week := showJSON(t, home, "--week")
	if week.Start != "2024-06-10" || week.End != "2024-06-16" {
		t.Errorf("week = %s..%s", week.Start, week.End)
	}
	if got := taskTitles(week.Buckets.Scheduled); got != "thursday" {
		t.Errorf("week scheduled = %q", got)
	}

	month := showJSON(t, home, "--month", "--date", "2024-07-09")
	if got := taskTitles(month.Buckets.Overdue); got != "thursday" {
		t.Errorf("july overdue = %q", got)
	}
	if got := taskTitles(month.Buckets.Scheduled); got != "next month" {
		t.Errorf("july scheduled = %q", got)
	}

	if _, err := runCLI(t, home, "show", "--week", "--month"); err == nil {
		t.Error("--week and --month together should fail")
	}
}

func TestCLIDoneEditRemove(t *testing.T) {
	home := t.TempDir()
	b := addTask(t, home, "B", "--date", "2024-06-15", "--notes", "  first  ")
	if b.Notes == nil || *b.Notes != "first" {
		t.Errorf("notes = %v, want trimmed", b.Notes)
	}

	out := mustRun(t, home, "done", b.ID[:6], "--format", "json")
	if !strings.Contains(out, `"action": "done"`) {
		t.Errorf("done output = %s", out)
	}
	if n := showJSON(t, home).Buckets.Len(); n != 0 {
		t.Errorf("done task still visible, %d tasks", n)
	}
	if got := taskTitles(showJSON(t, home, "--all").Buckets.Scheduled); got != "B" {
		t.Errorf("--all scheduled = %q", got)
	}

	mustRun(t, home, "edit", b.ID, "--title", "B2", "--deadline", "2024-06-30")
	all := showJSON(t, home, "--all")
	if got := taskTitles(all.Buckets.Deadlines); got != "B2" {
		t.Fatalf("edited task deadlines = %q", got)
	}
	edited := all.Buckets.Deadlines[0]
	if edited.ScheduledDate != nil {
		t.Error("new deadline should replace the scheduled date")
	}
	if !edited.IsDone {
		t.Error("edit must keep the done flag")
	}

	mustRun(t, home, "rm", b.ID)
	mustRun(t, home, "rm", b.ID)
	if n := showJSON(t, home, "--all").Buckets.Len(); n != 0 {
		t.Errorf("%d tasks left after rm", n)
	}
}

func TestCLIErrors(t *testing.T) {
	home := t.TempDir()
	addTask(t, home, "x")

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
		exit int
	}{
		{"blank title", []string{"add", "  "}, errors.InvalidInput, 2},
		{"bad date", []string{"add", "x", "--date", "2024-02-30"}, errors.InvalidDate, 2},
		{"bad time", []string{"add", "x", "--date", "today", "--time", "25:00"}, errors.InvalidInput, 2},
		{"edit missing", []string{"edit", "zzz", "--title", "y"}, errors.TaskNotFound, 3},
		{"done missing", []string{"done", "zzz"}, errors.TaskNotFound, 3},
		{"bad output format", []string{"show", "--format", "xml"}, errors.InvalidInput, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, home, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.CodeOf(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
			if got := errors.ExitCode(err); got != tt.exit {
				t.Errorf("exit = %d, want %d", got, tt.exit)
			}
		})
	}
}

func TestCLIAmbiguousPrefix(t *testing.T) {
	home := t.TempDir()
	var ids []string
	for i := 0; i < 40; i++ {
		ids = append(ids, addTask(t, home, "t").ID)
	}
	// Forty random uuids share at least one leading hex digit.
	seen := map[byte]bool{}
	prefix := ""
	for _, id := range ids {
		if seen[id[0]] {
			prefix = id[:1]
			break
		}
		seen[id[0]] = true
	}

	_, err := runCLI(t, home, "done", prefix)
	if errors.CodeOf(err) != errors.InvalidInput {
		t.Errorf("ambiguous prefix: code = %s, want %s", errors.CodeOf(err), errors.InvalidInput)
	}
}

func TestCLICalendar(t *testing.T) {
	home := t.TempDir()
	for i := 0; i < 3; i++ {
		addTask(t, home, "s", "--date", "2024-05-10")
	}
	addTask(t, home, "d", "--deadline", "2024-05-10")
	done := addTask(t, home, "finished", "--date", "2024-05-11")
	mustRun(t, home, "done", done.ID)

	out := mustRun(t, home, "calendar", "--date", "2024-05-20", "--format", "json")
	var cal CalendarResponseCLI
	if err := json.Unmarshal([]byte(out), &cal); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if cal.Month != "2024-05" || cal.WeekStart != "Monday" {
		t.Errorf("month = %s, weekStart = %s", cal.Month, cal.WeekStart)
	}
	if cal.Scheduled["2024-05-10"] != 3 || cal.Deadlines["2024-05-10"] != 1 {
		t.Errorf("counts on 2024-05-10 = %d/%d, want 3/1", cal.Scheduled["2024-05-10"], cal.Deadlines["2024-05-10"])
	}
	if cal.Scheduled["2024-05-11"] != 1 {
		t.Error("done tasks must be counted")
	}
	if len(cal.Weeks) != 5 || cal.Weeks[0][0].Date != "2024-04-29" {
		t.Errorf("grid starts %s with %d weeks", cal.Weeks[0][0].Date, len(cal.Weeks))
	}

	human := mustRun(t, home, "calendar", "--date", "2024-05-20")
	if !strings.Contains(human, "May 2024") || !strings.Contains(human, "•3") {
		t.Errorf("calendar output:\n%s", human)
	}
}

func TestCLIExportImport(t *testing.T) {
	src := t.TempDir()
	addTask(t, src, "one", "--date", "2024-06-15", "--time", "08:15", "--reminder")
	two := addTask(t, src, "two", "--deadline", "2024-06-20")
	mustRun(t, src, "done", two.ID)

	for _, name := range []string{"backup.json", "backup.yaml.zst", "backup.toml"} {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), name)
			out := mustRun(t, src, "export", file)
			if !strings.Contains(out, "Exported 2 tasks") {
				t.Errorf("export output = %q", out)
			}

			dst := t.TempDir()
			out = mustRun(t, dst, "import", file)
			if !strings.Contains(out, "Imported 2 tasks") {
				t.Errorf("import output = %q", out)
			}

			want := showJSON(t, src, "--all")
			got := showJSON(t, dst, "--all")
			wantJSON, _ := json.Marshal(want)
			gotJSON, _ := json.Marshal(got)
			if string(wantJSON) != string(gotJSON) {
				t.Errorf("imported view differs\nwant %s\n got %s", wantJSON, gotJSON)
			}
		})
	}

	stdout := mustRun(t, src, "export", "--as", "yaml")
	if !strings.Contains(stdout, "tasks:") || strings.Contains(stdout, "Exported") {
		t.Errorf("stdout export = %q", stdout)
	}

	if _, err := runCLI(t, src, "export", filepath.Join(t.TempDir(), "backup.csv")); errors.CodeOf(err) != errors.InvalidInput {
		t.Errorf("unknown extension: %v", err)
	}
}

func TestCLIConfigAndVersion(t *testing.T) {
	home := t.TempDir()

	human := mustRun(t, home, "config", "show")
	if !strings.Contains(human, "Source: defaults") || !strings.Contains(human, "backend: sqlite") {
		t.Errorf("config show:\n%s", human)
	}

	tomlOut := mustRun(t, home, "config", "show", "--as", "toml", "--save")
	for _, want := range []string{"[storage]", "backend", "sqlite", "[agenda]", "weekStart"} {
		if !strings.Contains(tomlOut, want) {
			t.Errorf("toml output missing %q:\n%s", want, tomlOut)
		}
	}
	if after := mustRun(t, home, "config", "show"); !strings.Contains(after, filepath.Join(home, "config.json")) {
		t.Errorf("--save did not write config.json:\n%s", after)
	}

	env := mustRun(t, home, "config", "env")
	if !strings.Contains(env, "PLANNER_STORAGE_BACKEND") || !strings.Contains(env, "storage.backend") {
		t.Errorf("config env:\n%s", env)
	}

	v := mustRun(t, home, "version", "--format", "json")
	if !strings.Contains(v, `"version"`) || !strings.Contains(v, `"goVersion"`) {
		t.Errorf("version json = %s", v)
	}
}
