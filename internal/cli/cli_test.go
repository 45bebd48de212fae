package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shaiso/aio/internal/config"
)

// testEnv — временный конфиг и mock API сервер.
type testEnv struct {
	t          *testing.T
	configPath string
	server     *httptest.Server
	hits       int32
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()

	env := &testEnv{
		t:          t,
		configPath: filepath.Join(t.TempDir(), "config.json"),
	}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&env.hits, 1)
		handler(w, r)
	}))
	t.Cleanup(env.server.Close)

	return env
}

// configure сохраняет учётные данные, указывающие на mock сервер.
func (e *testEnv) configure() {
	e.t.Helper()
	_, err := config.NewStore(e.configPath).Set(config.Credentials{
		APIKey:   "aio_secret_key",
		Username: "alice",
		BaseURL:  e.server.URL,
	})
	if err != nil {
		e.t.Fatalf("configure: %v", err)
	}
}

// run выполняет CLI и возвращает код выхода, stdout и stderr.
func (e *testEnv) run(args ...string) (int, string, string) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", e.configPath}, args...)
	code := NewApp("test", &stdout, &stderr).Run(args)
	return code, stdout.String(), stderr.String()
}

func (e *testEnv) requests() int {
	return int(atomic.LoadInt32(&e.hits))
}

func TestCLI_NotConfigured(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	commands := [][]string{
		{"user"},
		{"feeds", "list"},
		{"feeds", "get", "temp"},
		{"feeds", "create", "--name", "Temp"},
		{"data", "send", "temp", "42"},
		{"data", "get", "temp", "0ABC"},
		{"data", "list", "temp"},
		{"dashboards", "list"},
		{"dashboards", "get", "home"},
		{"dashboards", "create", "--name", "Home"},
	}

	for _, args := range commands {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			code, stdout, stderr := env.run(args...)
			if code != 1 {
				t.Errorf("expected exit code 1, got %d", code)
			}
			if stdout != "" {
				t.Errorf("expected empty stdout, got %q", stdout)
			}
			if !strings.Contains(stderr, "credentials not configured") {
				t.Errorf("expected configuration help, got %q", stderr)
			}
			if !strings.Contains(stderr, "adafruit config set --api-key") {
				t.Errorf("expected config set hint, got %q", stderr)
			}
		})
	}

	if n := env.requests(); n != 0 {
		t.Errorf("expected no API requests, got %d", n)
	}
}

func TestCLI_ConfigSetGetList(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	if code, _, stderr := env.run("config", "set", "--api-key", "aio_abcdef123456"); code != 0 {
		t.Fatalf("config set api key: exit %d: %s", code, stderr)
	}
	if code, _, stderr := env.run("config", "set", "--username", "alice"); code != 0 {
		t.Fatalf("config set username: exit %d: %s", code, stderr)
	}

	code, stdout, _ := env.run("config", "get", "username")
	if code != 0 || strings.TrimSpace(stdout) != "alice" {
		t.Errorf("config get username: exit %d, output %q", code, stdout)
	}

	code, stdout, _ = env.run("config", "get", "apiKey")
	if code != 0 || strings.TrimSpace(stdout) != "aio_abcdef123456" {
		t.Errorf("config get apiKey: exit %d, output %q", code, stdout)
	}

	code, stdout, _ = env.run("config", "list")
	if code != 0 {
		t.Fatalf("config list: exit %d", code)
	}
	if strings.Contains(stdout, "aio_abcdef123456") {
		t.Error("config list must mask the API key")
	}
	if !strings.Contains(stdout, "3456") || !strings.Contains(stdout, config.DefaultBaseURL) {
		t.Errorf("unexpected config list output:\n%s", stdout)
	}

	// show — алиас list, JSON-вывод
	code, stdout, _ = env.run("--json", "config", "show")
	if code != 0 {
		t.Fatalf("config show: exit %d", code)
	}
	var shown map[string]string
	if err := json.Unmarshal([]byte(stdout), &shown); err != nil {
		t.Fatalf("config show --json: %v\n%s", err, stdout)
	}
	if shown["username"] != "alice" || shown["apiKey"] == "aio_abcdef123456" {
		t.Errorf("unexpected JSON config: %v", shown)
	}
}

func TestCLI_ConfigErrors(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"nothing to set", []string{"config", "set"}, "nothing to set"},
		{"bad base url", []string{"config", "set", "--base-url", "localhost"}, "invalid value for --base-url"},
		{"unknown key", []string{"config", "get", "password"}, "unknown config key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := env.run(tt.args...)
			if code != 1 {
				t.Errorf("expected exit code 1, got %d", code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("expected %q in stderr, got %q", tt.want, stderr)
			}
		})
	}
}

func TestCLI_CorruptConfigIsNotConfigured(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := os.WriteFile(env.configPath, []byte("{{{"), 0o600); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := env.run("feeds", "list")
	if code != 1 || !strings.Contains(stderr, "not configured") {
		t.Errorf("expected not configured, got exit %d: %q", code, stderr)
	}
}

func TestCLI_FeedsList(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alice/feeds" || r.Header.Get("X-AIO-Key") != "aio_secret_key" {
			t.Errorf("unexpected request %s key=%q", r.URL.Path, r.Header.Get("X-AIO-Key"))
		}
		io.WriteString(w, `[
			{"id": 1, "name": "Temperature", "key": "temperature", "visibility": "private", "last_value": "21.5"},
			{"id": 2, "name": "Door", "key": "door", "visibility": "public", "last_value": null}
		]`)
	})
	env.configure()

	code, stdout, stderr := env.run("feeds", "list")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got:\n%s", stdout)
	}
	if !strings.Contains(lines[2], "temperature") || !strings.Contains(lines[2], "21.5") {
		t.Errorf("unexpected row %q", lines[2])
	}
	if !strings.Contains(lines[3], "N/A") {
		t.Errorf("missing last value should render N/A, got %q", lines[3])
	}

	code, stdout, _ = env.run("--json", "feeds", "list")
	if code != 0 {
		t.Fatalf("json: exit %d", code)
	}
	var feeds []map[string]any
	if err := json.Unmarshal([]byte(stdout), &feeds); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(feeds) != 2 || feeds[0]["key"] != "temperature" {
		t.Errorf("unexpected JSON feeds %v", feeds)
	}
}

func TestCLI_FeedsCreate(t *testing.T) {
	var body map[string]map[string]any
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 5, "name": "Humidity", "key": "humidity", "visibility": "public"}`)
	})
	env.configure()

	code, stdout, stderr := env.run("feeds", "create", "--name", "Humidity", "--visibility", "public")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "Feed created: humidity") || !strings.Contains(stdout, "humidity") {
		t.Errorf("unexpected output: stdout=%q stderr=%q", stdout, stderr)
	}

	feed := body["feed"]
	if feed["name"] != "Humidity" || feed["visibility"] != "public" {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := feed["description"]; ok {
		t.Error("description was not provided and must be absent")
	}
}

func TestCLI_FeedsCreate_InvalidVisibility(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.configure()

	code, _, stderr := env.run("feeds", "create", "--name", "x", "--visibility", "secret")
	if code != 1 || !strings.Contains(stderr, "invalid visibility") {
		t.Errorf("expected visibility error, got exit %d: %q", code, stderr)
	}
	if env.requests() != 0 {
		t.Error("no request expected for invalid visibility")
	}
}

func TestCLI_DataSend(t *testing.T) {
	var raw map[string]any
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/alice/feeds/temperature/data" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&raw)
		io.WriteString(w, `{"id": "0F1", "value": "42", "created_at": "2026-10-16T10:00:00Z", "lat": 52.5}`)
	})
	env.configure()

	code, stdout, stderr := env.run("data", "send", "temperature", "42", "--lat", "52.5")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	if raw["value"] != "42" {
		t.Errorf("expected string value \"42\", got %#v", raw["value"])
	}
	if raw["lat"] != 52.5 {
		t.Errorf("expected lat 52.5, got %v", raw["lat"])
	}
	for _, key := range []string{"lon", "ele", "created_at"} {
		if _, ok := raw[key]; ok {
			t.Errorf("%s was not provided and must be absent", key)
		}
	}
	if !strings.Contains(stderr, "Sent 42 to temperature") || !strings.Contains(stdout, "0F1") {
		t.Errorf("unexpected output: stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestCLI_DataSend_NegativeValue(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantVal string
		wantLat any
	}{
		{"value only", []string{"data", "send", "temp", "-5"}, "-5", nil},
		{"decimal", []string{"data", "send", "temp", "-0.25"}, "-0.25", nil},
		{"flag after value", []string{"data", "send", "temp", "-5", "--lat", "-33.9"}, "-5", -33.9},
		{"flag before value", []string{"data", "send", "--lat", "-33.9", "temp", "-12"}, "-12", -33.9},
		{"explicit separator", []string{"data", "send", "temp", "--", "-offline"}, "-offline", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]any
			env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewDecoder(r.Body).Decode(&raw)
				io.WriteString(w, `{"id": "0F2", "value": "x"}`)
			})
			env.configure()

			code, _, stderr := env.run(tt.args...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, stderr)
			}
			if env.requests() != 1 {
				t.Fatalf("expected 1 request, got %d", env.requests())
			}
			if raw["value"] != tt.wantVal {
				t.Errorf("expected value %q, got %#v", tt.wantVal, raw["value"])
			}
			if raw["lat"] != tt.wantLat {
				t.Errorf("expected lat %v, got %#v", tt.wantLat, raw["lat"])
			}
		})
	}
}

func TestCLI_DataList_StringCoordinates(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":"1","value":"5","created_at":"2026-10-16T10:00:00Z","lat":"40.7","lon":"-74.006"}]`)
	})
	env.configure()

	code, stdout, stderr := env.run("data", "list", "temp")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "40.7") || !strings.Contains(stdout, "-74.006") {
		t.Errorf("expected coordinates in table, got:\n%s", stdout)
	}
}

func TestCLI_JSONOutputKeepsServerFields(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/alice/feeds/temp":
			io.WriteString(w, `{"id":123,"name":"Temp","key":"temp","enabled":true,"history":true,"group":{"key":"default"}}`)
		case "/alice/feeds/temp/data":
			io.WriteString(w, `[{"id":"0F1","value":"5","feed_id":123,"lat":"40.7","expiration":"2026-11-15T10:00:00Z"}]`)
		default:
			http.NotFound(w, r)
		}
	})
	env.configure()

	code, stdout, stderr := env.run("feeds", "get", "temp", "--json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	var feed map[string]any
	if err := json.Unmarshal([]byte(stdout), &feed); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if feed["id"] != float64(123) {
		t.Errorf("expected numeric id 123, got %#v", feed["id"])
	}
	if feed["enabled"] != true || feed["history"] != true {
		t.Errorf("expected enabled/history to survive, got %v", feed)
	}
	if group, ok := feed["group"].(map[string]any); !ok || group["key"] != "default" {
		t.Errorf("expected nested group to survive, got %#v", feed["group"])
	}

	code, stdout, stderr = env.run("data", "list", "temp", "--json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	var points []map[string]any
	if err := json.Unmarshal([]byte(stdout), &points); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0]["feed_id"] != float64(123) || points[0]["lat"] != "40.7" {
		t.Errorf("expected server representation, got %v", points[0])
	}
	if _, ok := points[0]["expiration"]; !ok {
		t.Errorf("expected unknown field to survive, got %v", points[0])
	}
}

func TestCLI_DataList_RendersAllReturned(t *testing.T) {
	var limit string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		points := make([]map[string]string, 7)
		for i := range points {
			points[i] = map[string]string{"id": string(rune('a' + i)), "value": "1"}
		}
		json.NewEncoder(w).Encode(points)
	})
	env.configure()

	code, stdout, stderr := env.run("data", "list", "temperature", "--limit", "5")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if limit != "5" {
		t.Errorf("expected limit=5, got %q", limit)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if rows := len(lines) - 2; rows != 7 {
		t.Errorf("expected 7 rendered rows, got %d:\n%s", rows, stdout)
	}
}

func TestCLI_DataList_InvalidFlags(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.configure()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero limit", []string{"--limit", "0"}, "--limit"},
		{"negative limit", []string{"--limit", "-5"}, "--limit"},
		{"bad start", []string{"--start", "yesterday"}, "ISO 8601"},
		{"reversed window", []string{"--start", "2026-10-02", "--end", "2026-10-01"}, "--end must not be before --start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"data", "list", "temperature"}, tt.args...)
			code, _, stderr := env.run(args...)
			if code != 1 || !strings.Contains(stderr, tt.want) {
				t.Errorf("expected %q error, got exit %d: %q", tt.want, code, stderr)
			}
		})
	}

	if env.requests() != 0 {
		t.Error("no request expected for invalid flags")
	}
}

func TestCLI_APIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"not found", http.StatusNotFound, `{"error":"not found"}`, "Resource not found"},
		{"unauthorized", http.StatusUnauthorized, ``, "Authentication failed"},
		{"rate limited", http.StatusTooManyRequests, ``, "Rate limit exceeded"},
		{"server error", http.StatusInternalServerError, `{"error":"server exploded"}`, "server exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			env.configure()

			code, stdout, stderr := env.run("feeds", "get", "missing-key")
			if code != 1 {
				t.Errorf("expected exit code 1, got %d", code)
			}
			if stdout != "" {
				t.Errorf("expected empty stdout, got %q", stdout)
			}
			if !strings.HasPrefix(stderr, "Error: ") || !strings.Contains(stderr, tt.want) {
				t.Errorf("expected %q in stderr, got %q", tt.want, stderr)
			}
		})
	}
}

func TestCLI_Dashboards(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/alice/dashboards":
			io.WriteString(w, `[{"id": 1, "name": "Home", "key": "home"}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/alice/dashboards/home":
			io.WriteString(w, `{"id": 1, "name": "Home", "key": "home", "description": "Living room"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/alice/dashboards":
			io.WriteString(w, `{"id": 2, "name": "Garden", "key": "garden"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	env.configure()

	code, stdout, _ := env.run("dashboards", "list")
	if code != 0 || !strings.Contains(stdout, "home") {
		t.Errorf("dashboards list: exit %d, output %q", code, stdout)
	}

	code, stdout, _ = env.run("dashboards", "get", "home")
	if code != 0 || !strings.Contains(stdout, "Living room") {
		t.Errorf("dashboards get: exit %d, output %q", code, stdout)
	}

	code, stdout, stderr := env.run("dashboards", "create", "--name", "Garden")
	if code != 0 || !strings.Contains(stderr, "Dashboard created: garden") {
		t.Errorf("dashboards create: exit %d, stdout %q, stderr %q", code, stdout, stderr)
	}
}

func TestCLI_User(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"id": 7, "username": "alice", "name": "Alice", "time_zone": "Europe/Berlin"}`)
	})
	env.configure()

	code, stdout, _ := env.run("user")
	if code != 0 || !strings.Contains(stdout, "Europe/Berlin") {
		t.Errorf("user: exit %d, output %q", code, stdout)
	}
}

func TestCLI_MetricsFile(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	env.configure()
	metricsPath := filepath.Join(t.TempDir(), "adafruit.prom")

	code, _, _ := env.run("--metrics-file", metricsPath, "feeds", "get", "missing")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	want := `adafruit_cli_requests_total{operation="get_feed",outcome="not_found"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("expected %q in metrics:\n%s", want, data)
	}
}

func TestCLI_UsageErrors(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.configure()

	code, _, stderr := env.run("feeds", "get")
	if code != 1 || !strings.HasPrefix(stderr, "Error: ") {
		t.Errorf("missing argument: exit %d, stderr %q", code, stderr)
	}

	code, _, _ = env.run("feeds", "create")
	if code != 1 {
		t.Errorf("missing --name: expected exit 1, got %d", code)
	}
}
