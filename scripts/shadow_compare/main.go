// Command shadow_compare replays read-only requests against the legacy
// FastAPI service and this API and reports payload differences. The Go API
// wraps payloads in {"data": ...}; the envelope is stripped before comparing.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
	// SortBy orders array payloads by this field before comparing.
	SortBy string `json:"sort_by"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/api/students", Critical: true, SortBy: "id"},
	{Method: http.MethodGet, Path: "/api/equipment", Critical: true, SortBy: "id"},
	{Method: http.MethodGet, Path: "/api/rooms", Critical: false, SortBy: "id"},
	{Method: http.MethodGet, Path: "/api/hardware-types", Critical: false, SortBy: "id"},
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8000", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8001", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", "", "Optional JSON targets file; built-in read endpoints when empty")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = loaded
	}

	client := &http.Client{Timeout: timeout}
	comparisons := make([]comparison, 0, len(targets))
	for _, t := range targets {
		comparisons = append(comparisons, compareTarget(client, goBase, legacyBase, t))
	}

	breaking, optional := tally(comparisons)
	printReport(comparisons)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func tally(comparisons []comparison) (breaking, optional int) {
	for _, comp := range comparisons {
		failed := comp.Error != nil || !comp.StatusMatch || !comp.BodyMatch
		if !failed {
			continue
		}
		if comp.Target.Critical {
			breaking++
		} else if comp.Error == nil {
			optional++
		}
	}
	return breaking, optional
}

func compareTarget(client *http.Client, goBase, legacyBase string, tgt target) comparison {
	comp := comparison{Target: tgt}

	goBody, goStatus, goDur, err := fetch(client, goBase, tgt)
	if err != nil {
		comp.Error = fmt.Errorf("go request failed: %w", err)
		return comp
	}
	legacyBody, legacyStatus, legacyDur, err := fetch(client, legacyBase, tgt)
	if err != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", err)
		return comp
	}

	comp.GoStatus, comp.LegacyStatus = goStatus, legacyStatus
	comp.DurationGo, comp.DurationLegacy = goDur, legacyDur
	comp.StatusMatch = goStatus == legacyStatus
	comp.BodyMatch = payloadsEqual(unwrapEnvelope(goBody), legacyBody, tgt.SortBy)
	return comp
}

func fetch(client *http.Client, base string, tgt target) ([]byte, int, time.Duration, error) {
	if client == nil {
		return nil, 0, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, time.Since(start), nil
}

// unwrapEnvelope returns the data member of a response envelope, or body unchanged.
func unwrapEnvelope(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return body
	}
	return envelope.Data
}

func payloadsEqual(a, b []byte, sortBy string) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	if sortBy != "" {
		sortRecords(aj, sortBy)
		sortRecords(bj, sortBy)
	}
	return reflect.DeepEqual(aj, bj)
}

func sortRecords(v interface{}, field string) {
	list, ok := v.([]interface{})
	if !ok {
		return
	}
	key := func(i int) string {
		if m, ok := list[i].(map[string]interface{}); ok {
			return fmt.Sprint(m[field])
		}
		return ""
	}
	sort.SliceStable(list, func(i, j int) bool { return key(i) < key(j) })
}

func printReport(comparisons []comparison) {
	fmt.Println("Shadow comparison report")
	fmt.Println("=======================")
	for _, comp := range comparisons {
		status := "OK"
		if comp.Error != nil {
			status = "ERROR"
		} else if !comp.StatusMatch || !comp.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s (critical=%t)\n", status, comp.Target.Method, comp.Target.Path, comp.Target.Critical)
		if comp.Error != nil {
			fmt.Printf("  error: %v\n", comp.Error)
			continue
		}
		fmt.Printf("  status legacy=%d go=%d\n", comp.LegacyStatus, comp.GoStatus)
		fmt.Printf("  body match=%t\n", comp.BodyMatch)
		fmt.Printf("  latency legacy=%s go=%s\n", comp.DurationLegacy, comp.DurationGo)
	}
}
