package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/campusai/internal/adapters/http/api"
	service "github.com/okian/campusai/internal/app"
	"github.com/okian/campusai/pkg/logger"
)

func newLocalServer() *httptest.Server {
	svc := service.New(service.WithLogger(logger.Nop()))
	mux := http.NewServeMux()
	api.NewServer(svc, svc, api.WithLogger(logger.Nop())).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestRunAgainstLocalService(t *testing.T) {
	Convey("Given a server without remote access", t, func() {
		srv := newLocalServer()
		defer srv.Close()

		Convey("When every scenario is sent three times", func() {
			report, err := Run(context.Background(), &Config{BaseURL: srv.URL + "/", Workers: 4, Repeat: 3, Timeout: 5 * time.Second})

			Convey("Then all scenarios pass and repeat identically", func() {
				So(err, ShouldBeNil)
				So(report.HasAccess, ShouldBeFalse)
				So(report.Sent, ShouldEqual, len(Scenarios())*3)
				So(report.Failed, ShouldEqual, 0)
				So(report.Passed, ShouldEqual, report.Sent)
				So(report.Fallbacks, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestRunDetectsBrokenResponses(t *testing.T) {
	Convey("Given a server that answers every capability with an empty envelope", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"hasAccess":false,"models":{}}`))
		})
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"model":"","usedFallback":false}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		report, err := Run(context.Background(), &Config{BaseURL: srv.URL, Workers: 2})

		Convey("Then every scenario fails and the error says so", func() {
			So(errors.Is(err, ErrFailed), ShouldBeTrue)
			So(report, ShouldNotBeNil)
			So(report.Failed, ShouldEqual, len(Scenarios()))
			So(report.Passed, ShouldEqual, 0)
		})
	})

	Convey("Given a server whose answers change between attempts", t, func() {
		var calls atomic.Int64
		srv := newLocalServer()
		defer srv.Close()
		mux := http.NewServeMux()
		mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"hasAccess":false,"models":{}}`))
		})
		mux.HandleFunc("/v1/checkin", func(w http.ResponseWriter, r *http.Request) {
			n := calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"urgent": true, "response": fmt.Sprintf("call %d", n),
				"followUps": []string{"a", "b"}, "model": "safety-escalation", "usedFallback": false,
			})
		})
		target, err := url.Parse(srv.URL)
		So(err, ShouldBeNil)
		mux.Handle("/", httputil.NewSingleHostReverseProxy(target))
		flaky := httptest.NewServer(mux)
		defer flaky.Close()

		report, err := Run(context.Background(), &Config{BaseURL: flaky.URL, Workers: 1, Repeat: 2})

		Convey("Then the determinism check reports the drift", func() {
			So(errors.Is(err, ErrFailed), ShouldBeTrue)
			found := false
			for _, r := range report.Results {
				if r.Scenario == "determinism" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestRunUnreachable(t *testing.T) {
	Convey("Given a base URL nothing listens on", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		report, err := Run(context.Background(), &Config{BaseURL: base, Timeout: time.Second})

		Convey("Then the status check fails before any scenario runs", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrFailed), ShouldBeFalse)
			So(report, ShouldBeNil)
		})
	})
}

func TestSaveReport(t *testing.T) {
	Convey("Given a report", t, func() {
		path := filepath.Join(t.TempDir(), "nested", "probe.json")
		report := &Report{BaseURL: "http://x", Sent: 2, Passed: 1, Failed: 1,
			Results: []Result{{Scenario: "summarize", Attempt: 1}, {Scenario: "match", Attempt: 1, Error: "boom"}}}

		Convey("When it is saved", func() {
			So(SaveReport(path, report), ShouldBeNil)
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			var got Report
			So(json.Unmarshal(data, &got), ShouldBeNil)
			So(got.Failed, ShouldEqual, 1)
			So(got.Results[1].Error, ShouldEqual, "boom")
		})

		Convey("When there is nothing to save", func() {
			So(SaveReport(path, nil), ShouldNotBeNil)
		})
	})
}

func TestWithDefaults(t *testing.T) {
	Convey("Given an empty config", t, func() {
		cfg := withDefaults(nil)

		So(cfg.Workers, ShouldBeGreaterThan, 0)
		So(cfg.Repeat, ShouldEqual, 1)
		So(cfg.Timeout, ShouldEqual, DefaultTimeout)
	})
}
