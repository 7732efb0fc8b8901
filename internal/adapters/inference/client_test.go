package inference_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/campusai/internal/adapters/inference"
	. "github.com/smartystreets/goconvey/convey"
)

type captured struct {
	path          string
	authorization string
	requestID     string
	contentType   string
	body          map[string]any
}

func fakeServer(status int, response string, got *captured) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if got != nil {
			got.path = r.URL.Path
			got.authorization = r.Header.Get("Authorization")
			got.requestID = r.Header.Get("X-Request-ID")
			got.contentType = r.Header.Get("Content-Type")
			_ = json.Unmarshal(raw, &got.body)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
}

func TestClientAccess(t *testing.T) {
	Convey("Given a client without a token", t, func() {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&hits, 1)
		}))
		defer srv.Close()

		c := inference.New(inference.WithBaseURL(srv.URL), inference.WithToken("   "))

		Convey("Then it reports no access and never touches the network", func() {
			So(c.HasAccess(), ShouldBeFalse)
			_, err := c.Summarize(context.Background(), "m", "text")
			So(errors.Is(err, inference.ErrNoCredentials), ShouldBeTrue)
			So(atomic.LoadInt32(&hits), ShouldEqual, 0)
		})
	})

	Convey("Given a client with a token", t, func() {
		So(inference.New(inference.WithToken("hf_x")).HasAccess(), ShouldBeTrue)
	})
}

func TestClientCall(t *testing.T) {
	Convey("Given a healthy model server", t, func() {
		var got captured
		srv := fakeServer(http.StatusOK, `[{"summary_text":"short"}]`, &got)
		defer srv.Close()

		c := inference.New(inference.WithBaseURL(srv.URL+"/"), inference.WithToken("hf_secret"))
		summary, err := c.Summarize(context.Background(), "facebook/bart-large-cnn", "long text")

		Convey("Then the request is authenticated and addressed to the model", func() {
			So(err, ShouldBeNil)
			So(summary, ShouldEqual, "short")
			So(got.path, ShouldEqual, "/facebook/bart-large-cnn")
			So(got.authorization, ShouldEqual, "Bearer hf_secret")
			So(got.contentType, ShouldEqual, "application/json")
			So(got.requestID, ShouldNotBeEmpty)
			So(got.body["inputs"], ShouldEqual, "long text")
		})
	})

	Convey("Given a classification call", t, func() {
		var got captured
		srv := fakeServer(http.StatusOK, `[[{"label":"toxic","score":0.8}]]`, &got)
		defer srv.Close()

		c := inference.New(inference.WithBaseURL(srv.URL), inference.WithToken("t"))
		scores, err := c.Classify(context.Background(), "unitary/toxic-bert", "hello")

		Convey("Then all class scores are requested", func() {
			So(err, ShouldBeNil)
			So(scores[0].Label, ShouldEqual, "toxic")
			params, ok := got.body["parameters"].(map[string]any)
			So(ok, ShouldBeTrue)
			v, present := params["top_k"]
			So(present, ShouldBeTrue)
			So(v, ShouldBeNil)
		})
	})

	Convey("Given a server returning an error status", t, func() {
		srv := fakeServer(http.StatusServiceUnavailable, `{"error":"loading"}`, nil)
		defer srv.Close()

		c := inference.New(inference.WithBaseURL(srv.URL), inference.WithToken("t"))
		_, err := c.Embed(context.Background(), "m", "x")
		So(errors.Is(err, inference.ErrStatus), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "503")
	})

	Convey("Given a server returning an unknown shape", t, func() {
		srv := fakeServer(http.StatusOK, `{"unexpected":true}`, nil)
		defer srv.Close()

		c := inference.New(inference.WithBaseURL(srv.URL), inference.WithToken("t"))
		_, err := c.Generate(context.Background(), "m", "prompt", nil)
		So(errors.Is(err, inference.ErrShape), ShouldBeTrue)
	})

	Convey("Given an oversized response", t, func() {
		srv := fakeServer(http.StatusOK, "["+strings.Repeat("1,", 3<<20)+"1]", nil)
		defer srv.Close()

		c := inference.New(inference.WithBaseURL(srv.URL), inference.WithToken("t"))
		_, err := c.Embed(context.Background(), "m", "x")
		So(errors.Is(err, inference.ErrShape), ShouldBeTrue)
	})
}

func TestClientTimeout(t *testing.T) {
	Convey("Given a server slower than the attempt timeout", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c := inference.New(
			inference.WithBaseURL(srv.URL),
			inference.WithToken("t"),
			inference.WithTimeout(50*time.Millisecond),
		)

		start := time.Now()
		_, err := c.Translate(context.Background(), "m", "hi", "eng_Latn", "zul_Latn")

		Convey("Then the call fails as a transport error within the deadline", func() {
			So(errors.Is(err, inference.ErrTransport), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 5*time.Second)
		})
	})

	Convey("Given a cancelled caller context", t, func() {
		srv := fakeServer(http.StatusOK, `[{"generated_text":"x"}]`, nil)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := inference.New(inference.WithBaseURL(srv.URL), inference.WithToken("t"))
		_, err := c.Generate(ctx, "m", "p", nil)
		So(errors.Is(err, inference.ErrTransport), ShouldBeTrue)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
