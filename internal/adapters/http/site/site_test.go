package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		mux := http.NewServeMux()

		Convey("When registering the site handler", func() {
			Register(context.Background(), mux)

			Convey("Then it should serve the landing page at /", func() {
				req := httptest.NewRequest("GET", "/", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, `href="/api-docs"`)
			})

			Convey("And it should not serve other paths", func() {
				req := httptest.NewRequest("GET", "/some-asset", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}

func TestFS(t *testing.T) {
	Convey("Given the embedded file system", t, func() {
		f, err := FS().Open("index.html")
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)
	})
}
