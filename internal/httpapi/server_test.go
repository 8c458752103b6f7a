package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func post(t *testing.T, s *Server, body EvalRequest) (int, EvalResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	So(err, ShouldBeNil)

	req := httptest.NewRequest("POST", "/eval", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp EvalResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	So(err, ShouldBeNil)
	return rec.Code, resp
}

func TestServerEval(t *testing.T) {
	Convey("Server /eval", t, func() {
		s := NewServer(1000, 1000)

		Convey("evaluates the default float backend", func() {
			code, resp := post(t, s, EvalRequest{Expression: "2 + 3 * 5"})
			So(code, ShouldEqual, 200)
			So(resp.Result, ShouldEqual, "17")
			So(resp.Error, ShouldBeEmpty)
		})

		Convey("dispatches on the type field", func() {
			code, resp := post(t, s, EvalRequest{Expression: "7 / 2", Type: "integer"})
			So(code, ShouldEqual, 422)
			So(resp.Error, ShouldNotBeEmpty)

			code, resp = post(t, s, EvalRequest{Expression: "6 / 2", Type: "integer"})
			So(code, ShouldEqual, 200)
			So(resp.Result, ShouldEqual, "3")

			code, resp = post(t, s, EvalRequest{Expression: "2 ^ 10", Type: "decimal"})
			So(code, ShouldEqual, 200)
			So(resp.Result, ShouldEqual, "1024")

			code, resp = post(t, s, EvalRequest{Expression: "i * i", Type: "complex"})
			So(code, ShouldEqual, 200)
			So(resp.Result, ShouldEqual, "-1")
		})

		Convey("binds request variables against the selected backend", func() {
			code, resp := post(t, s, EvalRequest{
				Expression: "(x - y) ^ 2",
				Variables:  map[string]string{"x": "10", "y": "3.5"},
			})
			So(code, ShouldEqual, 200)
			So(resp.Result, ShouldEqual, "42.25")
		})

		Convey("reports an unknown type as an error, not a panic", func() {
			code, resp := post(t, s, EvalRequest{Expression: "1 + 1", Type: "rational"})
			So(code, ShouldEqual, 422)
			So(resp.Error, ShouldNotBeEmpty)
		})

		Convey("reports malformed JSON as a 400 with an error body", func() {
			req := httptest.NewRequest("POST", "/eval", bytes.NewReader([]byte("{not json")))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, 400)

			var resp EvalResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Error, ShouldNotBeEmpty)
		})

		Convey("rejects non-POST methods", func() {
			req := httptest.NewRequest("GET", "/eval", nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, 405)
		})
	})
}
