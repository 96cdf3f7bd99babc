package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubReconciler struct {
	got []string
	ack string
}

func (s *stubReconciler) ProcessCallback(raw []byte) string {
	s.got = append(s.got, string(raw))
	return s.ack
}

func postCallback(t *testing.T, rec *stubReconciler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/callback", NewCallbackHandler(rec).HandleCallback)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/callback", strings.NewReader(body))
	router.ServeHTTP(w, req)
	return w
}

func TestHandleCallbackAlwaysAcks200(t *testing.T) {
	bodies := []string{
		`{"response":{"Status":"Success","ExternalReference":"POS1","Amount":10}}`,
		`{"Body":{"stkCallback":{"ResultCode":1}}}`,
		`garbage`,
		``,
	}
	for _, body := range bodies {
		rec := &stubReconciler{ack: "received"}
		w := postCallback(t, rec, body)
		if w.Code != http.StatusOK {
			t.Errorf("body %q: status = %d, want 200", body, w.Code)
		}
		if len(rec.got) != 1 || rec.got[0] != body {
			t.Errorf("body %q not forwarded verbatim: %+v", body, rec.got)
		}
	}
}

func TestHandleCallbackEchoesAck(t *testing.T) {
	rec := &stubReconciler{ack: "success"}
	w := postCallback(t, rec, `{}`)
	if got := w.Body.String(); got != `{"result":"success"}` {
		t.Errorf("response = %s", got)
	}
}
