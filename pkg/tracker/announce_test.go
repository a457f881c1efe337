package tracker

import (
	"bytes"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAnnounceHTTP(t *testing.T) {
	r := testRequest()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if got := q.Get("info_hash"); !bytes.Equal([]byte(got), r.InfoHash[:]) {
			http.Error(w, "bad info_hash", http.StatusBadRequest)
			return
		}
		if q.Get("compact") != "1" || q.Get("port") != "6881" || q.Get("left") != "100" {
			http.Error(w, "bad params", http.StatusBadRequest)
			return
		}
		w.Write([]byte("d8:intervali900e5:peers12:" + twoPeers + "e"))
	}))
	defer srv.Close()

	resp, err := Announce(HTTPGetter(srv.Client()), srv.URL+"/announce", r)
	if err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if resp.Interval != 900 || len(resp.Peers) != 2 {
		t.Errorf("got %+v", resp)
	}
}

func TestHTTPGetterStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := HTTPGetter(srv.Client())(srv.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want non OK status error", err)
	}
}

func TestHTTPGetterBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write(bytes.Repeat([]byte("l"), MaxResponseSize+1))
	}))
	defer srv.Close()

	_, err := HTTPGetter(srv.Client())(srv.URL)
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("err = %v, want a size limit error", err)
	}
}

type deadlineConn struct {
	net.Conn
	err error
}

func (c deadlineConn) SetDeadline(time.Time) error { return c.err }

func TestAnnounceWithinDeadlineError(t *testing.T) {
	local, far := net.Pipe()
	defer local.Close()
	defer far.Close()

	errDeadline := errors.New("deadline not supported")
	_, err := announceWithin(deadlineConn{Conn: local, err: errDeadline}, time.Second, testRequest())
	if !errors.Is(err, errDeadline) {
		t.Errorf("err = %v, want the SetDeadline error", err)
	}
}

func TestAnnounceUsesGetter(t *testing.T) {
	var asked string
	get := func(url string) ([]byte, error) {
		asked = url
		return []byte("d14:failure reason6:bannede"), nil
	}
	a := &Announcer{Get: get}
	_, err := a.Announce("https://tracker.example/a", testRequest())
	if !errors.Is(err, ErrTrackerFailure) {
		t.Errorf("err = %v, want ErrTrackerFailure", err)
	}
	if !strings.HasPrefix(asked, "https://tracker.example/a?compact=1&") {
		t.Errorf("asked %q", asked)
	}
}

func TestAnnouncerUnsupportedScheme(t *testing.T) {
	a := NewAnnouncer(time.Second)
	if _, err := a.Announce("wss://tracker.example/a", testRequest()); err == nil {
		t.Error("expected error for an unsupported scheme")
	}
}
