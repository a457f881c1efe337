package tracker

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// MaxResponseSize bounds the tracker response body HTTPGetter will read.
const MaxResponseSize = 4 << 20

// Getter fetches the body served at url.
type Getter func(url string) ([]byte, error)

// HTTPGetter adapts an http.Client to a Getter. Any status other than 200,
// or a body longer than MaxResponseSize, is an error.
func HTTPGetter(c *http.Client) Getter {
	return func(url string) ([]byte, error) {
		resp, err := c.Get(url)
		if err != nil {
			return nil, fmt.Errorf("http peer request failed: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("tracker responded with non OK status: %d", resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
		if err != nil {
			return nil, fmt.Errorf("error reading response body: %w", err)
		}
		if len(body) > MaxResponseSize {
			return nil, fmt.Errorf("tracker response exceeds %d bytes", MaxResponseSize)
		}
		return body, nil
	}
}

// Announce sends r to an HTTP tracker through get and decodes the reply.
func Announce(get Getter, announce string, r Request) (*Response, error) {
	u, err := BuildURL(announce, r)
	if err != nil {
		return nil, err
	}
	slog.Debug("announcing", "url", u)
	body, err := get(u)
	if err != nil {
		return nil, err
	}
	return DecodeResponse(body)
}

// Announcer picks the HTTP or UDP protocol from the announce URL's scheme.
type Announcer struct {
	Get     Getter
	Timeout time.Duration
}

// NewAnnouncer returns an Announcer whose HTTP and UDP requests give up after
// timeout.
func NewAnnouncer(timeout time.Duration) *Announcer {
	return &Announcer{
		Get:     HTTPGetter(&http.Client{Timeout: timeout}),
		Timeout: timeout,
	}
}

func (a *Announcer) Announce(announce string, r Request) (*Response, error) {
	u, err := url.Parse(announce)
	if err != nil {
		return nil, fmt.Errorf("could not parse announce %q: %w", announce, err)
	}
	switch u.Scheme {
	case "http", "https":
		return Announce(a.Get, announce, r)
	case "udp":
		return a.announceUDP(u.Host, r)
	default:
		return nil, fmt.Errorf("tracker protocol %q not supported", u.Scheme)
	}
}

func (a *Announcer) announceUDP(host string, r Request) (*Response, error) {
	conn, err := net.DialTimeout("udp", host, a.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to call UDP tracker %s: %w", host, err)
	}
	defer conn.Close()
	return announceWithin(conn, a.Timeout, r)
}

// announceWithin runs AnnounceUDP on conn, bounded by timeout when it is set.
func announceWithin(conn net.Conn, timeout time.Duration, r Request) (*Response, error) {
	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("could not set deadline for %s: %w", conn.RemoteAddr(), err)
		}
	}
	return AnnounceUDP(conn, r)
}
