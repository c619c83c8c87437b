package server

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/indigo-web/utils/uf"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type accessEntry struct {
	Remote     string  `json:"remote"`
	Method     string  `json:"method"`
	Target     string  `json:"target"`
	Status     int     `json:"status"`
	DurationMS float64 `json:"duration_ms"`
	State      string  `json:"state"`
	Err        string  `json:"err,omitempty"`
}

type accessLogger struct {
	logger *log.Logger
	format string
}

func newAccessEntry(conn any) accessEntry {
	return accessEntry{
		Remote: remoteHost(conn),
		Method: "-",
		Target: "-",
	}
}

func (a accessLogger) log(e accessEntry) {
	if a.format == LogFormatJSON {
		b, err := json.Marshal(e)
		if err != nil {
			a.logger.Printf("access log: %v", err)
			return
		}

		a.logger.Print(uf.B2S(b))
		return
	}

	if e.Err != "" {
		a.logger.Printf("%s\t%s\t%s\t%s\t%s\terr=%q",
			e.Remote, e.Method, e.Target, fmtStatus(e.Status), fmtMillis(e.DurationMS), e.Err,
		)
		return
	}

	a.logger.Printf("%s\t%s\t%s\t%s\t%s",
		e.Remote, e.Method, e.Target, fmtStatus(e.Status), fmtMillis(e.DurationMS),
	)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

// helper: format duration compactly
func fmtMillis(ms float64) string {
	return fmt.Sprintf("%.1fms", ms)
}

func fmtStatus(code int) string {
	if code == 0 {
		return "-"
	}

	return strconv.Itoa(code)
}

func remoteHost(conn any) string {
	c, ok := conn.(interface{ RemoteAddr() net.Addr })
	if !ok || c.RemoteAddr() == nil {
		return "-"
	}

	addr := c.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}

	return addr
}
